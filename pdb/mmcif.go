package pdb

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/cif"
)

// ReadCIF parses a PDBx/mmCIF file. Only the first data block and the first
// model are kept.
func ReadCIF(r io.Reader) (*Deposit, error) {
	cf, err := cif.Read(r)
	if err != nil {
		return nil, fmt.Errorf("parse CIF: %v", err)
	}
	b := firstBlock(cf)
	if b == nil {
		return nil, errors.New("no data block")
	}

	d := &Deposit{
		ID:       strings.ToLower(value(b, "entry.id")),
		Format:   FormatCIF,
		Entities: make(map[string]*Entity),
	}
	if d.ID == "" {
		d.ID = strings.ToLower(b.Name)
	}

	ids, types := tagColumn(b, "entity.id"), tagColumn(b, "entity.type")
	for i, id := range ids {
		d.Entities[id] = &Entity{ID: id, Type: at(types, i)}
	}

	if d.Atoms, err = cifAtoms(b, d.Entities); err != nil {
		return nil, fmt.Errorf("atom_site: %v", err)
	}
	if len(d.Atoms) == 0 {
		return nil, errors.New("atoms not found")
	}

	if len(tagColumn(b, "pdbx_poly_seq_scheme.seq_id")) > 0 {
		err = d.readSeqScheme(b)
	} else {
		d.observedSequences()
	}
	if err != nil {
		return nil, fmt.Errorf("pdbx_poly_seq_scheme: %v", err)
	}

	return d, nil
}

// firstBlock returns the data block of a file, by name order when there are
// several.
func firstBlock(cf *cif.CIF) *cif.DataBlock {
	names := make([]string, 0, len(cf.Blocks))
	for name := range cf.Blocks {
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return cf.Blocks[names[0]]
}

// tagColumn returns the values of a tag as strings, whether the tag is part of
// a loop or a single item. It returns nil when the tag is absent.
func tagColumn(b *cif.DataBlock, tag string) []string {
	if loop, ok := b.Loops[tag]; ok {
		return loopStrings(loop.Get(tag))
	}
	v, ok := b.Items[tag]
	if !ok {
		return nil
	}
	switch raw := v.Raw().(type) {
	case int:
		return []string{strconv.Itoa(raw)}
	case float64:
		return []string{strconv.FormatFloat(raw, 'f', -1, 64)}
	default:
		return []string{fmt.Sprint(raw)}
	}
}

// loopStrings renders a loop column as strings, whatever type the reader
// inferred for it.
func loopStrings(vl cif.ValueLoop) []string {
	if s := vl.Strings(); s != nil {
		return s
	}
	var out []string
	if ints := vl.Ints(); ints != nil {
		for _, v := range ints {
			out = append(out, strconv.Itoa(v))
		}
		return out
	}
	for _, v := range vl.Floats() {
		out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return out
}

// value returns the first value of a tag, or "" when absent or unknown.
func value(b *cif.DataBlock, tag string) string {
	return at(tagColumn(b, tag), 0)
}

// isNull reports the CIF inapplicable (.) and unknown (?) markers.
func isNull(v string) bool {
	return v == "" || v == "." || v == "?"
}

// pick returns the first of the given columns present in the block.
func pick(b *cif.DataBlock, tags ...string) []string {
	for _, t := range tags {
		if c := tagColumn(b, t); c != nil {
			return c
		}
	}
	return nil
}

// at returns col[i], or "" when the column is absent or the value is null.
func at(col []string, i int) string {
	if i >= len(col) || isNull(col[i]) {
		return ""
	}
	return col[i]
}

func cifAtoms(b *cif.DataBlock, entities map[string]*Entity) ([]*Atom, error) {
	xs := tagColumn(b, "atom_site.cartn_x")
	ys := tagColumn(b, "atom_site.cartn_y")
	zs := tagColumn(b, "atom_site.cartn_z")
	if len(xs) == 0 || len(ys) != len(xs) || len(zs) != len(xs) {
		return nil, errors.New("missing or uneven coordinate columns")
	}

	var (
		group   = tagColumn(b, "atom_site.group_pdb")
		serial  = tagColumn(b, "atom_site.id")
		element = tagColumn(b, "atom_site.type_symbol")
		name    = pick(b, "atom_site.auth_atom_id", "atom_site.label_atom_id")
		altID   = tagColumn(b, "atom_site.label_alt_id")
		resName = pick(b, "atom_site.auth_comp_id", "atom_site.label_comp_id")
		chain   = pick(b, "atom_site.auth_asym_id", "atom_site.label_asym_id")
		entity  = tagColumn(b, "atom_site.label_entity_id")
		seq     = pick(b, "atom_site.auth_seq_id", "atom_site.label_seq_id")
		label   = tagColumn(b, "atom_site.label_seq_id")
		icode   = tagColumn(b, "atom_site.pdbx_pdb_ins_code")
		occ     = tagColumn(b, "atom_site.occupancy")
		bfac    = tagColumn(b, "atom_site.b_iso_or_equiv")
		charge  = tagColumn(b, "atom_site.pdbx_formal_charge")
		model   = tagColumn(b, "atom_site.pdbx_pdb_model_num")
	)
	if name == nil || resName == nil || chain == nil || seq == nil {
		return nil, errors.New("missing atom, residue, chain or sequence columns")
	}

	firstModel := at(model, 0)
	alt := newAltLocFilter()
	atoms := make([]*Atom, 0, len(xs))
	for i := range xs {
		if at(model, i) != firstModel {
			continue
		}

		a := &Atom{
			Name:          at(name, i),
			AltLoc:        at(altID, i),
			Residue:       at(resName, i),
			Chain:         at(chain, i),
			InsertionCode: at(icode, i),
			Element:       at(element, i),
			Charge:        at(charge, i),
			EntityID:      at(entity, i),
			HetAtm:        at(group, i) == "HETATM",
		}

		var err error
		if a.ResidueNumber, err = strconv.Atoi(at(seq, i)); err != nil {
			// Solvent and ligands may carry no label sequence number.
			if a.ResidueNumber, err = strconv.Atoi(at(label, i)); err != nil {
				a.ResidueNumber = 0
			}
		}
		if a.X, err = strconv.ParseFloat(xs[i], 64); err != nil {
			return nil, fmt.Errorf("row %d: x coordinate: %v", i+1, err)
		}
		if a.Y, err = strconv.ParseFloat(ys[i], 64); err != nil {
			return nil, fmt.Errorf("row %d: y coordinate: %v", i+1, err)
		}
		if a.Z, err = strconv.ParseFloat(zs[i], 64); err != nil {
			return nil, fmt.Errorf("row %d: z coordinate: %v", i+1, err)
		}
		a.Serial, _ = strconv.ParseInt(at(serial, i), 10, 64)
		a.Occupancy, _ = strconv.ParseFloat(at(occ, i), 64)
		a.BFactor, _ = strconv.ParseFloat(at(bfac, i), 64)

		if e, ok := entities[a.EntityID]; ok && e.Type != "" {
			a.Polymer = e.Type == "polymer"
		} else {
			a.Polymer = !a.HetAtm
		}

		if !alt.keep(a) {
			continue
		}
		atoms = append(atoms, a)
	}

	return atoms, nil
}

// readSeqScheme builds chain sequences from pdbx_poly_seq_scheme, where
// residues without coordinates have an unknown pdb_mon_id.
func (d *Deposit) readSeqScheme(b *cif.DataBlock) error {
	var (
		entity = tagColumn(b, "pdbx_poly_seq_scheme.entity_id")
		seqID  = tagColumn(b, "pdbx_poly_seq_scheme.seq_id")
		mon    = tagColumn(b, "pdbx_poly_seq_scheme.mon_id")
		pdbMon = pick(b, "pdbx_poly_seq_scheme.pdb_mon_id", "pdbx_poly_seq_scheme.auth_mon_id")
		strand = pick(b, "pdbx_poly_seq_scheme.pdb_strand_id", "pdbx_poly_seq_scheme.asym_id")
	)
	if entity == nil || mon == nil || strand == nil || pdbMon == nil {
		return errors.New("missing entity, monomer or strand columns")
	}

	type pos struct{ chain, seq string }
	seen := make(map[pos]bool)
	chains := make(map[string][]Monomer)
	chainEntity := make(map[string]string)
	var order []string
	for i := range seqID {
		p := pos{at(strand, i), seqID[i]}
		// Microheterogeneity lists several monomers for one position.
		if seen[p] {
			continue
		}
		seen[p] = true

		if _, ok := chains[p.chain]; !ok {
			order = append(order, p.chain)
			chainEntity[p.chain] = at(entity, i)
		}
		chains[p.chain] = append(chains[p.chain], Monomer{Name: at(mon, i), Gap: at(pdbMon, i) == ""})
	}

	for _, chain := range order {
		e := d.entity(chainEntity[chain])
		e.setChain(chain, chains[chain], nil)
	}
	return nil
}

// observedSequences is the fallback when a file has no sequence scheme: the
// observed residues of each chain are its sequence, without gaps.
func (d *Deposit) observedSequences() {
	chains := make(map[string][]Monomer)
	chainEntity := make(map[string]string)
	seen := make(map[ResidueID]bool)
	for _, a := range d.Atoms {
		if !a.Polymer {
			continue
		}
		rid := a.ResidueID()
		if seen[rid] {
			continue
		}
		seen[rid] = true
		chainEntity[a.Chain] = a.EntityID
		chains[a.Chain] = append(chains[a.Chain], Monomer{Name: a.Residue})
	}

	for chain, monomers := range chains {
		d.entity(chainEntity[chain]).setChain(chain, monomers, nil)
	}
}

// entity returns the entity with the given ID, creating a polymer entity if needed.
func (d *Deposit) entity(id string) *Entity {
	e, ok := d.Entities[id]
	if !ok {
		e = &Entity{ID: id, Type: "polymer"}
		d.Entities[id] = e
	}
	return e
}
