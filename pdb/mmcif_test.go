package pdb

import (
	"strings"
	"testing"
)

// altCIF has a microheterogeneous residue 2, SER in altloc A and THR in B.
const altCIF = `data_ALT
_entry.id ALT
_entity.id 1
_entity.type polymer
loop_
_atom_site.group_PDB
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_alt_id
_atom_site.label_comp_id
_atom_site.label_asym_id
_atom_site.label_entity_id
_atom_site.label_seq_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.auth_seq_id
_atom_site.auth_asym_id
_atom_site.pdbx_PDB_model_num
ATOM 1  N N   . ALA A 1 1 0.000 0.000 0.000 1 A 1
ATOM 2  C CA  . ALA A 1 1 1.458 0.000 0.000 1 A 1
ATOM 3  N N   A SER A 1 2 2.500 0.500 0.000 2 A 1
ATOM 4  C CA  A SER A 1 2 3.700 0.000 0.000 2 A 1
ATOM 5  O OG  A SER A 1 2 3.900 1.200 0.000 2 A 1
ATOM 6  N N   B THR A 1 2 2.600 0.500 0.000 2 A 1
ATOM 7  C CA  B THR A 1 2 3.800 0.100 0.000 2 A 1
ATOM 8  O OG1 B THR A 1 2 4.000 1.300 0.000 2 A 1
ATOM 9  N N   . GLY A 1 3 5.000 0.000 0.000 3 A 1
ATOM 10 C CA  . GLY A 1 3 6.400 0.000 0.000 3 A 1
loop_
_pdbx_poly_seq_scheme.asym_id
_pdbx_poly_seq_scheme.entity_id
_pdbx_poly_seq_scheme.seq_id
_pdbx_poly_seq_scheme.mon_id
_pdbx_poly_seq_scheme.pdb_mon_id
_pdbx_poly_seq_scheme.pdb_strand_id
A 1 1 ALA ALA A
A 1 2 SER SER A
A 1 2 THR THR A
A 1 3 GLY GLY A
`

func TestReadCIFMicroheterogeneity(t *testing.T) {
	d, err := ReadCIF(strings.NewReader(altCIF))
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != "alt" {
		t.Errorf("expected ID alt, got %s", d.ID)
	}

	s, err := d.Chain("A")
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, id := range s.ResidueIDs() {
		ids = append(ids, id.String())
	}
	if strings.Join(ids, " ") != "A:1:ALA A:2:SER A:3:GLY" {
		t.Errorf("expected one residue per position, got %v", ids)
	}
	if len(s.Atoms) != 7 {
		t.Errorf("expected 7 atoms without altloc B, got %d", len(s.Atoms))
	}

	ca, err := s.Atom(s.ResidueIDs()[1], "CA")
	if err != nil || ca.X != 3.7 || ca.AltLoc != "A" {
		t.Errorf("expected the altloc A CA, got %+v (%v)", ca, err)
	}

	e, err := d.Entity(s.EntityID())
	if err != nil {
		t.Fatal(err)
	}
	if e.Type != "polymer" {
		t.Errorf("expected a polymer entity from single items, got %q", e.Type)
	}
	monomers, err := e.ChainMonomers("A")
	if err != nil {
		t.Fatal(err)
	}
	if len(monomers) != 3 || monomers[1].Name != "SER" {
		t.Errorf("expected ALA SER GLY, got %v", monomers)
	}
}

func TestReadCIFWithoutSeqScheme(t *testing.T) {
	raw := altCIF[:strings.Index(altCIF, "loop_\n_pdbx_poly_seq_scheme")]
	d, err := ReadCIF(strings.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	monomers, err := d.Entities["1"].ChainMonomers("A")
	if err != nil {
		t.Fatal(err)
	}
	if Sequence(monomers) != "ASG" {
		t.Errorf("expected the observed residues as sequence, got %s", Sequence(monomers))
	}
}

func TestReadCIFErrors(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"no atoms":       "data_x\n_entry.id X\n",
		"bad coordinate": strings.Replace(altCIF, "1.458", "abc", 1),
	}
	for name, raw := range tests {
		if _, err := ReadCIF(strings.NewReader(raw)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
