package pdb

import (
	"errors"
	"fmt"
	"sort"
)

// Format is the file format a deposit was read from.
type Format int

const (
	FormatPDB Format = iota
	FormatCIF
)

func (f Format) String() string {
	if f == FormatCIF {
		return "mmCIF"
	}
	return "PDB"
}

// ErrNoSuchChain is returned when a chain has no polymer atoms.
var ErrNoSuchChain = errors.New("no such chain")

// NoSuchChainError reports the chain that could not be extracted.
type NoSuchChainError struct {
	Chain string
}

func (e *NoSuchChainError) Error() string {
	return fmt.Sprintf("no polymer atoms for chain %q", e.Chain)
}

func (e *NoSuchChainError) Is(target error) bool {
	return target == ErrNoSuchChain
}

// Deposit represents a single loaded entry: its atoms and entities.
type Deposit struct {
	ID     string // entry identifier, lower case
	Path   string // file the deposit was read from
	Format Format

	Atoms    []*Atom            // atoms of the first model, ATOM and HETATM records
	Entities map[string]*Entity // entity ID to entity
}

// Entity represents the designed sequence of a polymer, shared by its chains.
type Entity struct {
	ID     string
	Type   string               // polymer, non-polymer, water...
	Chains map[string][]Monomer // author chain ID to designed sequence

	chainErrs map[string]error // chains whose sequence could not be mapped
}

// Entity returns the entity with the given identifier.
func (d *Deposit) Entity(id string) (*Entity, error) {
	e, ok := d.Entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %q not found in %s", id, d.ID)
	}
	return e, nil
}

// ChainIDs returns the sorted author chain identifiers with polymer atoms.
func (d *Deposit) ChainIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, a := range d.Atoms {
		if a.Polymer && !seen[a.Chain] {
			seen[a.Chain] = true
			ids = append(ids, a.Chain)
		}
	}
	sort.Strings(ids)
	return ids
}

// Chain returns the polymer atoms of one chain as a structure, with ligands
// and solvent removed.
func (d *Deposit) Chain(chain string) (*Structure, error) {
	var atoms []*Atom
	for _, a := range d.Atoms {
		if a.Polymer && a.Chain == chain {
			atoms = append(atoms, a)
		}
	}
	if len(atoms) == 0 {
		return nil, &NoSuchChainError{Chain: chain}
	}

	return NewStructure(d.ID, atoms), nil
}

// ChainMonomers returns the designed sequence of the given chain, with gaps
// flagged where the structure has no coordinates.
func (e *Entity) ChainMonomers(chain string) ([]Monomer, error) {
	if err, ok := e.chainErrs[chain]; ok {
		return nil, fmt.Errorf("chain %q: %w", chain, err)
	}
	m, ok := e.Chains[chain]
	if !ok {
		return nil, fmt.Errorf("chain %q is not part of entity %q", chain, e.ID)
	}
	return m, nil
}

func (e *Entity) setChain(chain string, monomers []Monomer, err error) {
	if err != nil {
		if e.chainErrs == nil {
			e.chainErrs = make(map[string]error)
		}
		e.chainErrs[chain] = err
		return
	}
	if e.Chains == nil {
		e.Chains = make(map[string][]Monomer)
	}
	e.Chains[chain] = monomers
}

// Structure is a set of atoms indexed by residue.
type Structure struct {
	ID    string
	Atoms []*Atom

	residues []ResidueID
	index    map[ResidueID]map[string]*Atom
}

// NewStructure indexes the given atoms, keeping residues in file order.
// Alternate locations are dropped, so every residue position appears once.
func NewStructure(id string, atoms []*Atom) *Structure {
	s := &Structure{
		ID:    id,
		index: make(map[ResidueID]map[string]*Atom),
	}
	alt := newAltLocFilter()
	for _, a := range atoms {
		if !alt.keep(a) {
			continue
		}
		s.Atoms = append(s.Atoms, a)

		rid := a.ResidueID()
		names, ok := s.index[rid]
		if !ok {
			names = make(map[string]*Atom)
			s.index[rid] = names
			s.residues = append(s.residues, rid)
		}
		names[a.Name] = a
	}
	return s
}

// ResidueIDs returns the observed residues in coordinate order.
func (s *Structure) ResidueIDs() []ResidueID {
	return s.residues
}

// Atom returns the named atom of a residue.
func (s *Structure) Atom(id ResidueID, name string) (*Atom, error) {
	names, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("residue %s not found", id)
	}
	a, ok := names[name]
	if !ok {
		return nil, fmt.Errorf("atom %s missing for residue %s", name, id)
	}
	return a, nil
}

// EntityID returns the entity of the first atom.
func (s *Structure) EntityID() string {
	if len(s.Atoms) == 0 {
		return ""
	}
	return s.Atoms[0].EntityID
}
