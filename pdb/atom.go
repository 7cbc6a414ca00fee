package pdb

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Atom represents a single atom in the structure.
// It contains the columns from an ATOM or HETATM record in a PDB file, or
// the equivalent atom_site items of an mmCIF file.
type Atom struct {
	Serial        int64
	Name          string // atom name without padding, e.g. "CA"
	AltLoc        string
	Residue       string // three letter residue name
	Chain         string // author chain identifier
	ResidueNumber int
	InsertionCode string
	X             float64
	Y             float64
	Z             float64
	Occupancy     float64
	BFactor       float64
	Element       string
	Charge        string

	HetAtm   bool   // HETATM record
	Polymer  bool   // part of a polymer chain, false for ligands and solvent
	EntityID string // entity the atom belongs to
}

// Pos returns the atom coordinates as a vector.
func (a *Atom) Pos() r3.Vec {
	return r3.Vec{X: a.X, Y: a.Y, Z: a.Z}
}

// ResidueID returns the identifier of the residue holding this atom.
func (a *Atom) ResidueID() ResidueID {
	return ResidueID{
		Chain: a.Chain,
		Seq:   a.ResidueNumber,
		ICode: a.InsertionCode,
		Name:  a.Residue,
	}
}

// position identifies a residue slot within a chain, regardless of its name.
type position struct {
	chain string
	seq   int
	icode string
}

func (a *Atom) position() position {
	return position{a.Chain, a.ResidueNumber, a.InsertionCode}
}

// altLocFilter drops alternate locations. The first residue name seen at a
// position wins, so microheterogeneous residues keep a single identity, and
// the first atom of each name within it wins.
type altLocFilter struct {
	residue map[position]string
	atoms   map[position]map[string]bool
}

func newAltLocFilter() *altLocFilter {
	return &altLocFilter{
		residue: make(map[position]string),
		atoms:   make(map[position]map[string]bool),
	}
}

// keep reports whether an atom is the first of its slot.
func (f *altLocFilter) keep(a *Atom) bool {
	p := a.position()
	if name, ok := f.residue[p]; ok && name != a.Residue {
		return false
	}
	f.residue[p] = a.Residue

	names, ok := f.atoms[p]
	if !ok {
		names = make(map[string]bool)
		f.atoms[p] = names
	}
	if names[a.Name] {
		return false
	}
	names[a.Name] = true
	return true
}

// parseAtomRecord parses a fixed column ATOM or HETATM record.
func parseAtomRecord(line string) (*Atom, error) {
	// https://www.wwpdb.org/documentation/file-format-content/format33/sect9.html#ATOM
	if len(line) < 54 {
		return nil, fmt.Errorf("atom record too short (%d columns)", len(line))
	}
	if len(line) < 80 {
		line += strings.Repeat(" ", 80-len(line))
	}

	var atom Atom
	var err error
	atom.HetAtm = strings.HasPrefix(line, "HETATM")
	atom.Serial, _ = strconv.ParseInt(strings.TrimSpace(line[6:11]), 10, 64)
	atom.Name = strings.TrimSpace(line[12:16])
	atom.AltLoc = strings.TrimSpace(line[16:17])
	atom.Residue = strings.TrimSpace(line[17:20])
	atom.Chain = strings.TrimSpace(line[21:22])
	atom.InsertionCode = strings.TrimSpace(line[26:27])

	if atom.ResidueNumber, err = strconv.Atoi(strings.TrimSpace(line[22:26])); err != nil {
		return nil, fmt.Errorf("residue number: %v", err)
	}
	if atom.X, err = strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64); err != nil {
		return nil, fmt.Errorf("x coordinate: %v", err)
	}
	if atom.Y, err = strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64); err != nil {
		return nil, fmt.Errorf("y coordinate: %v", err)
	}
	if atom.Z, err = strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64); err != nil {
		return nil, fmt.Errorf("z coordinate: %v", err)
	}
	atom.Occupancy, _ = strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64)
	atom.BFactor, _ = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	atom.Element = strings.TrimSpace(line[76:78])
	atom.Charge = strings.TrimSpace(line[78:80])

	return &atom, nil
}
