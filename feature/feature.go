// Package feature aligns an entity's designed sequence with the observed
// residues of a chain and assembles one feature row per entity position.
package feature

import (
	"errors"
	"fmt"

	"github.com/tikz/featurizer/pdb"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrResidueNotDefined is returned when the entity sequence needs more
	// observed residues than the chain has.
	ErrResidueNotDefined = errors.New("residue not defined")

	// ErrMissingData is returned when a residue lacks data a row requires.
	ErrMissingData = errors.New("missing required data")

	// ErrUnboundResidues is returned when the entity sequence ends before
	// every observed residue was bound to a position.
	ErrUnboundResidues = errors.New("observed residues left unbound")
)

// ResidueNotDefinedError reports the entity position where the observed
// residues ran out.
type ResidueNotDefinedError struct {
	Index   int
	Monomer pdb.Monomer
}

func (e *ResidueNotDefinedError) Error() string {
	return fmt.Sprintf("residue not defined for entity position %d (%s)", e.Index, e.Monomer)
}

func (e *ResidueNotDefinedError) Is(target error) bool {
	return target == ErrResidueNotDefined
}

// UnboundResiduesError reports the observed residues left over once the
// entity sequence was exhausted.
type UnboundResiduesError struct {
	Count int
	First pdb.ResidueID
}

func (e *UnboundResiduesError) Error() string {
	return fmt.Sprintf("%d observed residues left unbound after the entity sequence, starting at %s", e.Count, e.First)
}

func (e *UnboundResiduesError) Is(target error) bool {
	return target == ErrUnboundResidues
}

// CoordinateProvider returns the alpha carbon position of a residue.
type CoordinateProvider interface {
	CA(id pdb.ResidueID) (r3.Vec, error)
}

// SecondaryStructure returns the secondary structure code of a residue.
type SecondaryStructure interface {
	Code(id pdb.ResidueID) (byte, error)
}

// HBondLookup returns the energy of a hydrogen bond from donor N-H to
// acceptor C=O, if there is one.
type HBondLookup interface {
	Bond(donor, acceptor pdb.ResidueID) (float64, bool)
}

// Direction tells which side of a hydrogen bond a row's residue is on.
type Direction int

const (
	Donor Direction = iota
	Acceptor
)

func (d Direction) String() string {
	if d == Acceptor {
		return "acceptor"
	}
	return "donor"
}

// HBondEdge is a hydrogen bond between a row's residue and a partner row.
type HBondEdge struct {
	Partner int // entity row index of the partner
	Energy  float64
	Dir     Direction
}

// Row is the feature row of one entity position. Gap rows have no residue.
type Row struct {
	Index   int
	Monomer pdb.Monomer
	ID      *pdb.ResidueID
	SS      byte // zero when secondary structure is not emitted
	CA      *r3.Vec
	Edges   []HBondEdge
}

// Gap reports whether the row has no observed residue.
func (r *Row) Gap() bool {
	return r.ID == nil
}

// StructureCoords provides alpha carbon positions from a structure.
func StructureCoords(s *pdb.Structure) CoordinateProvider {
	return structureCoords{s}
}

type structureCoords struct {
	s *pdb.Structure
}

func (c structureCoords) CA(id pdb.ResidueID) (r3.Vec, error) {
	a, err := c.s.Atom(id, "CA")
	if err != nil {
		return r3.Vec{}, err
	}
	return a.Pos(), nil
}
