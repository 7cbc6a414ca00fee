// Package hbond computes backbone hydrogen bonds with the DSSP electrostatic model.
package hbond

import (
	"math"

	"github.com/tikz/featurizer/pdb"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultCutoff is the energy below which a pair counts as hydrogen bonded, in kcal/mol.
	DefaultCutoff = -0.5

	// MinEnergy is the lowest energy reported for a pair.
	MinEnergy = -9.9

	couplingConstant = -27.888 // -332 * 0.42 * 0.2
	minimalDistance  = 0.5
	minimalCADist    = 9.0
	maxPeptideBond   = 2.5
)

// Backbone holds the backbone atoms of one residue. Missing atoms are nil.
type Backbone struct {
	ID      pdb.ResidueID
	N       *r3.Vec
	CA      *r3.Vec
	C       *r3.Vec
	O       *r3.Vec
	H       *r3.Vec // amide hydrogen, placed from the previous residue's carbonyl
	Proline bool
}

// Backbones extracts the backbone atoms of every residue of a structure, in
// residue order, and places the amide hydrogens.
func Backbones(s *pdb.Structure) []Backbone {
	ids := s.ResidueIDs()
	bb := make([]Backbone, len(ids))
	for i, id := range ids {
		bb[i] = Backbone{
			ID:      id,
			N:       atomPos(s, id, "N"),
			CA:      atomPos(s, id, "CA"),
			C:       atomPos(s, id, "C"),
			O:       atomPos(s, id, "O"),
			Proline: id.Name == "PRO",
		}
	}

	for i := 1; i < len(bb); i++ {
		cur, prev := &bb[i], &bb[i-1]
		if cur.Proline || cur.N == nil || prev.C == nil || prev.O == nil || Break(prev, cur) {
			continue
		}
		// DSSP puts H 1 A from N, along the previous C=O direction.
		h := r3.Add(*cur.N, r3.Unit(r3.Sub(*prev.C, *prev.O)))
		cur.H = &h
	}

	return bb
}

// Break reports whether there is no peptide bond between two consecutive residues.
func Break(prev, cur *Backbone) bool {
	if prev.C == nil || cur.N == nil {
		return true
	}
	return r3.Norm(r3.Sub(*prev.C, *cur.N)) > maxPeptideBond
}

func atomPos(s *pdb.Structure, id pdb.ResidueID, name string) *r3.Vec {
	a, err := s.Atom(id, name)
	if err != nil {
		return nil
	}
	p := a.Pos()
	return &p
}

// Energy returns the DSSP electrostatic energy between the N-H of donor and
// the C=O of acceptor, in kcal/mol.
func Energy(donor, acceptor *Backbone) float64 {
	if donor.H == nil || donor.N == nil || acceptor.C == nil || acceptor.O == nil {
		return 0
	}

	dHO := r3.Norm(r3.Sub(*donor.H, *acceptor.O))
	dHC := r3.Norm(r3.Sub(*donor.H, *acceptor.C))
	dNC := r3.Norm(r3.Sub(*donor.N, *acceptor.C))
	dNO := r3.Norm(r3.Sub(*donor.N, *acceptor.O))

	if dHO < minimalDistance || dHC < minimalDistance || dNC < minimalDistance || dNO < minimalDistance {
		return MinEnergy
	}

	e := couplingConstant/dHO - couplingConstant/dHC + couplingConstant/dNC - couplingConstant/dNO
	e = math.Round(e*1000) / 1000
	if e < MinEnergy {
		e = MinEnergy
	}
	return e
}

type pair struct {
	donor, acceptor pdb.ResidueID
}

// Map is an index of backbone hydrogen bonds between residues of one chain.
type Map struct {
	bonds map[pair]float64
}

// New computes all backbone hydrogen bonds of a structure with energy below cutoff.
func New(s *pdb.Structure, cutoff float64) *Map {
	return FromBackbones(Backbones(s), cutoff)
}

// FromBackbones computes hydrogen bonds between the given residues.
// Pairs whose CA atoms are 9 A or more apart are not evaluated, and a residue
// is never its own partner or the acceptor of the next residue.
func FromBackbones(bb []Backbone, cutoff float64) *Map {
	m := &Map{bonds: make(map[pair]float64)}
	for i := range bb {
		donor := &bb[i]
		if donor.H == nil || donor.CA == nil {
			continue
		}
		for j := range bb {
			acceptor := &bb[j]
			if i == j || j == i-1 || acceptor.CA == nil {
				continue
			}
			if r3.Norm(r3.Sub(*donor.CA, *acceptor.CA)) >= minimalCADist {
				continue
			}
			if e := Energy(donor, acceptor); e < cutoff {
				m.bonds[pair{donor.ID, acceptor.ID}] = e
			}
		}
	}
	return m
}

// Bond returns the energy of the hydrogen bond from donor N-H to acceptor C=O.
func (m *Map) Bond(donor, acceptor pdb.ResidueID) (float64, bool) {
	e, ok := m.bonds[pair{donor, acceptor}]
	return e, ok
}

// Len returns the number of bonds.
func (m *Map) Len() int {
	return len(m.bonds)
}
