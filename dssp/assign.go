package dssp

import (
	"math"

	"github.com/tikz/featurizer/hbond"
	"github.com/tikz/featurizer/pdb"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bonds looks up backbone hydrogen bonds from donor N-H to acceptor C=O.
type Bonds interface {
	Bond(donor, acceptor pdb.ResidueID) (float64, bool)
}

const bendAngle = 70.0

type bridgeKind int

const (
	parallel bridgeKind = iota + 1
	antiparallel
)

type bridge struct {
	partner int
	kind    bridgeKind
}

// Assign classifies the residues of a structure from its hydrogen bonds.
func Assign(s *pdb.Structure, bonds Bonds) *Assignment {
	return AssignBackbones(hbond.Backbones(s), bonds)
}

// AssignBackbones classifies residues given in chain order.
//
// Two consecutive n-turns make a helix (n=4 H, n=3 G, n=5 I), bridges make
// isolated B or ladder E residues, remaining turns are T and bends S.
// Everything else is coil. Priority is H, B, E, G, I, T, S.
func AssignBackbones(bb []hbond.Backbone, bonds Bonds) *Assignment {
	n := len(bb)

	brk := make([]bool, n) // brk[i]: no peptide bond between i-1 and i
	for i := 1; i < n; i++ {
		brk[i] = hbond.Break(&bb[i-1], &bb[i])
	}
	// linked reports an unbroken chain from i to j.
	linked := func(i, j int) bool {
		if i < 0 || j >= n || i > j {
			return false
		}
		for k := i + 1; k <= j; k++ {
			if brk[k] {
				return false
			}
		}
		return true
	}
	// hb follows the DSSP notation: carbonyl of i bonded to amide of j.
	hb := func(i, j int) bool {
		if i < 0 || j < 0 || i >= n || j >= n {
			return false
		}
		_, ok := bonds.Bond(bb[j].ID, bb[i].ID)
		return ok
	}

	turn := map[int][]bool{3: make([]bool, n), 4: make([]bool, n), 5: make([]bool, n)}
	for span, t := range turn {
		for i := 0; i+span < n; i++ {
			t[i] = linked(i, i+span) && hb(i, i+span)
		}
	}

	helix := map[int][]bool{3: make([]bool, n), 4: make([]bool, n), 5: make([]bool, n)}
	inTurn := make([]bool, n)
	for span, t := range turn {
		for i := 0; i < n; i++ {
			if !t[i] {
				continue
			}
			for k := i + 1; k < i+span && k < n; k++ {
				inTurn[k] = true
			}
			if i > 0 && t[i-1] {
				for k := i; k < i+span && k < n; k++ {
					helix[span][k] = true
				}
			}
		}
	}

	bridges := make([][]bridge, n)
	for i := 1; i+1 < n; i++ {
		for j := i + 3; j+1 < n; j++ {
			if !linked(i-1, i+1) || !linked(j-1, j+1) {
				continue
			}
			var kind bridgeKind
			switch {
			case (hb(i-1, j) && hb(j, i+1)) || (hb(j-1, i) && hb(i, j+1)):
				kind = parallel
			case (hb(i, j) && hb(j, i)) || (hb(i-1, j+1) && hb(j-1, i+1)):
				kind = antiparallel
			default:
				continue
			}
			bridges[i] = append(bridges[i], bridge{j, kind})
			bridges[j] = append(bridges[j], bridge{i, kind})
		}
	}
	hasBridge := func(i, partner int, kind bridgeKind) bool {
		if i < 0 || i >= n {
			return false
		}
		for _, b := range bridges[i] {
			if b.partner == partner && b.kind == kind {
				return true
			}
		}
		return false
	}
	ladder := make([]bool, n)
	for i := range bridges {
		for _, b := range bridges[i] {
			step := 1
			if b.kind == antiparallel {
				step = -1
			}
			if hasBridge(i+1, b.partner+step, b.kind) || hasBridge(i-1, b.partner-step, b.kind) {
				ladder[i] = true
			}
		}
	}

	bend := make([]bool, n)
	for i := 2; i+2 < n; i++ {
		if !linked(i-2, i+2) || bb[i-2].CA == nil || bb[i].CA == nil || bb[i+2].CA == nil {
			continue
		}
		u := r3.Sub(*bb[i].CA, *bb[i-2].CA)
		v := r3.Sub(*bb[i+2].CA, *bb[i].CA)
		cos := r3.Cos(u, v)
		bend[i] = math.Acos(math.Max(-1, math.Min(1, cos)))*180/math.Pi > bendAngle
	}

	a := &Assignment{codes: make(map[residueKey]byte, n)}
	for i := range bb {
		code := byte(Coil)
		switch {
		case helix[4][i]:
			code = 'H'
		case len(bridges[i]) > 0 && !ladder[i]:
			code = 'B'
		case ladder[i]:
			code = 'E'
		case helix[3][i]:
			code = 'G'
		case helix[5][i]:
			code = 'I'
		case inTurn[i]:
			code = 'T'
		case bend[i]:
			code = 'S'
		}
		a.set(keyOf(bb[i].ID), code)
	}

	return a
}
