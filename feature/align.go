package feature

import "github.com/tikz/featurizer/pdb"

// Binding pairs an entity position with its observed residue. Gap bindings
// have no residue.
type Binding struct {
	Index   int
	Monomer pdb.Monomer
	ID      *pdb.ResidueID
}

// Aligner walks the entity sequence and binds every non-gap position to the
// next unconsumed observed residue. Observed residues are never reordered or
// skipped.
type Aligner struct {
	entity   []pdb.Monomer
	observed []pdb.ResidueID

	next   int // next entity position
	cursor int // next observed residue
	rowOf  []int
}

// NewAligner prepares the lock-step walk over entity and observed residues.
func NewAligner(entity []pdb.Monomer, observed []pdb.ResidueID) *Aligner {
	a := &Aligner{
		entity:   entity,
		observed: observed,
		rowOf:    make([]int, len(observed)),
	}

	for k := range a.rowOf {
		a.rowOf[k] = -1
	}
	k := 0
	for i, m := range entity {
		if m.Gap {
			continue
		}
		if k == len(observed) {
			break
		}
		a.rowOf[k] = i
		k++
	}

	return a
}

// Next returns the binding of the next entity position. It returns false
// once the entity is exhausted, a *ResidueNotDefinedError when a non-gap
// position has no observed residue left, and an *UnboundResiduesError when
// the entity ends with observed residues still unbound.
func (a *Aligner) Next() (Binding, bool, error) {
	if a.next >= len(a.entity) {
		if a.cursor < len(a.observed) {
			return Binding{}, false, &UnboundResiduesError{
				Count: len(a.observed) - a.cursor,
				First: a.observed[a.cursor],
			}
		}
		return Binding{}, false, nil
	}

	i := a.next
	m := a.entity[i]
	if m.Gap {
		a.next++
		return Binding{Index: i, Monomer: m}, true, nil
	}

	if a.cursor >= len(a.observed) {
		return Binding{}, false, &ResidueNotDefinedError{Index: i, Monomer: m}
	}

	id := a.observed[a.cursor]
	b := Binding{Index: i, Monomer: m, ID: &id}
	a.cursor++
	a.next++
	return b, true, nil
}

// Observed returns the observed residues in order.
func (a *Aligner) Observed() []pdb.ResidueID {
	return a.observed
}

// RowOf returns the entity row bound to the k-th observed residue, or -1.
func (a *Aligner) RowOf(k int) int {
	if k < 0 || k >= len(a.rowOf) {
		return -1
	}
	return a.rowOf[k]
}
