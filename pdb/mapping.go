package pdb

import "fmt"

// mergeSeqRes builds the designed sequence of a chain from its SEQRES names,
// the residues with coordinates, and the residues reported missing.
//
// Observed and missing residues are merged by residue number and insertion
// code; the merged positions must line up one to one with SEQRES. Without
// SEQRES records the merged list itself is the sequence.
func mergeSeqRes(seqRes []string, observed, missing []ResidueID) ([]Monomer, error) {
	merged := make([]Monomer, 0, len(observed)+len(missing))

	var i, j int
	for i < len(observed) || j < len(missing) {
		if j < len(missing) && (i == len(observed) || missing[j].Less(observed[i])) {
			merged = append(merged, Monomer{Name: missing[j].Name, Gap: true})
			j++
			continue
		}
		merged = append(merged, Monomer{Name: observed[i].Name})
		i++
	}

	if len(seqRes) == 0 {
		return merged, nil
	}
	if len(seqRes) != len(merged) {
		return nil, fmt.Errorf("SEQRES lists %d residues, coordinates and REMARK 465 account for %d",
			len(seqRes), len(merged))
	}
	for k := range merged {
		merged[k].Name = seqRes[k]
	}

	return merged, nil
}
