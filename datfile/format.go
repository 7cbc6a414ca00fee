package datfile

import (
	"fmt"
	"strings"

	"github.com/tikz/featurizer/feature"
)

// Format renders a row as one line of a .dat file.
//
//	gap:  " -  " descriptor
//	data: index descriptor residue : ss x y z [partner energy]...
func Format(r *feature.Row, emitSS bool) string {
	var b strings.Builder
	if r.Gap() {
		fmt.Fprintf(&b, " -   %s\n", r.Monomer)
		return b.String()
	}

	fmt.Fprintf(&b, "%4d %s %s : ", r.Index, r.Monomer, r.ID)
	if emitSS {
		fmt.Fprintf(&b, "%c ", r.SS)
	}
	fmt.Fprintf(&b, "%8.3f %8.3f %8.3f", r.CA.X, r.CA.Y, r.CA.Z)
	for _, e := range r.Edges {
		fmt.Fprintf(&b, " %4d %.3f", e.Partner, e.Energy)
	}
	b.WriteByte('\n')

	return b.String()
}
