package pdb

import (
	"strconv"
	"strings"
)

var residueNames = [...][3]string{
	{"Alanine", "Ala", "A"},
	{"Arginine", "Arg", "R"},
	{"Asparagine", "Asn", "N"},
	{"Aspartic acid", "Asp", "D"},
	{"Cysteine", "Cys", "C"},
	{"Glutamic acid", "Glu", "E"},
	{"Glutamine", "Gln", "Q"},
	{"Glycine", "Gly", "G"},
	{"Histidine", "His", "H"},
	{"Isoleucine", "Ile", "I"},
	{"Leucine", "Leu", "L"},
	{"Lysine", "Lys", "K"},
	{"Methionine", "Met", "M"},
	{"Phenylalanine", "Phe", "F"},
	{"Proline", "Pro", "P"},
	{"Serine", "Ser", "S"},
	{"Threonine", "Thr", "T"},
	{"Tryptophan", "Trp", "W"},
	{"Tyrosine", "Tyr", "Y"},
	{"Valine", "Val", "V"},
}

// OneLetter returns the one letter code for a three letter residue name, or "X".
func OneLetter(name3 string) string {
	for _, res := range residueNames {
		if strings.EqualFold(res[1], name3) {
			return res[2]
		}
	}
	return "X"
}

// Sequence renders monomers as one letter codes, with gaps in lower case.
func Sequence(monomers []Monomer) string {
	var b strings.Builder
	for _, m := range monomers {
		c := OneLetter(m.Name)
		if m.Gap {
			c = strings.ToLower(c)
		}
		b.WriteString(c)
	}
	return b.String()
}

// ResidueID identifies a residue observed in the coordinate data.
type ResidueID struct {
	Chain string
	Seq   int    // author residue number
	ICode string // insertion code, empty when absent
	Name  string // three letter residue name
}

// String renders the identifier as chain:number[icode]:name, without spaces.
func (r ResidueID) String() string {
	return r.Chain + ":" + strconv.Itoa(r.Seq) + r.ICode + ":" + r.Name
}

// Less orders residues by number, then insertion code.
func (r ResidueID) Less(o ResidueID) bool {
	if r.Seq != o.Seq {
		return r.Seq < o.Seq
	}
	return r.ICode < o.ICode
}

// Monomer is a single position of an entity's designed sequence.
// Gap is set when the position has no coordinates in the structure.
type Monomer struct {
	Name string
	Gap  bool
}

func (m Monomer) String() string {
	return m.Name
}
