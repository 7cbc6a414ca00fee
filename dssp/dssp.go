// Package dssp assigns secondary structure codes to residues, either with an
// internal DSSP-style classifier or by running the external mkdssp program.
package dssp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tikz/featurizer/pdb"
)

// Coil is the code of residues without a secondary structure element.
const Coil = 'C'

type residueKey struct {
	chain string
	seq   int
	icode string
}

func keyOf(id pdb.ResidueID) residueKey {
	return residueKey{id.Chain, id.Seq, id.ICode}
}

// Assignment maps residues to single character secondary structure codes.
type Assignment struct {
	codes map[residueKey]byte
}

// Code returns the secondary structure code of a residue.
func (a *Assignment) Code(id pdb.ResidueID) (byte, error) {
	c, ok := a.codes[keyOf(id)]
	if !ok {
		return 0, fmt.Errorf("no secondary structure for residue %s", id)
	}
	return c, nil
}

// Len returns the number of assigned residues.
func (a *Assignment) Len() int {
	return len(a.codes)
}

func (a *Assignment) set(id residueKey, code byte) {
	if a.codes == nil {
		a.codes = make(map[residueKey]byte)
	}
	if code == ' ' {
		code = Coil
	}
	a.codes[id] = code
}

// Run calculates secondary structure for a structure file with mkdssp.
func Run(ctx context.Context, bin, path string) (*Assignment, error) {
	cmd := exec.CommandContext(ctx, bin, "-i", path)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %v", bin, err)
	}

	return Parse(out)
}

// Parse reads the residue section of a classic DSSP output file.
func Parse(out []byte) (*Assignment, error) {
	a := &Assignment{}

	// https://swift.cmbi.umcn.nl/gv/dssp/
	start := false
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		l := sc.Text()
		if len(l) <= 17 {
			continue
		}
		if start {
			posStr := strings.TrimSpace(l[5:10])
			if len(posStr) == 0 {
				// chain break marker
				continue
			}
			pos, err := strconv.Atoi(posStr)
			if err != nil {
				return nil, fmt.Errorf("residue number %q: %v", posStr, err)
			}
			icode := strings.TrimSpace(l[10:11])
			chain := strings.TrimSpace(l[11:12])
			a.set(residueKey{chain, pos, icode}, l[16])
		}
		if l[2] == '#' {
			start = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !start {
		return nil, fmt.Errorf("no residue section in DSSP output")
	}

	return a, nil
}
