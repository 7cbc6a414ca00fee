package pdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// pdbRecords holds the raw records of a PDB formatted file needed to build a deposit.
type pdbRecords struct {
	id      string
	atoms   []*Atom
	seqRes  map[string][]string    // chain ID to SEQRES residue names
	missing map[string][]ResidueID // chain ID to REMARK 465 residues
}

// ReadPDB parses a PDB formatted file. Only the first model is kept.
func ReadPDB(r io.Reader) (*Deposit, error) {
	recs, err := scanPDB(r)
	if err != nil {
		return nil, err
	}
	if len(recs.atoms) == 0 {
		return nil, errors.New("atoms not found")
	}

	return recs.deposit(), nil
}

func scanPDB(r io.Reader) (*pdbRecords, error) {
	recs := &pdbRecords{
		seqRes:  make(map[string][]string),
		missing: make(map[string][]ResidueID),
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	alt := newAltLocFilter()
	var inMissing, modelDone bool
	lineNo := 0
	for sc.Scan() {
		line := sc.Text()
		lineNo++

		switch {
		case strings.HasPrefix(line, "HEADER"):
			recs.id = strings.ToLower(strings.TrimSpace(column(line, 62, 66)))

		case strings.HasPrefix(line, "SEQRES"):
			// https://www.wwpdb.org/documentation/file-format-content/format33/sect3.html#SEQRES
			chain := strings.TrimSpace(column(line, 11, 12))
			recs.seqRes[chain] = append(recs.seqRes[chain], strings.Fields(column(line, 19, 80))...)

		case strings.HasPrefix(line, "REMARK 465"):
			body := column(line, 10, len(line))
			if !inMissing {
				inMissing = strings.Contains(body, "RES C SSSEQI")
				continue
			}
			if res, ok := parseMissing(body); ok {
				recs.missing[res.Chain] = append(recs.missing[res.Chain], res)
			}

		case strings.HasPrefix(line, "ENDMDL"):
			modelDone = true

		case strings.HasPrefix(line, "ATOM  "), strings.HasPrefix(line, "HETATM"):
			if modelDone {
				continue
			}
			atom, err := parseAtomRecord(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNo, err)
			}
			if !alt.keep(atom) {
				continue
			}
			recs.atoms = append(recs.atoms, atom)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %v", err)
	}

	return recs, nil
}

// parseMissing parses the body of a REMARK 465 residue line: [model] name chain number[icode].
func parseMissing(body string) (ResidueID, bool) {
	f := strings.Fields(body)
	if len(f) == 4 {
		f = f[1:]
	}
	if len(f) != 3 {
		return ResidueID{}, false
	}

	num := strings.TrimRightFunc(f[2], unicode.IsLetter)
	seq, err := strconv.Atoi(num)
	if err != nil {
		return ResidueID{}, false
	}

	return ResidueID{Chain: f[1], Seq: seq, ICode: f[2][len(num):], Name: f[0]}, true
}

// deposit flags polymer atoms and maps SEQRES onto the observed residues.
// Each chain is its own entity, named after the chain.
func (recs *pdbRecords) deposit() *Deposit {
	d := &Deposit{
		ID:       recs.id,
		Format:   FormatPDB,
		Atoms:    recs.atoms,
		Entities: make(map[string]*Entity),
	}

	observed := make(map[string][]ResidueID)
	seen := make(map[ResidueID]bool)
	for _, a := range d.Atoms {
		a.EntityID = a.Chain
		a.Polymer = !a.HetAtm || (a.Residue != "HOH" && contains(recs.seqRes[a.Chain], a.Residue))
		if !a.Polymer {
			continue
		}
		rid := a.ResidueID()
		if !seen[rid] {
			seen[rid] = true
			observed[a.Chain] = append(observed[a.Chain], rid)
		}
	}

	for chain, residues := range observed {
		e := &Entity{ID: chain, Type: "polymer"}
		monomers, err := mergeSeqRes(recs.seqRes[chain], residues, recs.missing[chain])
		e.setChain(chain, monomers, err)
		d.Entities[chain] = e
	}

	return d
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// column returns line[start:end], clipped to the line length.
func column(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}
