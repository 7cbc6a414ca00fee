package pdb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CodeAndChain splits a combined identifier into an entry code and a chain.
//
// An explicit separator wins: "1abc_A" and "1abc:AB" split on the first '_'
// or ':', which allows multi-letter chains. Otherwise a five character token
// is a four character code followed by a one character chain ("1abcA").
// Any other token is a code without chain. Codes are returned lower case,
// chains keep their case.
func CodeAndChain(token string) (code string, chain string, ok bool) {
	if i := strings.IndexAny(token, "_:"); i >= 0 {
		code, chain = token[:i], token[i+1:]
		return strings.ToLower(code), chain, chain != ""
	}
	if len(token) == 5 {
		return strings.ToLower(token[:4]), token[4:], true
	}
	return strings.ToLower(token), "", false
}

// FindCIFFile looks for the mmCIF file of an entry inside dir.
func FindCIFFile(code, dir string) (string, error) {
	return findFile(dir, code, []string{
		"%s.cif", "%S.cif", "%s.cif.gz", "%S.cif.gz",
	})
}

// FindPDBFile looks for the PDB formatted file of an entry inside dir.
func FindPDBFile(code, dir string) (string, error) {
	return findFile(dir, code, []string{
		"%s.pdb", "%S.pdb", "pdb%s.ent", "%s.pdb.gz", "%S.pdb.gz", "pdb%s.ent.gz",
	})
}

// findFile tries the name patterns in dir and in the divided PDB mirror
// layout, where files sit in a subdirectory named after the middle two
// characters of the code. In patterns %s is the lower case code and %S the
// upper case code.
func findFile(dir, code string, patterns []string) (string, error) {
	if dir == "" {
		dir = "."
	}
	code = strings.ToLower(code)

	dirs := []string{dir}
	if len(code) == 4 {
		dirs = append(dirs, filepath.Join(dir, code[1:3]))
	}

	for _, d := range dirs {
		for _, p := range patterns {
			name := strings.ReplaceAll(p, "%S", strings.ToUpper(code))
			name = strings.ReplaceAll(name, "%s", code)
			path := filepath.Join(d, name)
			if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("no file for %s in %s", code, dir)
}
