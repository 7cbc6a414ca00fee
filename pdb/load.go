package pdb

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrFormat marks files that could not be parsed as a structure.
var ErrFormat = errors.New("malformed structure file")

// Load reads a deposit from a PDB or mmCIF file, optionally gzip compressed.
// The format is chosen by file extension.
func Load(path string) (*Deposit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	name := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, ".gz")
	}

	var d *Deposit
	switch filepath.Ext(name) {
	case ".cif", ".mmcif":
		d, err = ReadCIF(r)
	case ".pdb", ".ent":
		d, err = ReadPDB(r)
	default:
		return nil, fmt.Errorf("unknown structure file extension %q", filepath.Ext(name))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrFormat, err)
	}

	d.Path = path
	if d.ID == "" {
		d.ID = BaseName(path)
	}
	return d, nil
}

// BaseName returns the file name without directory, compression suffix and extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
