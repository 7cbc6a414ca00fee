package datfile

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tikz/featurizer/feature"
	"github.com/tikz/featurizer/pdb"
	"gonum.org/v1/gonum/spatial/r3"
)

func testRows() []*feature.Row {
	id := pdb.ResidueID{Chain: "A", Seq: 3, Name: "ALA"}
	ca := r3.Vec{X: 1.458, Y: -0.5, Z: 12.25}
	return []*feature.Row{
		{Index: 0, Monomer: pdb.Monomer{Name: "MET", Gap: true}},
		{
			Index: 1, Monomer: pdb.Monomer{Name: "ALA"}, ID: &id, SS: 'H', CA: &ca,
			Edges: []feature.HBondEdge{
				{Partner: 5, Energy: -2.276, Dir: feature.Donor},
				{Partner: 12, Energy: -0.5, Dir: feature.Acceptor},
			},
		},
	}
}

func TestFormat(t *testing.T) {
	rows := testRows()

	if got := Format(rows[0], true); got != " -   MET\n" {
		t.Errorf("unexpected gap row %q", got)
	}

	expected := "   1 ALA A:3:ALA : H    1.458   -0.500   12.250    5 -2.276   12 -0.500\n"
	if got := Format(rows[1], true); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}

	expected = "   1 ALA A:3:ALA :    1.458   -0.500   12.250    5 -2.276   12 -0.500\n"
	if got := Format(rows[1], false); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestName(t *testing.T) {
	for input, expected := range map[string]string{
		"/data/1abc.cif":    "1abc_A.dat",
		"pdb/2xyz.pdb.gz":   "2xyz_A.dat",
		"model.v2.mmcif.GZ": "model.v2_A.dat",
	} {
		if got := Name(input, "A"); got != expected {
			t.Errorf("%s: expected %s, got %s", input, expected, got)
		}
	}
}

func TestCommit(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		dir := t.TempDir()
		df, err := Create("/data/1abc.cif", "A", Options{Dir: dir, Atomic: atomic, EmitSS: true})
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range testRows() {
			if err := df.WriteRow(r); err != nil {
				t.Fatal(err)
			}
		}
		if err := df.Commit(); err != nil {
			t.Fatal(err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "1abc_A.dat"))
		if err != nil {
			t.Fatal(err)
		}
		if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 2 || df.Rows() != 2 {
			t.Errorf("atomic=%v: expected 2 lines, got %d", atomic, len(lines))
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Errorf("atomic=%v: expected only the output file, got %d entries", atomic, len(entries))
		}

		if err := df.WriteRow(testRows()[0]); !errors.Is(err, ErrClosed) {
			t.Errorf("atomic=%v: expected ErrClosed after commit, got %v", atomic, err)
		}
	}
}

func TestAbort(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		dir := t.TempDir()
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))

		df, err := Create("1abc.pdb", "B", Options{Dir: dir, Atomic: atomic, Logger: logger})
		if err != nil {
			t.Fatal(err)
		}
		if err := df.WriteRow(testRows()[0]); err != nil {
			t.Fatal(err)
		}
		df.Abort(feature.ErrResidueNotDefined)
		df.Abort(feature.ErrResidueNotDefined)

		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Errorf("atomic=%v: expected no files after abort, got %d", atomic, len(entries))
		}
		if strings.Count(logs.String(), "deleted partial output") != 1 {
			t.Errorf("atomic=%v: expected one deletion record, got %q", atomic, logs.String())
		}
		if err := df.Commit(); !errors.Is(err, ErrClosed) {
			t.Errorf("atomic=%v: expected ErrClosed after abort, got %v", atomic, err)
		}
	}
}

func TestAbortRemovedFile(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	df, err := Create("1abc.pdb", "A", Options{Dir: dir, Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	// A file that is already gone counts as deleted.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	df.Abort(errors.New("boom"))
	if !strings.Contains(logs.String(), "deleted partial output") {
		t.Errorf("expected a missing file to count as deleted, got %q", logs.String())
	}
}
