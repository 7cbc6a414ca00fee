package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const helixPDB = "pdb/testdata/helix.pdb"

func TestParseList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1abc.cif", "2bcd.pdb", "3cde.pdb", "3cde.cif.gz"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	list := "# code chain\n\n1ABCA extra tokens\n2bcd\n  3cde_B\n9zzzA\n"
	var logs bytes.Buffer
	tasks, err := parseList(strings.NewReader(list), dir, slog.New(slog.NewTextHandler(&logs, nil)))
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	expected := []struct {
		file, chain string
		hasChain    bool
	}{
		{"1abc.cif", "A", true},
		{"2bcd.pdb", "", false},
		{"3cde.cif.gz", "B", true},
	}
	for i, e := range expected {
		task := tasks[i]
		if filepath.Base(task.Path) != e.file || task.Chain != e.chain || task.HasChain != e.hasChain {
			t.Errorf("task %d: expected %s chain %q, got %+v", i, e.file, e.chain, task)
		}
	}
	if !strings.Contains(logs.String(), "entry=9zzzA") {
		t.Errorf("expected a warning for the missing entry, got %q", logs.String())
	}
}

func TestSingleTask(t *testing.T) {
	if task := singleTask("x.pdb", ""); task.HasChain {
		t.Errorf("expected no chain, got %+v", task)
	}
	if task := singleTask("x.pdb", "A"); !task.HasChain || task.Chain != "A" {
		t.Errorf("expected chain A, got %+v", task)
	}
}

func TestRunExitCodes(t *testing.T) {
	out := t.TempDir()
	list := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(list, []byte("helix_A\nhelix_X\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no input", []string{"--output_dir", out}, exitUsage},
		{"unknown flag", []string{"--bogus"}, exitUsage},
		{"positional argument", []string{"-i", helixPDB, "extra"}, exitUsage},
		{"missing list", []string{"-l", filepath.Join(out, "none.txt")}, exitUsage},
		{"bad config", []string{"-i", helixPDB, "-c", "A", "--ss_source", "stride"}, exitConfig},
		{"bad log level", []string{"-i", helixPDB, "-c", "A", "--log_level", "loud"}, exitConfig},
		{"failed chain", []string{"-i", helixPDB, "-c", "X", "--output_dir", out}, exitOK},
		{"strict failed chain", []string{"-i", helixPDB, "-c", "X", "--output_dir", out, "--strict"}, exitFailed},
		{"list", []string{"-l", list, "-p", "pdb/testdata", "--output_dir", out}, exitOK},
	}
	for _, tt := range tests {
		if code := run(context.Background(), tt.args, io.Discard); code != tt.code {
			t.Errorf("%s: expected exit code %d, got %d", tt.name, tt.code, code)
		}
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "helix_A.dat" {
		t.Errorf("expected only helix_A.dat, got %v", entries)
	}
}

func TestRunSingleFile(t *testing.T) {
	out := t.TempDir()
	var stderr bytes.Buffer
	args := []string{"-i", helixPDB, "-c", "A", "--output_dir", out, "--log_format", "json", "--no_ss"}
	if code := run(context.Background(), args, &stderr); code != exitOK {
		t.Fatalf("expected success, got %d: %s", code, stderr.String())
	}

	data, err := os.ReadFile(filepath.Join(out, "helix_A.dat"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), " -   MET\n -   GLY\n   2 ALA A:3:ALA :    1.458") {
		t.Errorf("unexpected output %q", data)
	}
	if !strings.Contains(stderr.String(), `"run_id"`) {
		t.Errorf("expected JSON records with a run id, got %q", stderr.String())
	}
}
