package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tikz/featurizer/pdb"
	"github.com/tikz/featurizer/pipeline"
)

// readList reads a list file and resolves its entries inside dir.
func readList(path, dir string, logger *slog.Logger) ([]pipeline.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list file: %w", err)
	}
	defer f.Close()

	return parseList(f, dir, logger)
}

// parseList turns every entry of a list into a task. Only the first token of
// a line is used; blank lines and lines starting with # are ignored.
// Entries without a structure file in dir are dropped with a warning.
func parseList(r io.Reader, dir string, logger *slog.Logger) ([]pipeline.Task, error) {
	var tasks []pipeline.Task

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		token := fields[0]

		code, chain, ok := pdb.CodeAndChain(token)
		path, err := findStructure(code, dir)
		if err != nil {
			logger.Warn("structure file not found, dropping entry", "entry", token, "line", lineNo, "dir", dir)
			continue
		}
		tasks = append(tasks, pipeline.Task{Path: path, Chain: chain, HasChain: ok, Source: token})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read list file: %w", err)
	}

	return tasks, nil
}

// findStructure prefers the mmCIF file of an entry over the PDB file.
func findStructure(code, dir string) (string, error) {
	if path, err := pdb.FindCIFFile(code, dir); err == nil {
		return path, nil
	}
	return pdb.FindPDBFile(code, dir)
}

// singleTask builds the task of a file given on the command line.
func singleTask(path, chain string) pipeline.Task {
	return pipeline.Task{Path: path, Chain: chain, HasChain: chain != "", Source: "--input_file"}
}
