// Package datfile writes feature rows to .dat files, one file per chain.
// A file that was not committed never remains on disk.
package datfile

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tikz/featurizer/feature"
	"github.com/tikz/featurizer/pdb"
)

// ErrClosed is returned when writing to a committed or aborted file.
var ErrClosed = errors.New("dat file closed")

// Options configure how files are created.
type Options struct {
	Dir    string // output directory, "." when empty
	Atomic bool   // write to a temporary file and rename it on commit
	EmitSS bool   // include the secondary structure column
	Logger *slog.Logger
}

// Name returns the output file name for an input structure file and chain.
func Name(input, chain string) string {
	return pdb.BaseName(input) + "_" + chain + ".dat"
}

// File is an open .dat file.
type File struct {
	path string // final path
	tmp  string // file being written, same as path unless atomic
	f    *os.File
	w    *bufio.Writer
	opts Options
	rows int
	done bool
}

// Create opens the output file for an input structure file and chain.
func Create(input, chain string, opts Options) (*File, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	df := &File{path: filepath.Join(opts.Dir, Name(input, chain)), opts: opts}

	var err error
	if opts.Atomic {
		df.f, err = os.CreateTemp(opts.Dir, ".tmp-*.dat")
	} else {
		df.f, err = os.Create(df.path)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", df.path, err)
	}
	df.tmp = df.f.Name()
	df.w = bufio.NewWriterSize(df.f, 64*1024)

	return df, nil
}

// Path returns the final path of the file.
func (df *File) Path() string {
	return df.path
}

// Rows returns the number of rows written so far.
func (df *File) Rows() int {
	return df.rows
}

// WriteRow appends one row. A failed write aborts the file.
func (df *File) WriteRow(r *feature.Row) error {
	if df.done {
		return ErrClosed
	}
	if _, err := df.w.WriteString(Format(r, df.opts.EmitSS)); err != nil {
		err = fmt.Errorf("write %s: %w", df.path, err)
		df.Abort(err)
		return err
	}
	df.rows++
	return nil
}

// Commit flushes and closes the file. On failure the file is removed.
func (df *File) Commit() error {
	if df.done {
		return ErrClosed
	}

	err := df.w.Flush()
	if err == nil {
		err = df.f.Sync()
	}
	if err != nil {
		err = fmt.Errorf("write %s: %w", df.path, err)
		df.Abort(err)
		return err
	}

	df.done = true
	if err := df.f.Close(); err != nil {
		err = fmt.Errorf("close %s: %w", df.path, err)
		df.remove(err)
		return err
	}
	if df.tmp != df.path {
		if err := os.Rename(df.tmp, df.path); err != nil {
			err = fmt.Errorf("rename %s: %w", df.path, err)
			df.remove(err)
			return err
		}
	}

	return nil
}

// Abort closes and deletes the file, logging whether the deletion worked.
// It is a no-op after Commit or a previous Abort.
func (df *File) Abort(cause error) {
	if df.done {
		return
	}
	df.done = true
	df.f.Close()
	df.remove(cause)
}

func (df *File) remove(cause error) {
	log := df.opts.Logger.With("file", df.path)
	if err := os.Remove(df.tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Error("cannot delete partial output", "cause", cause, "error", err)
		return
	}
	log.Info("deleted partial output", "cause", cause)
}
