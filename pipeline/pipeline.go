// Package pipeline turns chain tasks into .dat files, one task at a time.
// A failed task is logged and never stops the batch.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tikz/featurizer/datfile"
	"github.com/tikz/featurizer/diag"
	"github.com/tikz/featurizer/dssp"
	"github.com/tikz/featurizer/feature"
	"github.com/tikz/featurizer/hbond"
	"github.com/tikz/featurizer/pdb"
)

// Task is one structure file and the chain to featurize.
type Task struct {
	Path     string
	Chain    string
	HasChain bool
	Source   string // list file token or command line flag the task came from
}

// Settings control how tasks are processed.
type Settings struct {
	OutputDir   string
	Atomic      bool
	EmitSS      bool
	SSSource    string // "internal" or "mkdssp"
	MkdsspPath  string
	HBondCutoff float64
}

// Summary counts task outcomes.
type Summary struct {
	Total   int
	Written int
	Skipped int
	Failed  int
}

// Run processes tasks in order until they are done or ctx is cancelled.
func Run(ctx context.Context, tasks []Task, set Settings, logger *slog.Logger) Summary {
	sum := Summary{Total: len(tasks)}
	start := time.Now()

	for i, t := range tasks {
		if err := ctx.Err(); err != nil {
			logger.Warn("batch cancelled", "code", diag.Classify(err), "pending", len(tasks)-i)
			break
		}

		log := logger.With("file", t.Path, "chain", t.Chain)
		if !t.HasChain {
			log.Warn("no chain selected, skipping", "source", t.Source)
			sum.Skipped++
			continue
		}

		t0 := time.Now()
		out, rows, err := Process(ctx, t, set, log)
		if err != nil {
			log.Error("chain failed", "code", diag.Classify(err), "error", err)
			sum.Failed++
			continue
		}
		log.Info("chain written", "output", out, "rows", rows, "dur_ms", time.Since(t0).Milliseconds())
		sum.Written++
	}

	logger.Info("batch finished", "total", sum.Total, "written", sum.Written,
		"skipped", sum.Skipped, "failed", sum.Failed, "dur_ms", time.Since(start).Milliseconds())
	return sum
}

// Process featurizes one chain and returns the output path and row count.
// No output file remains when it returns an error.
func Process(ctx context.Context, t Task, set Settings, logger *slog.Logger) (string, int, error) {
	d, err := pdb.Load(t.Path)
	if err != nil {
		return "", 0, fmt.Errorf("load: %w", err)
	}

	s, err := d.Chain(t.Chain)
	if err != nil {
		return "", 0, fmt.Errorf("%w (polymer chains: %s)", err, strings.Join(d.ChainIDs(), " "))
	}

	e, err := d.Entity(s.EntityID())
	if err != nil {
		return "", 0, fmt.Errorf("entity: %w: %v", feature.ErrMissingData, err)
	}
	monomers, err := e.ChainMonomers(t.Chain)
	if err != nil {
		return "", 0, fmt.Errorf("sequence: %w: %v", feature.ErrMissingData, err)
	}

	bonds := hbond.New(s, set.HBondCutoff)
	logger.Debug("structure loaded", "format", d.Format, "residues", len(s.ResidueIDs()),
		"sequence", pdb.Sequence(monomers), "hbonds", bonds.Len())

	b := &feature.Builder{Coords: feature.StructureCoords(s), Bonds: bonds, Logger: logger}
	if set.EmitSS {
		ss, err := secondaryStructure(ctx, t.Path, s, bonds, set)
		if err != nil {
			return "", 0, err
		}
		b.SS = ss
	}

	out, err := datfile.Create(t.Path, t.Chain, datfile.Options{
		Dir:    set.OutputDir,
		Atomic: set.Atomic,
		EmitSS: set.EmitSS,
		Logger: logger,
	})
	if err != nil {
		return "", 0, err
	}

	err = b.Build(feature.NewAligner(monomers, s.ResidueIDs()), func(r *feature.Row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return out.WriteRow(r)
	})
	if err != nil {
		out.Abort(err)
		return "", 0, err
	}
	if err := out.Commit(); err != nil {
		return "", 0, err
	}

	return out.Path(), out.Rows(), nil
}

func secondaryStructure(ctx context.Context, path string, s *pdb.Structure, bonds *hbond.Map, set Settings) (feature.SecondaryStructure, error) {
	if set.SSSource == "mkdssp" {
		a, err := dssp.Run(ctx, set.MkdsspPath, path)
		if err != nil {
			return nil, fmt.Errorf("dssp: %w", err)
		}
		return a, nil
	}
	return dssp.Assign(s, bonds), nil
}
