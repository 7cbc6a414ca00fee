// Command featurizer converts one chain of a PDB or mmCIF structure into a
// per-residue feature table.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tikz/featurizer/config"
	"github.com/tikz/featurizer/diag"
	"github.com/tikz/featurizer/pipeline"
)

// Exit codes.
const (
	exitOK     = 0
	exitUsage  = 2
	exitConfig = 3
	exitFailed = 4
)

// UsageError is returned for invalid command line usage.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

var errChainsFailed = errors.New("some chains failed")

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	cmd := newCommand(stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var cerr *config.Error
	switch {
	case errors.As(err, &cerr):
		fmt.Fprintf(stderr, "featurizer: %v\n", err)
		return exitConfig
	case errors.Is(err, errChainsFailed):
		return exitFailed
	default:
		fmt.Fprintf(stderr, "featurizer: %v\n%s", err, cmd.UsageString())
		return exitUsage
	}
}

func newCommand(stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "featurizer (-i FILE [-c CHAIN] | -l LIST [-p DIR])",
		Short:         "Write per-residue backbone features of a structure chain to a .dat file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return featurize(cmd.Context(), cmd.Flags(), stderr)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{err.Error()}
	})

	f := cmd.Flags()
	f.StringP("input_file", "i", "", "structure file (PDB or mmCIF, optionally gzipped)")
	f.StringP("select_chain", "c", "", "chain to featurize in --input_file")
	f.StringP("list_file", "l", "", "file with one entry code (and chain) per line")
	config.RegisterFlags(f)

	return cmd
}

func featurize(ctx context.Context, flags *pflag.FlagSet, stderr io.Writer) error {
	cfg, err := config.Load(flags, ".env")
	if err != nil {
		return err
	}

	logger, err := diag.NewLogger(stderr, diag.NewRunID(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return &config.Error{Err: err}
	}

	input, _ := flags.GetString("input_file")
	chain, _ := flags.GetString("select_chain")
	list, _ := flags.GetString("list_file")

	var tasks []pipeline.Task
	switch {
	case list != "":
		if input != "" {
			logger.Warn("both --list_file and --input_file given, ignoring --input_file", "input_file", input)
		}
		if tasks, err = readList(list, cfg.Path, logger); err != nil {
			return &UsageError{err.Error()}
		}
	case input != "":
		tasks = []pipeline.Task{singleTask(input, chain)}
	default:
		return &UsageError{"one of --input_file or --list_file is required"}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum := pipeline.Run(ctx, tasks, pipeline.Settings{
		OutputDir:   cfg.OutputDir,
		Atomic:      cfg.Atomic,
		EmitSS:      cfg.EmitSS,
		SSSource:    cfg.SSSource,
		MkdsspPath:  cfg.MkdsspPath,
		HBondCutoff: cfg.HBondCutoff,
	}, logger)

	if cfg.Strict && sum.Failed > 0 {
		logger.Error("strict mode: failing run", "failed", sum.Failed)
		return errChainsFailed
	}
	return nil
}
