package diag

import (
	"context"
	"errors"
	"os"

	"github.com/tikz/featurizer/feature"
	"github.com/tikz/featurizer/pdb"
)

// Code is the error class written to log records.
type Code string

const (
	CodeUnknown           Code = "unknown"
	CodeNoSuchChain       Code = "no_such_chain"
	CodeResidueNotDefined Code = "residue_not_defined"
	CodeUnboundResidues   Code = "unbound_residues"
	CodeMissingData       Code = "missing_data"
	CodeParse             Code = "parse"
	CodeIO                Code = "io"
	CodeCancel            Code = "cancel"
)

// Classify maps an error to its code using sentinel errors and error types.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeUnknown
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCancel
	case errors.Is(err, pdb.ErrNoSuchChain):
		return CodeNoSuchChain
	case errors.Is(err, feature.ErrResidueNotDefined):
		return CodeResidueNotDefined
	case errors.Is(err, feature.ErrUnboundResidues):
		return CodeUnboundResidues
	case errors.Is(err, feature.ErrMissingData):
		return CodeMissingData
	case errors.Is(err, pdb.ErrFormat):
		return CodeParse
	}

	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}
