package feature

import (
	"fmt"
	"log/slog"

	"github.com/tikz/featurizer/pdb"
)

// Builder assembles feature rows for the bindings of an aligner.
type Builder struct {
	Coords CoordinateProvider
	SS     SecondaryStructure // nil when secondary structure is not emitted
	Bonds  HBondLookup
	Logger *slog.Logger
}

// Build walks the aligner and passes every row to emit, in entity order.
// Residues without a CA atom produce no row. It stops at the first error of
// the aligner, the secondary structure provider or emit.
func (b *Builder) Build(a *Aligner, emit func(*Row) error) error {
	for {
		bind, ok, err := a.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if bind.ID == nil {
			if err := emit(&Row{Index: bind.Index, Monomer: bind.Monomer}); err != nil {
				return err
			}
			continue
		}

		row, err := b.row(a, bind)
		if err != nil {
			return err
		}
		if row == nil {
			continue
		}
		if err := emit(row); err != nil {
			return err
		}
	}
}

// row builds the row of a bound residue. It returns nil when the residue has
// no CA atom.
func (b *Builder) row(a *Aligner, bind Binding) (*Row, error) {
	id := *bind.ID

	ca, err := b.Coords.CA(id)
	if err != nil {
		b.logger().Warn("omitting residue without CA atom",
			"residue", id.String(), "index", bind.Index, "error", err)
		return nil, nil
	}

	row := &Row{Index: bind.Index, Monomer: bind.Monomer, ID: bind.ID, CA: &ca}

	if b.SS != nil {
		if row.SS, err = b.SS.Code(id); err != nil {
			return nil, fmt.Errorf("residue %s: %w: %v", id, ErrMissingData, err)
		}
	}

	if b.Bonds == nil {
		return row, nil
	}
	for k, partner := range a.Observed() {
		p := a.RowOf(k)
		if p < 0 {
			continue
		}
		if e, ok := b.Bonds.Bond(id, partner); ok {
			row.Edges = append(row.Edges, b.edge(id, partner, p, e, Donor))
		}
		if e, ok := b.Bonds.Bond(partner, id); ok {
			row.Edges = append(row.Edges, b.edge(id, partner, p, e, Acceptor))
		}
	}

	return row, nil
}

func (b *Builder) edge(id, partner pdb.ResidueID, row int, energy float64, dir Direction) HBondEdge {
	b.logger().Debug("hydrogen bond",
		"residue", id.String(), "partner", partner.String(), "row", row,
		"direction", dir.String(), "energy", energy)
	return HBondEdge{Partner: row, Energy: energy, Dir: dir}
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}
