// Package testkit builds synthetic CVR batches for tests.
package testkit

import (
	"context"

	"dvsorder/domain/core"
	"dvsorder/domain/sequence"
)

// SequentialBatch returns the record ids a scanner of the given family would
// assign to n consecutive ballots starting at position start.
func SequentialBatch(model core.ScannerModel, start core.SequencePosition, n int) []core.Identifier {
	ids := make([]core.Identifier, n)
	for i := range ids {
		ids[i] = sequence.Generate(model, start+core.SequencePosition(i))
	}
	return ids
}

// RawBatch returns ids that did not come from either generator, for
// exercising the rejection path.
func RawBatch(n int) []core.Identifier {
	ids := make([]core.Identifier, n)
	for i := range ids {
		ids[i] = core.Identifier(i + 1)
	}
	return ids
}

// StaticSource feeds pre-built batch groups to the aggregator.
type StaticSource struct {
	SourceName string
	Groups     []core.BatchGroup
}

func (s *StaticSource) Name() string { return s.SourceName }

func (s *StaticSource) Read(ctx context.Context, emit func(core.BatchGroup) error) error {
	for _, g := range s.Groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(g); err != nil {
			return err
		}
	}
	return nil
}
