// Package unshuffle recovers the true scan order of a batch of ballots from
// their record ids. A batch whose ids all come from one scanner family maps
// through the inverse sequence onto a near-contiguous run of positions; a
// batch that does not fit either family scatters across the whole domain and
// is rejected as not demonstrably vulnerable.
package unshuffle

import (
	"fmt"
	"sort"

	"dvsorder/domain/core"
	"dvsorder/domain/sequence"
)

// implausibleMissing is the sentinel fit for a reconstruction whose span is
// too sparse to be believed. It exceeds any real missing count.
const implausibleMissing = core.SequenceModulus

// Thresholds tuned against real export data; kept as-is for behavioral
// compatibility with prior analyses.
const (
	wrapLow    = 100    // min position below this ...
	wrapHigh   = 999900 // ... and max above this means the span wrapped
	wrapShift  = 500000
	spanFactor = 10 // reject when span > spanFactor * n
)

// Pair is one slot of a reconstruction: the relative sequence position and
// the (reduced) record id observed there.
type Pair struct {
	Position core.SequencePosition
	ID       core.Identifier
}

// Result is the tagged outcome of an unshuffle attempt. Exactly one of the
// two arms holds: Fitted with a reconstruction and its missing count, or
// rejected (attack failed) with the model field reporting what was tried.
type Result struct {
	Fitted  bool
	Model   core.ScannerModel // variant that explained the batch; tried model when rejected
	Pairs   []Pair            // ascending by Position; nil when rejected
	Missing int               // sequence slots inside the span with no observed ballot
}

// Unshuffle recovers the relative scan order of a batch of record ids.
//
// When model is ModelUnknown both families are evaluated and the better fit
// (smaller missing count) wins; ties go to ImagecastEvolution. A batch that
// neither family can explain at an acceptable fit comes back with
// Fitted=false - an expected outcome, not an error. Errors are reserved for
// caller mistakes: duplicate ids in the batch or an unrecognized explicit
// model name.
func Unshuffle(ids []core.Identifier, model core.ScannerModel) (Result, error) {
	if len(ids) == 0 {
		return Result{Fitted: true, Model: model, Pairs: []Pair{}}, nil
	}

	reduced := make([]core.Identifier, len(ids))
	seen := make(map[core.Identifier]struct{}, len(ids))
	for i, id := range ids {
		r := id.Reduce()
		if _, dup := seen[r]; dup {
			return Result{}, fmt.Errorf("%w: %d", core.ErrDuplicateIdentifier, r)
		}
		seen[r] = struct{}{}
		reduced[i] = r
	}

	var positions []core.SequencePosition
	var missing int
	chosen := model
	switch {
	case model.Known():
		var err error
		positions, missing, err = fit(model, reduced)
		if err != nil {
			return Result{}, err
		}
	case model == core.ModelUnknown:
		// Direct enumeration over the two known families: keep whichever
		// reconstruction explains the ids with fewer gaps. On a tie the
		// later variant (ICE) wins, matching the original comparison.
		missing = implausibleMissing + 1
		for _, candidate := range sequence.Variants {
			p, m, err := fit(candidate, reduced)
			if err != nil {
				return Result{}, err
			}
			if m <= missing {
				positions, missing, chosen = p, m, candidate
			}
		}
	default:
		return Result{}, fmt.Errorf("%w: %q", core.ErrUnsupportedModel, model)
	}

	if missing >= implausibleMissing {
		return Result{Fitted: false, Model: chosen}, nil
	}

	pairs := make([]Pair, len(reduced))
	for i := range reduced {
		pairs[i] = Pair{Position: positions[i], ID: reduced[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Position < pairs[j].Position })
	return Result{Fitted: true, Model: chosen, Pairs: pairs, Missing: missing}, nil
}

// fit maps the reduced ids through one variant's inverse, corrects for
// counter wraparound, and scores the reconstruction.
func fit(model core.ScannerModel, ids []core.Identifier) ([]core.SequencePosition, int, error) {
	positions := make([]core.SequencePosition, len(ids))
	for i, id := range ids {
		p, err := sequence.Locate(model, id)
		if err != nil {
			return nil, 0, err
		}
		positions[i] = p
	}
	relative := reducePositions(positions)
	return relative, countMissing(relative), nil
}

// reducePositions shifts a position set that straddles the 0/1e6 boundary
// back into one contiguous stretch, then rebases it so the lowest position
// is zero.
func reducePositions(positions []core.SequencePosition) []core.SequencePosition {
	lowest, highest := minMax(positions)
	if lowest < wrapLow && highest > wrapHigh {
		shifted := make([]core.SequencePosition, len(positions))
		for i, p := range positions {
			shifted[i] = (p + wrapShift) % core.SequenceModulus
		}
		positions = shifted
		lowest, _ = minMax(positions)
	}
	relative := make([]core.SequencePosition, len(positions))
	for i, p := range positions {
		relative[i] = p - lowest
	}
	return relative
}

// countMissing returns the minimum number of ballots absent from the span
// covered by the relative positions, or the implausibility sentinel when the
// span is too wide to be a real batch.
func countMissing(relative []core.SequencePosition) int {
	lowest, highest := minMax(relative)
	span := int(highest-lowest) + 1
	if span > spanFactor*len(relative) {
		return implausibleMissing
	}
	return span - len(relative)
}

func minMax(positions []core.SequencePosition) (core.SequencePosition, core.SequencePosition) {
	lo, hi := positions[0], positions[0]
	for _, p := range positions[1:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	return lo, hi
}
