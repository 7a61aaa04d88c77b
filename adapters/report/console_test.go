package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"dvsorder/domain/core"
	"dvsorder/domain/unshuffle"
	"dvsorder/ports"
)

func TestConsoleSink_Batch(t *testing.T) {
	var buf strings.Builder
	sink := NewConsoleSink(&buf, false)

	sink.Batch(ports.BatchVerdict{
		Key:     core.BatchKey{Tabulator: 3, Batch: 7},
		Ballots: 12,
	})
	sink.Batch(ports.BatchVerdict{
		Key:        core.BatchKey{Tabulator: 3, Batch: 8},
		Ballots:    20,
		Vulnerable: true,
		Result: unshuffle.Result{
			Fitted:  true,
			Missing: 2,
			Pairs:   []unshuffle.Pair{{Position: 0, ID: 555555}},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "tabulator 3 batch 7 appears safe (12 ballots)\n")
	assert.Contains(t, out, "tabulator 3 batch 8 appears vulnerable (20 ballots, missing 2)\n")
	assert.NotContains(t, out, "unshuffled ballots")
}

func TestConsoleSink_ShowUnshuffled(t *testing.T) {
	var buf strings.Builder
	sink := NewConsoleSink(&buf, true)

	sink.Batch(ports.BatchVerdict{
		Key:        core.BatchKey{Tabulator: 1, Batch: 1},
		Ballots:    2,
		Vulnerable: true,
		Result: unshuffle.Result{
			Fitted: true,
			Pairs: []unshuffle.Pair{
				{Position: 0, ID: 555555},
				{Position: 1, ID: 134524},
			},
		},
	})

	assert.Contains(t, buf.String(), "unshuffled ballots: (0, 555555) (1, 134524)\n")
}

func TestConsoleSink_Summary(t *testing.T) {
	var buf strings.Builder
	sink := NewConsoleSink(&buf, false)

	sink.Summary(ports.RunSummary{
		Batches:           3,
		VulnerableBatches: 2,
		TotalBallots:      125,
		VulnerableBallots: 100,
		BatchSizes:        []float64{40, 60, 25},
		MissingCounts:     []float64{0, 3},
	})

	out := buf.String()
	assert.Contains(t, out, "approximately 100 of 125 ballots (80%) appear to be vulnerable\n")
	assert.Contains(t, out, "batches: 3 (median size 40, largest 60)\n")
	assert.Contains(t, out, "vulnerable batches: 2 (mean missing 1.5, worst 3)\n")
}

func TestConsoleSink_SummaryEmptyRun(t *testing.T) {
	var buf strings.Builder
	sink := NewConsoleSink(&buf, false)
	sink.Summary(ports.RunSummary{})
	assert.Contains(t, buf.String(), "approximately 0 of 0 ballots (0%) appear to be vulnerable\n")
}
