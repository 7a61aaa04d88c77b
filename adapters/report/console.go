// Package report formats scan results for a single run's console output.
package report

import (
	"fmt"
	"io"

	"github.com/montanaflynn/stats"

	"dvsorder/ports"
)

// ConsoleSink writes per-batch verdicts and the run summary as plain lines.
type ConsoleSink struct {
	w              io.Writer
	showUnshuffled bool
}

// NewConsoleSink creates a sink writing to w. When showUnshuffled is set,
// each vulnerable batch is followed by its recovered scan order.
func NewConsoleSink(w io.Writer, showUnshuffled bool) *ConsoleSink {
	return &ConsoleSink{w: w, showUnshuffled: showUnshuffled}
}

func (c *ConsoleSink) Batch(v ports.BatchVerdict) {
	if !v.Vulnerable {
		fmt.Fprintf(c.w, "tabulator %d batch %d appears safe (%d ballots)\n",
			v.Key.Tabulator, v.Key.Batch, v.Ballots)
		return
	}
	fmt.Fprintf(c.w, "tabulator %d batch %d appears vulnerable (%d ballots, missing %d)\n",
		v.Key.Tabulator, v.Key.Batch, v.Ballots, v.Result.Missing)
	if c.showUnshuffled {
		fmt.Fprintf(c.w, "unshuffled ballots:")
		for _, pair := range v.Result.Pairs {
			fmt.Fprintf(c.w, " (%d, %d)", pair.Position, pair.ID)
		}
		fmt.Fprintln(c.w)
	}
}

func (c *ConsoleSink) Summary(s ports.RunSummary) {
	fmt.Fprintf(c.w, "approximately %d of %d ballots (%d%%) appear to be vulnerable\n",
		s.VulnerableBallots, s.TotalBallots, s.VulnerablePercent())

	if len(s.BatchSizes) > 0 {
		median, _ := stats.Median(s.BatchSizes)
		max, _ := stats.Max(s.BatchSizes)
		fmt.Fprintf(c.w, "batches: %d (median size %.0f, largest %.0f)\n",
			s.Batches, median, max)
	}
	if len(s.MissingCounts) > 0 {
		mean, _ := stats.Mean(s.MissingCounts)
		max, _ := stats.Max(s.MissingCounts)
		fmt.Fprintf(c.w, "vulnerable batches: %d (mean missing %.1f, worst %.0f)\n",
			s.VulnerableBatches, mean, max)
	}
}

var _ ports.ReportSink = (*ConsoleSink)(nil)
