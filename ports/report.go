package ports

import (
	"dvsorder/domain/core"
	"dvsorder/domain/unshuffle"
)

// BatchVerdict is the per-batch outcome handed to the report layer.
type BatchVerdict struct {
	Key     core.BatchKey
	Ballots int
	// Vulnerable batches carry the fitted reconstruction; safe batches
	// carry a zero Result.
	Vulnerable bool
	Result     unshuffle.Result
}

// RunSummary accumulates across every batch of a scan run.
type RunSummary struct {
	RunID             core.RunID
	Batches           int
	VulnerableBatches int
	TotalBallots      int
	VulnerableBallots int
	BatchSizes        []float64 // one entry per batch, for descriptive stats
	MissingCounts     []float64 // one entry per vulnerable batch
}

// VulnerablePercent is the share of ballots in vulnerable batches,
// truncated toward zero. Zero when no ballots were seen.
func (s RunSummary) VulnerablePercent() int {
	if s.TotalBallots == 0 {
		return 0
	}
	return 100 * s.VulnerableBallots / s.TotalBallots
}

// ReportSink consumes scan results. Implementations format and emit; they
// never influence the scan.
type ReportSink interface {
	Batch(verdict BatchVerdict)
	Summary(summary RunSummary)
}
