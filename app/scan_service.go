package app

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"dvsorder/domain/core"
	"dvsorder/domain/unshuffle"
	"dvsorder/internal"
	"dvsorder/ports"
)

// ScanService aggregates unshuffle verdicts across every batch of one or
// more CVR exports. Batches carry no ordering dependency, so they are
// unshuffled under a bounded degree of parallelism; the inverse tables are
// immutable after first build and need no coordination.
type ScanService struct {
	log     *internal.Logger
	sink    ports.ReportSink
	workers int64
}

// NewScanService creates a scan service. workers < 1 falls back to
// sequential processing.
func NewScanService(log *internal.Logger, sink ports.ReportSink, workers int) *ScanService {
	if workers < 1 {
		workers = 1
	}
	return &ScanService{
		log:     log.Tagged("scan"),
		sink:    sink,
		workers: int64(workers),
	}
}

// Scan reads every source in order, unshuffles each batch, reports per-batch
// verdicts through the sink, and returns the accumulated run summary. A
// batch the unshuffler rejects is counted as safe and the run continues;
// only reader failures and caller errors abort the scan.
func (s *ScanService) Scan(ctx context.Context, sources []ports.BatchSource) (ports.RunSummary, error) {
	summary := ports.RunSummary{RunID: core.NewRunID()}
	s.log.Info("run %s: scanning %d source(s)", summary.RunID, len(sources))

	for _, source := range sources {
		err := source.Read(ctx, func(group core.BatchGroup) error {
			return s.processGroup(ctx, group, &summary)
		})
		if err != nil {
			return summary, err
		}
	}

	s.log.Info("run %s: %d of %d ballots appear vulnerable",
		summary.RunID, summary.VulnerableBallots, summary.TotalBallots)
	s.sink.Summary(summary)
	return summary, nil
}

// processGroup unshuffles every batch of one group. Verdicts are collected
// and reported in a stable key order so parallel runs stay reproducible.
func (s *ScanService) processGroup(ctx context.Context, group core.BatchGroup, summary *ports.RunSummary) error {
	keys := make([]core.BatchKey, 0, len(group))
	for key := range group {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Tabulator != keys[j].Tabulator {
			return keys[i].Tabulator < keys[j].Tabulator
		}
		return keys[i].Batch < keys[j].Batch
	})

	verdicts := make([]ports.BatchVerdict, len(keys))
	errs := make([]error, len(keys))

	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	for i, key := range keys {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func(i int, key core.BatchKey) {
			defer wg.Done()
			defer sem.Release(1)
			verdicts[i], errs[i] = s.judgeBatch(key, group[key])
		}(i, key)
	}
	wg.Wait()

	for i, verdict := range verdicts {
		if errs[i] != nil {
			return errs[i]
		}
		summary.Batches++
		summary.TotalBallots += verdict.Ballots
		summary.BatchSizes = append(summary.BatchSizes, float64(verdict.Ballots))
		if verdict.Vulnerable {
			summary.VulnerableBatches++
			summary.VulnerableBallots += verdict.Ballots
			summary.MissingCounts = append(summary.MissingCounts, float64(verdict.Result.Missing))
		}
		s.sink.Batch(verdict)
	}
	return nil
}

func (s *ScanService) judgeBatch(key core.BatchKey, ids []core.Identifier) (ports.BatchVerdict, error) {
	verdict := ports.BatchVerdict{Key: key, Ballots: len(ids)}
	// Batches from tabulator families outside the two modeled ones are
	// safe by definition; the manifest-reported type is data, not a
	// caller request.
	if key.Model != core.ModelUnknown && !key.Model.Known() {
		s.log.Debug("%s: unaffected scanner family", key)
		return verdict, nil
	}
	res, err := unshuffle.Unshuffle(ids, key.Model)
	if err != nil {
		s.log.Error("%s: %v", key, err)
		return verdict, err
	}
	if !res.Fitted {
		s.log.Debug("%s: no plausible reconstruction", key)
		return verdict, nil
	}
	verdict.Vulnerable = true
	verdict.Result = res
	return verdict, nil
}
