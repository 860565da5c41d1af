package simulator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/okabe-h/sessionex/internal/core"
	"github.com/okabe-h/sessionex/internal/logger"
	"github.com/okabe-h/sessionex/internal/metrics"
)

// RunReport tallies one batch so silent data loss is observable: every
// candidate lands in exactly one counter.
type RunReport struct {
	RunID             string
	Simulated         int
	SkippedNoData     int
	SkippedNoEntry    int
	SkippedIncomplete int
	Duration          time.Duration
	Records           []core.TradeRecord
}

// Runner fans candidates out over a worker pool. Trades are
// independent, so workers share only the read-only bar snapshot inside
// the simulator.
type Runner struct {
	sim     *Simulator
	workers int
	log     *zap.Logger
	metrics *metrics.Registry
}

// NewRunner creates a batch runner. A nil registry disables metrics.
func NewRunner(sim *Simulator, workers int, log *zap.Logger, reg *metrics.Registry) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{sim: sim, workers: workers, log: log, metrics: reg}
}

// Run simulates every candidate and collects the completed trades.
// Skips are tallied per cause; results keep the input order so reruns
// produce identical batches.
func (r *Runner) Run(ctx context.Context, candidates []core.Candidate) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{RunID: uuid.NewString()}
	log := logger.WithRun(r.log, report.RunID)

	log.Info("batch started",
		zap.Int("candidates", len(candidates)),
		zap.Int("workers", r.workers))

	type result struct {
		index  int
		record core.TradeRecord
		err    error
	}

	jobs := make(chan int)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				rec, err := r.sim.Simulate(candidates[idx])
				select {
				case results <- result{index: idx, record: rec, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range candidates {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	records := make([]*core.TradeRecord, len(candidates))
	for res := range results {
		c := candidates[res.index]
		if res.err != nil {
			r.tallySkip(report, c, res.err, log)
			continue
		}
		rec := res.record
		records[res.index] = &rec
		report.Simulated++
		r.record("simulated")
		if r.metrics != nil {
			r.metrics.RecordExit(string(rec.ExitReason))
			if rec.SplitRatio != 1.0 {
				r.metrics.RecordSplitAdjusted()
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, rec := range records {
		if rec != nil {
			report.Records = append(report.Records, *rec)
		}
	}
	report.Duration = time.Since(start)
	if r.metrics != nil {
		r.metrics.RecordBatch(report.Duration.Seconds())
	}

	log.Info("batch finished",
		zap.Int("simulated", report.Simulated),
		zap.Int("skipped_no_data", report.SkippedNoData),
		zap.Int("skipped_no_entry", report.SkippedNoEntry),
		zap.Int("skipped_incomplete", report.SkippedIncomplete),
		zap.Duration("duration", report.Duration))

	return report, nil
}

func (r *Runner) tallySkip(report *RunReport, c core.Candidate, err error, log *zap.Logger) {
	switch {
	case errors.Is(err, core.ErrNoData), errors.Is(err, core.ErrInsufficientData):
		report.SkippedNoData++
		r.record("skipped_no_data")
	case errors.Is(err, core.ErrMissingEntryBar):
		report.SkippedNoEntry++
		r.record("skipped_no_entry")
	default:
		report.SkippedIncomplete++
		r.record("skipped_incomplete")
	}
	logger.WithTicker(log, c.Ticker).Debug("candidate skipped",
		zap.String("signal_date", c.DateKey()),
		zap.Error(err))
}

func (r *Runner) record(outcome string) {
	if r.metrics != nil {
		r.metrics.RecordCandidate(outcome)
	}
}
