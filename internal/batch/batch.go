// Package batch analyzes a set of weld files in parallel and collects their
// records into one report.
package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chrissnell/weldphase/internal/ingest"
	"github.com/chrissnell/weldphase/internal/metrics"
	"github.com/chrissnell/weldphase/internal/record"
	"github.com/chrissnell/weldphase/internal/report"
	"github.com/chrissnell/weldphase/internal/weld"
	"github.com/chrissnell/weldphase/pkg/config"
)

// Runner drives one batch run
type Runner struct {
	runID    uuid.UUID
	analyzer *weld.Analyzer
	reader   *ingest.Reader
	workers  int
	logger   *zap.SugaredLogger
	metrics  *metrics.Metrics

	bytesRead atomic.Int64
}

// Summary describes a finished run
type Summary struct {
	RunID    uuid.UUID
	Files    int
	Failed   int
	Bytes    int64
	Elapsed  time.Duration
	Finished time.Time
}

// New creates a Runner for cfg. A nil metrics collects into a private registry.
func New(cfg *config.ConfigData, logger *zap.SugaredLogger, m *metrics.Metrics) *Runner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if m == nil {
		m = metrics.New()
	}

	workers := cfg.Input.Workers
	if workers < 1 {
		workers = 1
	}

	return &Runner{
		runID:    uuid.New(),
		analyzer: weld.New(cfg.Analysis),
		reader:   ingest.NewReader(cfg.Analysis.Torque.UnitScale),
		workers:  workers,
		logger:   logger,
		metrics:  m,
	}
}

// RunID identifies the run in logs and exported rows
func (r *Runner) RunID() uuid.UUID {
	return r.runID
}

// Metrics returns the run's collectors
func (r *Runner) Metrics() *metrics.Metrics {
	return r.metrics
}

// Run analyzes every path with at most Workers files in flight. Workers hand
// their records to a single collector goroutine that owns the aggregator. Files
// that cannot be read or parsed become failure records; they never stop the run.
// Cancelling ctx stops scheduling new files and Run returns the records
// collected so far together with the context error.
func (r *Runner) Run(ctx context.Context, paths []string) (*report.Aggregator, Summary, error) {
	start := time.Now()
	agg := report.NewAggregator()

	log := r.logger.With("run_id", r.runID.String())
	log.Infow("starting batch", "files", len(paths), "workers", r.workers)

	records := make(chan record.ProcessRecord, r.workers)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for rec := range records {
			agg.Append(rec)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		path := path
		g.Go(func() error {
			rec := r.process(log, path)
			select {
			case records <- rec:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	err := g.Wait()
	close(records)
	<-collected

	agg.SortBySource()

	summary := Summary{
		RunID:    r.runID,
		Files:    agg.Len(),
		Bytes:    r.bytesRead.Load(),
		Elapsed:  time.Since(start),
		Finished: time.Now(),
	}
	for _, rec := range agg.Records() {
		if rec.Failure != "" {
			summary.Failed++
		}
	}
	r.metrics.RunFinished(summary.Finished)

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		log.Warnw("batch interrupted", "files", summary.Files, "of", len(paths), "error", err)
		return agg, summary, err
	}

	log.Infow("batch finished",
		"files", summary.Files,
		"failed", summary.Failed,
		"read", humanize.Bytes(uint64(summary.Bytes)),
		"elapsed", summary.Elapsed.Round(time.Millisecond).String(),
	)
	return agg, summary, nil
}

// process reads and analyzes one file
func (r *Runner) process(log *zap.SugaredLogger, path string) record.ProcessRecord {
	start := time.Now()

	rec, err := r.reader.ReadFile(path)
	r.bytesRead.Add(rec.Bytes)
	if err != nil {
		status := metrics.StatusUnreadable
		if errors.Is(err, ingest.ErrMalformedInput) {
			status = metrics.StatusMalformed
		}
		r.metrics.FileDone(status, time.Since(start), rec.Bytes)
		log.Warnw("skipping weld file", "file", path, "status", status, "error", err)
		return record.Failed(path, rec.Metadata, err.Error())
	}

	res := r.analyzer.Analyze(rec)

	for _, c := range res.Channels() {
		r.metrics.ChangePoints(c.Name, len(c.ChangePoints))
		if missing := c.Phases.Missing(); len(missing) > 0 {
			r.metrics.PhasesMissing(c.Name, missing)
			log.Debugw("phases not detected", "file", path, "channel", c.Name,
				"change_points", len(c.ChangePoints), "missing", missing)
		}
	}

	if notFound := res.ThresholdsNotFound(); len(notFound) > 0 {
		r.metrics.ThresholdsNotFound(notFound)
		log.Debugw("torque thresholds not crossed", "file", path,
			"rules", notFound, "bound_missing", res.BoundMissing())
	}

	elapsed := time.Since(start)
	r.metrics.FileDone(metrics.StatusAnalyzed, elapsed, rec.Bytes)
	log.Debugw("analyzed weld file", "file", path,
		"part_number", rec.Metadata.PartNumber,
		"samples", rec.Force.Len(),
		"elapsed", elapsed.String())

	return res.Record
}
