package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/prediction-arb/internal/apperror"
	"github.com/fd1az/prediction-arb/internal/logger"
)

const meterName = "github.com/fd1az/prediction-arb/business/arbitrage"

// DetectorConfig holds configuration for the arbitrage detector.
type DetectorConfig struct {
	PollInterval time.Duration
}

type detectorMetrics struct {
	cycles        metric.Int64Counter
	cycleErrors   metric.Int64Counter
	opportunities metric.Int64Counter
	pairsMatched  metric.Int64Counter
	skipped       metric.Int64Counter
	bestROI       metric.Float64Gauge
	cycleDuration metric.Float64Histogram
}

// Detector runs detection cycles: fetch, match, rank, report.
type Detector struct {
	source   RecordSource
	matcher  EventMatcher
	ranker   *Ranker
	stats    *StatsAggregator
	reporter Reporter
	config   DetectorConfig
	logger   logger.LoggerInterface

	tracer  trace.Tracer
	metrics *detectorMetrics

	mu        sync.RWMutex
	last      CycleReport
	lastErr   error
	lastRunAt time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDetector creates a new arbitrage Detector.
func NewDetector(
	source RecordSource,
	matcher EventMatcher,
	ranker *Ranker,
	stats *StatsAggregator,
	reporter Reporter,
	config DetectorConfig,
	log logger.LoggerInterface,
) (*Detector, error) {
	if config.PollInterval <= 0 {
		config.PollInterval = 30 * time.Second
	}
	if stats == nil {
		stats = NewStatsAggregator()
	}

	d := &Detector{
		source:   source,
		matcher:  matcher,
		ranker:   ranker,
		stats:    stats,
		reporter: reporter,
		config:   config,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}

	if err := d.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return d, nil
}

func (d *Detector) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	d.metrics = &detectorMetrics{}

	d.metrics.cycles, err = meter.Int64Counter(
		"detection_cycles_total",
		metric.WithDescription("Total detection cycles run"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return err
	}

	d.metrics.cycleErrors, err = meter.Int64Counter(
		"detection_cycle_errors_total",
		metric.WithDescription("Detection cycles that failed to fetch records"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return err
	}

	d.metrics.opportunities, err = meter.Int64Counter(
		"opportunities_detected_total",
		metric.WithDescription("Opportunities above the ROI threshold"),
		metric.WithUnit("{opportunity}"),
	)
	if err != nil {
		return err
	}

	d.metrics.pairsMatched, err = meter.Int64Counter(
		"matched_pairs_total",
		metric.WithDescription("Pairs that cleared the identity gate"),
		metric.WithUnit("{pair}"),
	)
	if err != nil {
		return err
	}

	d.metrics.skipped, err = meter.Int64Counter(
		"records_skipped_total",
		metric.WithDescription("Listings skipped as malformed or resolved"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return err
	}

	d.metrics.bestROI, err = meter.Float64Gauge(
		"best_roi_percent",
		metric.WithDescription("Best ROI seen in the last cycle"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return err
	}

	d.metrics.cycleDuration, err = meter.Float64Histogram(
		"detection_cycle_duration_seconds",
		metric.WithDescription("Wall time of a detection cycle"),
		metric.WithUnit("s"),
	)
	return err
}

// Start begins the detection loop. The first cycle runs immediately.
func (d *Detector) Start(ctx context.Context) error {
	d.logger.Info(ctx, "starting arbitrage detector",
		"source", d.source.Name(),
		"poll_interval", d.config.PollInterval.String(),
	)

	if err := d.reporter.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.run(ctx)

	return nil
}

func (d *Detector) run(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := d.RunCycle(ctx); err != nil && ctx.Err() == nil {
			d.logger.Warn(ctx, "detection cycle failed", apperror.LogArgs(err)...)
		}

		select {
		case <-ctx.Done():
			d.logger.Info(context.Background(), "detector stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
		}
	}
}

// RunCycle performs one fetch, match and rank pass and reports the result.
// A failed fetch is reported to the reporter and returned; the previous
// cycle's report is left in place.
func (d *Detector) RunCycle(ctx context.Context) (CycleReport, error) {
	ctx, span := d.tracer.Start(ctx, "arbitrage.cycle",
		trace.WithAttributes(attribute.String("source", d.source.Name())),
	)
	defer span.End()

	started := time.Now()
	d.metrics.cycles.Add(ctx, 1)

	batch, err := d.source.Fetch(ctx)
	latency := time.Since(started)
	d.reporter.UpdateSourceStatus(d.source.Name(), err == nil, latency)
	if err != nil {
		d.metrics.cycleErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")

		wrapped := apperror.Wrap(err, apperror.CodeDetectionCycleFailed, "fetch records")
		d.mu.Lock()
		d.lastErr = wrapped
		d.lastRunAt = time.Now()
		d.mu.Unlock()
		return CycleReport{}, wrapped
	}

	matched := d.matcher.Match(ctx, batch.Records)
	ranked := d.ranker.Rank(ctx, matched.Groups)

	run := ranked.Stats
	run.StartedAt = started
	run.Duration = time.Since(started)
	run.RecordsIn = matched.RecordsIn + batch.Rejected
	run.RecordsSkipped = matched.Skipped + batch.Rejected
	run.PairsCompared = matched.Compared

	d.stats.Record(run)

	report := CycleReport{
		Source:        batch.Source,
		FetchedAt:     batch.FetchedAt,
		Opportunities: ranked.Opportunities,
		Run:           run,
		Totals:        d.stats.Snapshot(),
	}

	d.metrics.opportunities.Add(ctx, int64(run.AboveThreshold))
	d.metrics.pairsMatched.Add(ctx, int64(run.PairsMatched))
	d.metrics.skipped.Add(ctx, int64(run.RecordsSkipped))
	d.metrics.bestROI.Record(ctx, run.BestROI.InexactFloat64())
	d.metrics.cycleDuration.Record(ctx, run.Duration.Seconds())

	span.SetAttributes(
		attribute.Int("records", run.RecordsIn),
		attribute.Int("pairs", run.PairsMatched),
		attribute.Int("opportunities", run.Returned),
	)

	d.mu.Lock()
	d.last = report
	d.lastErr = nil
	d.lastRunAt = time.Now()
	d.mu.Unlock()

	d.reporter.Report(report)

	d.logger.Info(ctx, "detection cycle complete",
		"records", run.RecordsIn,
		"skipped", run.RecordsSkipped,
		"pairs", run.PairsMatched,
		"opportunities", run.Returned,
		"best_roi", run.BestROI.StringFixed(4),
		"duration", run.Duration.String(),
	)

	return report, nil
}

// LastCycle returns the most recent successful cycle report.
func (d *Detector) LastCycle() CycleReport {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// Stats returns the aggregated statistics across all cycles.
func (d *Detector) Stats() StatsSnapshot {
	return d.stats.Snapshot()
}

// Check reports whether the detector is healthy: the last cycle succeeded
// and one ran within three poll intervals.
func (d *Detector) Check(context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.lastRunAt.IsZero() {
		return errors.New("no detection cycle has run yet")
	}
	if d.lastErr != nil {
		return d.lastErr
	}
	if since := time.Since(d.lastRunAt); since > 3*d.config.PollInterval {
		return fmt.Errorf("last detection cycle ran %s ago", since.Round(time.Second))
	}
	return nil
}

// Stop gracefully shuts down the detector.
func (d *Detector) Stop() error {
	d.logger.Info(context.Background(), "stopping arbitrage detector")
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	return d.reporter.Stop()
}
