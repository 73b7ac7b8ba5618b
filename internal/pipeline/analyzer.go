package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Request describes one anomaly analysis.
type Request struct {
	Region           domain.Region
	BaselineStart    int
	BaselineEnd      int
	Current          domain.TimeRange
	HistogramBuckets int // 0 uses domain.DefaultHistogramBuckets
}

// ImageCounts records how many images each period drew from the source.
// Total is the size of the whole archive, zero when the source cannot tell.
type ImageCounts struct {
	Total    int
	Baseline int
	Current  int
}

// Report is the outcome of an analysis run.
type Report struct {
	ID           string
	Request      Request
	Anomaly      domain.AnomalyResult
	Conditions   *domain.Field
	Summary      domain.ZonalSummary
	AnnualSeries []domain.YearValue
	Histogram    domain.Histogram
	Images       ImageCounts
	GeneratedAt  time.Time
	Duration     time.Duration
}

// Analyzer runs the full anomaly computation against a raster source.
type Analyzer struct {
	source   RasterSource
	baseline *BaselineBuilder
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewAnalyzer creates an Analyzer. workers bounds concurrent per-year
// aggregation of the baseline.
func NewAnalyzer(source RasterSource, workers int, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Analyzer {
	return &Analyzer{
		source:   source,
		baseline: NewBaselineBuilder(source, workers, logger),
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Analyze computes the baseline, the current period total, the anomalies,
// their classification and the regional summaries. Data and grid errors are
// returned unchanged; a region that covers no pixel is logged and produces a
// report of no-data statistics.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Report, error) {
	start := a.clock.Now()
	report, err := a.analyze(ctx, req)
	elapsed := a.clock.Since(start)

	if err != nil {
		a.metrics.AnalysesTotal.WithLabelValues("error").Inc()
		return Report{}, err
	}
	a.metrics.AnalysesTotal.WithLabelValues("success").Inc()
	a.metrics.AnalysisDuration.Observe(elapsed.Seconds())

	report.GeneratedAt = a.clock.Now().UTC()
	report.Duration = elapsed
	return report, nil
}

func (a *Analyzer) analyze(ctx context.Context, req Request) (Report, error) {
	if req.Current.IsZero() {
		return Report{}, errors.New("current window is required")
	}
	region := req.Region
	logger := a.logger.With("region", region.Name())

	stage := a.clock.Now()
	base, err := a.baseline.Build(ctx, &region, req.BaselineStart, req.BaselineEnd)
	if err != nil {
		return Report{}, fmt.Errorf("build baseline: %w", err)
	}
	a.observeStage("baseline", stage)
	a.metrics.ImagesFetched.WithLabelValues("baseline").Add(float64(base.Images))

	stage = a.clock.Now()
	currentSeries, err := fetch(ctx, a.source, req.Current, &region)
	if err != nil {
		return Report{}, fmt.Errorf("fetch current period: %w", err)
	}
	current, err := domain.AggregatePeriod(currentSeries, req.Current)
	if err != nil {
		return Report{}, fmt.Errorf("aggregate current period: %w", err)
	}
	a.observeStage("current", stage)
	a.metrics.ImagesFetched.WithLabelValues("current").Add(float64(currentSeries.Len()))

	total := 0
	if counter, ok := a.source.(ImageCounter); ok {
		total = counter.ImageCount()
	}
	logger.Info("images loaded",
		"archive_images", total,
		"baseline_start", req.BaselineStart,
		"baseline_end", req.BaselineEnd,
		"baseline_images", base.Images,
		"current", req.Current.String(),
		"current_images", currentSeries.Len(),
	)

	stage = a.clock.Now()
	anomaly, err := domain.ComputeAnomaly(current, base.Baseline)
	if err != nil {
		return Report{}, fmt.Errorf("compute anomaly: %w", err)
	}
	a.observeStage("anomaly", stage)

	stage = a.clock.Now()
	conditions := domain.Classify(anomaly.Percentage)
	a.observeStage("classify", stage)

	stage = a.clock.Now()
	summary, err := domain.Summarize(anomaly, conditions, region)
	if err != nil {
		if !errors.Is(err, domain.ErrRegionArea) {
			return Report{}, fmt.Errorf("summarize region: %w", err)
		}
		logger.Warn("region covers no pixels, statistics are no-data", "error", err)
		a.metrics.EmptyRegions.Inc()
	}

	annual, err := domain.AnnualRegionalSeries(base.AnnualTotals, region)
	if err != nil {
		return Report{}, fmt.Errorf("annual series: %w", err)
	}

	buckets := req.HistogramBuckets
	if buckets <= 0 {
		buckets = domain.DefaultHistogramBuckets
	}
	histogram, err := domain.NewHistogram(anomaly.Percentage, region, buckets)
	if err != nil {
		return Report{}, fmt.Errorf("histogram: %w", err)
	}
	a.observeStage("zonal", stage)

	return Report{
		ID:           uuid.NewString(),
		Request:      req,
		Anomaly:      anomaly,
		Conditions:   conditions,
		Summary:      summary,
		AnnualSeries: annual,
		Histogram:    histogram,
		Images:       ImageCounts{Total: total, Baseline: base.Images, Current: currentSeries.Len()},
	}, nil
}

func (a *Analyzer) observeStage(name string, start time.Time) {
	a.metrics.StageDuration.WithLabelValues(name).Observe(a.clock.Since(start).Seconds())
}
