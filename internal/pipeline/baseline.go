package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// BaselineResult is a climatology together with the annual totals it was
// reduced from.
type BaselineResult struct {
	Baseline     domain.Baseline
	AnnualTotals []*domain.Field // ordered by year
	Images       int
}

// BaselineBuilder fetches the baseline span once and aggregates its years
// concurrently.
type BaselineBuilder struct {
	source  RasterSource
	workers int
	logger  *slog.Logger
}

// NewBaselineBuilder creates a BaselineBuilder. A non-positive workers count
// uses one worker per CPU.
func NewBaselineBuilder(source RasterSource, workers int, logger *slog.Logger) *BaselineBuilder {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BaselineBuilder{source: source, workers: workers, logger: logger}
}

// Build computes the baseline for yearStart..yearEnd inclusive. The window is
// validated before the source is queried, and the first failing year aborts
// the build.
func (b *BaselineBuilder) Build(ctx context.Context, region *domain.Region, yearStart, yearEnd int) (BaselineResult, error) {
	if err := domain.ValidateBaselineWindow(yearStart, yearEnd); err != nil {
		return BaselineResult{}, err
	}

	series, err := fetch(ctx, b.source, domain.YearsRange(yearStart, yearEnd), region)
	if err != nil {
		return BaselineResult{}, err
	}
	b.logger.Debug("baseline images fetched",
		"baseline_start", yearStart, "baseline_end", yearEnd, "images", series.Len())

	totals := make([]*domain.Field, yearEnd-yearStart+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range totals {
		year := yearStart + i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			total, err := domain.AggregateYear(series, year)
			if err != nil {
				return fmt.Errorf("aggregate baseline year %d: %w", year, err)
			}
			totals[i] = total
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BaselineResult{}, err
	}

	baseline, err := domain.ReduceAnnualTotals(totals, yearStart, yearEnd)
	if err != nil {
		return BaselineResult{}, err
	}
	return BaselineResult{Baseline: baseline, AnnualTotals: totals, Images: series.Len()}, nil
}
