// Package archive serves rainfall rasters from a JSON archive held in memory.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
)

// Archive is an in-memory raster source.
type Archive struct {
	series domain.TimeSeries
}

// New wraps an existing series.
func New(series domain.TimeSeries) *Archive {
	return &Archive{series: series}
}

// Load reads and validates an archive file.
func Load(path string) (*Archive, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, err
	}
	series, err := doc.Series()
	if err != nil {
		return nil, fmt.Errorf("load archive %s: %w", path, err)
	}
	return New(series), nil
}

// Save writes series to path as an archive document.
func Save(path string, series domain.TimeSeries) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // path comes from operator flags
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	if err := Encode(f, FromSeries(DefaultDataset, DefaultBand, series)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Series returns the whole archive.
func (a *Archive) Series() domain.TimeSeries { return a.series }

// ImageCount returns the number of images in the archive.
func (a *Archive) ImageCount() int { return a.series.Len() }

// Filter returns the images inside window. Archive images cover the whole
// grid, so a region that does not intersect the grid selects nothing.
func (a *Archive) Filter(ctx context.Context, window domain.TimeRange, region *domain.Region) (domain.TimeSeries, error) {
	if err := ctx.Err(); err != nil {
		return domain.TimeSeries{}, err
	}
	if region != nil && a.series.Len() > 0 && !region.Bound().Intersects(a.series.Grid().Bound()) {
		return domain.EmptySeries(a.series.Grid()), nil
	}
	return a.series.Filter(window), nil
}
