package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
)

// RasterSource supplies rainfall images for a time window. A nil region
// means no spatial filter.
type RasterSource interface {
	Filter(ctx context.Context, window domain.TimeRange, region *domain.Region) (domain.TimeSeries, error)
}

// ImageCounter is implemented by sources that know how many images their
// whole archive holds.
type ImageCounter interface {
	ImageCount() int
}

// SourceError wraps a failure of the raster source itself, as opposed to a
// window that simply holds no data.
type SourceError struct {
	Window domain.TimeRange
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("raster source %s: %v", e.Window, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func fetch(ctx context.Context, source RasterSource, window domain.TimeRange, region *domain.Region) (domain.TimeSeries, error) {
	series, err := source.Filter(ctx, window, region)
	if err != nil {
		return domain.TimeSeries{}, &SourceError{Window: window, Err: err}
	}
	return series, nil
}
