package domain

import (
	"fmt"
	"math"
)

// DefaultHistogramBuckets matches the bucket count of the regional
// percentage-deviation histogram.
const DefaultHistogramBuckets = 50

// Bucket is a half-open value interval [Lower, Upper) with its pixel count.
// The last bucket of a histogram also includes its upper edge.
type Bucket struct {
	Lower float64
	Upper float64
	Count int
}

// Histogram is the distribution of a field's valid values inside a region.
type Histogram struct {
	Field   string
	Buckets []Bucket
	Total   int
}

// NewHistogram bins the valid in-region values of f into equal-width buckets
// spanning their minimum and maximum. A field with no valid value inside the
// region yields an empty histogram. When every value is equal, or the spread
// is too narrow to split into representable widths, there is a single bucket.
func NewHistogram(f *Field, region Region, buckets int) (Histogram, error) {
	if buckets <= 0 {
		return Histogram{}, fmt.Errorf("histogram needs a positive bucket count, got %d", buckets)
	}
	area, err := region.AreaField(f.Grid())
	if err != nil {
		return Histogram{}, fmt.Errorf("pixel areas: %w", err)
	}

	values := make([]float64, 0, area.ValidCount())
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range area.values {
		if _, ok := area.AtIndex(i); !ok {
			continue
		}
		v, ok := f.AtIndex(i)
		if !ok {
			continue
		}
		values = append(values, v)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	h := Histogram{Field: f.Metadata().Name, Total: len(values)}
	if len(values) == 0 {
		return h, nil
	}
	// Scaling before subtracting keeps the width finite across the whole
	// float64 range.
	width := hi/float64(buckets) - lo/float64(buckets)
	span := hi/2 - lo/2
	if width == 0 || span == 0 || math.IsInf(width, 0) || math.IsNaN(width) {
		h.Buckets = []Bucket{{Lower: lo, Upper: hi, Count: len(values)}}
		return h, nil
	}

	h.Buckets = make([]Bucket, buckets)
	for i := range h.Buckets {
		h.Buckets[i].Lower = lo + float64(i)*width
		h.Buckets[i].Upper = lo + float64(i+1)*width
	}
	h.Buckets[buckets-1].Upper = hi
	for _, v := range values {
		h.Buckets[bucketIndex(v, lo, span, buckets)].Count++
	}
	return h, nil
}

// bucketIndex maps v in [lo, lo+2*span] to a bucket in [0, buckets).
func bucketIndex(v, lo, span float64, buckets int) int {
	frac := (v/2 - lo/2) / span
	if math.IsNaN(frac) || frac <= 0 {
		return 0
	}
	idx := int(frac * float64(buckets))
	if idx >= buckets {
		return buckets - 1
	}
	return idx
}
