package domain

import (
	"errors"
	"fmt"
	"math"
)

// Field names used for baseline statistics.
const (
	BaselineMeanName   = "rainfall_30yr_mean"
	BaselineStdDevName = "rainfall_30yr_stddev"
)

// Baseline is the per-pixel climatology of annual totals over a span of years.
type Baseline struct {
	Mean        *Field
	StdDev      *Field // sample standard deviation (n-1)
	YearStart   int
	YearEnd     int
	SampleCount int
}

// ValidateBaselineWindow rejects spans of fewer than two years, since a
// sample standard deviation needs at least two samples.
func ValidateBaselineWindow(yearStart, yearEnd int) error {
	if yearEnd-yearStart+1 < 2 {
		return &InsufficientBaselineWindowError{YearStart: yearStart, YearEnd: yearEnd}
	}
	return nil
}

// BuildBaseline aggregates every year of the window and reduces the annual
// totals to a per-pixel mean and sample standard deviation.
func BuildBaseline(series TimeSeries, yearStart, yearEnd int) (Baseline, error) {
	if err := ValidateBaselineWindow(yearStart, yearEnd); err != nil {
		return Baseline{}, err
	}

	totals := make([]*Field, 0, yearEnd-yearStart+1)
	for year := yearStart; year <= yearEnd; year++ {
		total, err := AggregateYear(series, year)
		if err != nil {
			return Baseline{}, fmt.Errorf("aggregate baseline year %d: %w", year, err)
		}
		totals = append(totals, total)
	}
	return ReduceAnnualTotals(totals, yearStart, yearEnd)
}

// ReduceAnnualTotals computes the baseline statistics from one annual total
// per year, ordered from yearStart to yearEnd. Per pixel only valid totals
// count: with none the mean is no-data, with fewer than two the standard
// deviation is no-data.
func ReduceAnnualTotals(totals []*Field, yearStart, yearEnd int) (Baseline, error) {
	if err := ValidateBaselineWindow(yearStart, yearEnd); err != nil {
		return Baseline{}, err
	}
	want := yearEnd - yearStart + 1
	if len(totals) != want {
		return Baseline{}, fmt.Errorf("baseline %d-%d needs %d annual totals, got %d", yearStart, yearEnd, want, len(totals))
	}
	for i, t := range totals {
		if t == nil {
			return Baseline{}, fmt.Errorf("annual total for %d is missing", yearStart+i)
		}
	}

	grid := totals[0].Grid()
	for _, t := range totals[1:] {
		if t.Grid() != grid {
			return Baseline{}, &GridMismatchError{Want: grid, Got: t.Grid()}
		}
	}

	mean := newField(grid)
	stddev := newField(grid)
	for i := 0; i < grid.Len(); i++ {
		// Welford's online mean and variance.
		var n int
		var mu, m2 float64
		for _, t := range totals {
			v, ok := t.AtIndex(i)
			if !ok {
				continue
			}
			n++
			delta := v - mu
			mu += delta / float64(n)
			m2 += delta * (v - mu)
		}
		mean.set(i, mu, n > 0)
		if n > 1 {
			stddev.set(i, math.Sqrt(m2/float64(n-1)), true)
		}
	}

	meta := Metadata{Samples: want}
	meta.Name = BaselineMeanName
	mean.meta = meta
	meta.Name = BaselineStdDevName
	stddev.meta = meta

	return Baseline{
		Mean:        mean,
		StdDev:      stddev,
		YearStart:   yearStart,
		YearEnd:     yearEnd,
		SampleCount: want,
	}, nil
}

// Validate checks the baseline invariants.
func (b Baseline) Validate() error {
	if b.Mean == nil || b.StdDev == nil {
		return errors.New("baseline is missing mean or standard deviation")
	}
	if b.SampleCount != b.YearEnd-b.YearStart+1 {
		return fmt.Errorf("baseline sample count %d does not match %d-%d", b.SampleCount, b.YearStart, b.YearEnd)
	}
	if b.Mean.Grid() != b.StdDev.Grid() {
		return &GridMismatchError{Want: b.Mean.Grid(), Got: b.StdDev.Grid()}
	}
	return nil
}
