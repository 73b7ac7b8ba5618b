package domain

// AnnualTotalName names the fields produced by AggregateYear.
const AnnualTotalName = "annual_total"

// AggregateYear sums the images of series dated within year.
func AggregateYear(series TimeSeries, year int) (*Field, error) {
	total, err := AggregatePeriod(series, YearRange(year))
	if err != nil {
		return nil, err
	}
	return total.WithMetadata(Metadata{
		Name:    AnnualTotalName,
		Year:    year,
		Samples: total.Metadata().Samples,
	}), nil
}

// AggregatePeriod sums, per pixel, the valid samples of every image within
// window. Pixels with no valid sample in the window are no-data. A window
// with no images at all is an *InsufficientDataError.
func AggregatePeriod(series TimeSeries, window TimeRange) (*Field, error) {
	filtered := series.Filter(window)
	if filtered.Len() == 0 {
		return nil, &InsufficientDataError{Window: window}
	}

	grid := filtered.Grid()
	sums := newField(grid)
	counts := make([]int, grid.Len())
	for _, img := range filtered.images {
		for i := range counts {
			v, ok := img.Field.AtIndex(i)
			if !ok {
				continue
			}
			sums.values[i] += v
			counts[i]++
		}
	}
	for i, n := range counts {
		sums.set(i, sums.values[i], n > 0)
	}

	sums.meta = Metadata{Name: "period_total", Samples: filtered.Len()}
	return sums, nil
}
