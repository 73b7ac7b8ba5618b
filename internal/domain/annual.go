package domain

import "fmt"

// YearValue is a regional value for one year. Value is nil when the year has
// no valid pixel inside the region.
type YearValue struct {
	Year  int
	Value *float64
}

// AnnualRegionalSeries returns the area-weighted regional mean of each annual
// total, in the order given.
func AnnualRegionalSeries(totals []*Field, region Region) ([]YearValue, error) {
	series := make([]YearValue, 0, len(totals))
	areas := make(map[Grid]*Field)
	for _, total := range totals {
		if total == nil {
			continue
		}
		area, ok := areas[total.Grid()]
		if !ok {
			var err error
			area, err = region.AreaField(total.Grid())
			if err != nil {
				return nil, fmt.Errorf("pixel areas for %d: %w", total.Metadata().Year, err)
			}
			areas[total.Grid()] = area
		}
		series = append(series, YearValue{
			Year:  total.Metadata().Year,
			Value: weightedMean(total, area),
		})
	}
	return series, nil
}
