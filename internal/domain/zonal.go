package domain

import "fmt"

// ZonalSummary aggregates anomaly outputs over a region.
type ZonalSummary struct {
	Region string
	// Means holds the area-weighted regional mean of each named field. A nil
	// entry means the field has no valid pixel inside the region.
	Means map[string]*float64
	// CategoryAreas holds the area in km² of each severity class. Every class
	// is present, with 0 when no pixel falls in it.
	CategoryAreas map[Severity]float64
	RegionAreaKm2 float64 // all pixels inside the region
	ValidAreaKm2  float64 // classified pixels inside the region
	ValidPixels   int
}

// CheckRegionCoverage returns a *RegionAreaError when area, as produced by
// Region.AreaField, has no pixel inside the region.
func CheckRegionCoverage(region Region, area *Field) error {
	if area.ValidCount() == 0 {
		return &RegionAreaError{Region: region.Name()}
	}
	return nil
}

// SummarizeScalar returns the area-weighted mean of each field over the
// valid pixels inside region.
func SummarizeScalar(fields map[string]*Field, region Region) (map[string]*float64, error) {
	areas := make(map[Grid]*Field)
	means := make(map[string]*float64, len(fields))
	for name, f := range fields {
		if f == nil {
			means[name] = nil
			continue
		}
		area, ok := areas[f.Grid()]
		if !ok {
			var err error
			area, err = region.AreaField(f.Grid())
			if err != nil {
				return nil, fmt.Errorf("pixel areas for %s: %w", name, err)
			}
			areas[f.Grid()] = area
		}
		means[name] = weightedMean(f, area)
	}
	return means, nil
}

// SummarizeByCategory returns the area in km² of each severity class inside
// region. Pixels that are no-data or outside the region are skipped.
func SummarizeByCategory(classified *Field, region Region) (map[Severity]float64, error) {
	area, err := region.AreaField(classified.Grid())
	if err != nil {
		return nil, fmt.Errorf("pixel areas: %w", err)
	}
	areas, _, _ := categoryAreas(classified, area)
	return areas, nil
}

// Summarize computes the full regional summary of an anomaly result and its
// classification. A region covering no pixels yields a summary of no-data
// means and zero areas alongside a *RegionAreaError.
func Summarize(result AnomalyResult, classified *Field, region Region) (ZonalSummary, error) {
	area, err := region.AreaField(classified.Grid())
	if err != nil {
		return ZonalSummary{}, fmt.Errorf("pixel areas: %w", err)
	}

	summary := ZonalSummary{
		Region: region.Name(),
		Means:  make(map[string]*float64),
	}
	for name, f := range result.Fields() {
		if f == nil {
			summary.Means[name] = nil
			continue
		}
		if f.Grid() != area.Grid() {
			return ZonalSummary{}, &GridMismatchError{Want: area.Grid(), Got: f.Grid()}
		}
		summary.Means[name] = weightedMean(f, area)
	}
	summary.CategoryAreas, summary.ValidAreaKm2, summary.ValidPixels = categoryAreas(classified, area)
	for i := range area.values {
		if a, ok := area.AtIndex(i); ok {
			summary.RegionAreaKm2 += a
		}
	}

	return summary, CheckRegionCoverage(region, area)
}

func categoryAreas(classified, area *Field) (map[Severity]float64, float64, int) {
	all := AllSeverities()
	areas := make(map[Severity]float64, len(all))
	for _, s := range all {
		areas[s] = 0
	}
	var total float64
	var pixels int
	for i := range area.values {
		a, ok := area.AtIndex(i)
		if !ok {
			continue
		}
		v, ok := classified.AtIndex(i)
		if !ok {
			continue
		}
		s := Severity(int(v))
		if !s.Valid() {
			continue
		}
		areas[s] += a
		total += a
		pixels++
	}
	return areas, total, pixels
}

// weightedMean returns the area-weighted mean of f or nil when f has no
// valid pixel where area is valid.
func weightedMean(f, area *Field) *float64 {
	var sum, weight float64
	for i := range area.values {
		a, ok := area.AtIndex(i)
		if !ok {
			continue
		}
		v, ok := f.AtIndex(i)
		if !ok {
			continue
		}
		sum += v * a
		weight += a
	}
	if weight == 0 {
		return nil
	}
	mean := sum / weight
	return &mean
}
