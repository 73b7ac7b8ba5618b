// Package report renders anomaly reports as the JSON documents published to
// Kafka and served over HTTP.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/pipeline"
)

// Document is the serialized form of a pipeline.Report. Statistics with no
// valid pixel are null.
type Document struct {
	ID                string              `json:"id"`
	Region            Region              `json:"region"`
	Baseline          Baseline            `json:"baseline"`
	Current           Window              `json:"current"`
	Statistics        map[string]*float64 `json:"statistics"`
	Conditions        []Condition         `json:"conditions"`
	RegionAreaKm2     float64             `json:"region_area_km2"`
	ClassifiedAreaKm2 float64             `json:"classified_area_km2"`
	ClassifiedPixels  int                 `json:"classified_pixels"`
	AnnualSeries      []Year              `json:"annual_series"`
	Histogram         Histogram           `json:"histogram"`
	Images            Images              `json:"images"`
	GeneratedAt       time.Time           `json:"generated_at"`
	DurationMs        int64               `json:"duration_ms"`
}

type Region struct {
	Name string     `json:"name"`
	BBox [4]float64 `json:"bbox"` // min lon, min lat, max lon, max lat
}

type Baseline struct {
	StartYear   int `json:"start_year"`
	EndYear     int `json:"end_year"`
	SampleCount int `json:"sample_count"`
}

type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Condition is the area of one severity class.
type Condition struct {
	Code    int     `json:"code"`
	Label   string  `json:"label"`
	AreaKm2 float64 `json:"area_km2"`
	Percent float64 `json:"percent"` // share of the classified area
}

type Year struct {
	Year   int      `json:"year"`
	MeanMm *float64 `json:"mean_mm"`
}

type Histogram struct {
	Field   string   `json:"field"`
	Total   int      `json:"total"`
	Buckets []Bucket `json:"buckets"`
}

type Bucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type Images struct {
	Total    int `json:"total,omitempty"`
	Baseline int `json:"baseline"`
	Current  int `json:"current"`
}

// FromReport converts a report into its document form.
func FromReport(r pipeline.Report) Document {
	bound := r.Request.Region.Bound()
	summary := r.Summary

	doc := Document{
		ID: r.ID,
		Region: Region{
			Name: r.Request.Region.Name(),
			BBox: [4]float64{bound.Min.X(), bound.Min.Y(), bound.Max.X(), bound.Max.Y()},
		},
		Baseline: Baseline{
			StartYear:   r.Anomaly.Baseline.YearStart,
			EndYear:     r.Anomaly.Baseline.YearEnd,
			SampleCount: r.Anomaly.Baseline.SampleCount,
		},
		Current: Window{
			Start: r.Request.Current.Start.UTC().Format(time.DateOnly),
			End:   r.Request.Current.End.UTC().Format(time.DateOnly),
		},
		Statistics:        summary.Means,
		RegionAreaKm2:     summary.RegionAreaKm2,
		ClassifiedAreaKm2: summary.ValidAreaKm2,
		ClassifiedPixels:  summary.ValidPixels,
		Histogram:         Histogram{Field: r.Histogram.Field, Total: r.Histogram.Total},
		Images:            Images{Total: r.Images.Total, Baseline: r.Images.Baseline, Current: r.Images.Current},
		GeneratedAt:       r.GeneratedAt.UTC(),
		DurationMs:        r.Duration.Milliseconds(),
	}
	if doc.Statistics == nil {
		doc.Statistics = map[string]*float64{}
	}

	for _, s := range domain.AllSeverities() {
		area := summary.CategoryAreas[s]
		c := Condition{Code: int(s), Label: s.String(), AreaKm2: area}
		if summary.ValidAreaKm2 > 0 {
			c.Percent = area / summary.ValidAreaKm2 * 100
		}
		doc.Conditions = append(doc.Conditions, c)
	}

	doc.AnnualSeries = make([]Year, 0, len(r.AnnualSeries))
	for _, y := range r.AnnualSeries {
		doc.AnnualSeries = append(doc.AnnualSeries, Year{Year: y.Year, MeanMm: y.Value})
	}

	doc.Histogram.Buckets = make([]Bucket, 0, len(r.Histogram.Buckets))
	for _, b := range r.Histogram.Buckets {
		doc.Histogram.Buckets = append(doc.Histogram.Buckets, Bucket{Lower: b.Lower, Upper: b.Upper, Count: b.Count})
	}
	return doc
}

// Marshal renders a report as JSON.
func Marshal(r pipeline.Report) ([]byte, error) {
	data, err := json.Marshal(FromReport(r))
	if err != nil {
		return nil, fmt.Errorf("serialize anomaly report: %w", err)
	}
	return data, nil
}
