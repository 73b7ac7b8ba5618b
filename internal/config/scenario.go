package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// Scenario describes what the service analyzes: a region of interest, the
// baseline years and the current window.
type Scenario struct {
	Region           RegionSpec `yaml:"region"`
	Baseline         YearSpan   `yaml:"baseline"`
	Current          DateSpan   `yaml:"current"`
	HistogramBuckets int        `yaml:"histogram_buckets"`
}

// RegionSpec is either a bounding box or a polygon with optional holes.
type RegionSpec struct {
	Name    string        `yaml:"name"`
	BBox    []float64     `yaml:"bbox"`    // min lon, min lat, max lon, max lat
	Polygon [][][]float64 `yaml:"polygon"` // outer ring first, then holes
}

type YearSpan struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// DateSpan holds inclusive dates in YYYY-MM-DD form. An empty span means the
// previous calendar year at each run.
type DateSpan struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// DefaultScenario is the India reference analysis: baseline 1991-2020 against
// the 2023 calendar year.
func DefaultScenario() Scenario {
	return Scenario{
		Region:   RegionSpec{Name: "india", BBox: []float64{68, 6, 97, 37}},
		Baseline: YearSpan{Start: 1991, End: 2020},
		Current:  DateSpan{Start: "2023-01-01", End: "2023-12-31"},
	}
}

// LoadScenario reads a YAML scenario file. Unknown keys are rejected.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Validate checks the region, the baseline years and the current window.
func (s Scenario) Validate() error {
	if _, err := s.DomainRegion(); err != nil {
		return err
	}
	if err := domain.ValidateBaselineWindow(s.Baseline.Start, s.Baseline.End); err != nil {
		return fmt.Errorf("scenario baseline: %w", err)
	}
	if _, err := s.CurrentWindow(); err != nil {
		return err
	}
	if s.HistogramBuckets < 0 {
		return errors.New("scenario histogram_buckets must not be negative")
	}
	return nil
}

// DomainRegion builds the region of interest.
func (s Scenario) DomainRegion() (domain.Region, error) {
	r := s.Region
	if r.Name == "" {
		return domain.Region{}, errors.New("scenario region name is required")
	}
	switch {
	case len(r.Polygon) > 0 && len(r.BBox) > 0:
		return domain.Region{}, errors.New("scenario region must set bbox or polygon, not both")
	case len(r.Polygon) > 0:
		poly := make(orb.Polygon, 0, len(r.Polygon))
		for i, coords := range r.Polygon {
			ring := make(orb.Ring, 0, len(coords))
			for _, p := range coords {
				if len(p) != 2 {
					return domain.Region{}, fmt.Errorf("scenario region ring %d has a point without lon, lat", i)
				}
				ring = append(ring, orb.Point{p[0], p[1]})
			}
			poly = append(poly, ring)
		}
		return domain.NewRegion(r.Name, poly)
	case len(r.BBox) == 4:
		return domain.RegionFromBound(r.Name, r.BBox[0], r.BBox[1], r.BBox[2], r.BBox[3])
	default:
		return domain.Region{}, errors.New("scenario region needs a 4-value bbox or a polygon")
	}
}

// CurrentWindow parses the current window. A zero range is returned when both
// dates are empty.
func (s Scenario) CurrentWindow() (domain.TimeRange, error) {
	c := s.Current
	if c.Start == "" && c.End == "" {
		return domain.TimeRange{}, nil
	}
	start, err := time.Parse(time.DateOnly, c.Start)
	if err != nil {
		return domain.TimeRange{}, fmt.Errorf("scenario current.start: %w", err)
	}
	end, err := time.Parse(time.DateOnly, c.End)
	if err != nil {
		return domain.TimeRange{}, fmt.Errorf("scenario current.end: %w", err)
	}
	window, err := domain.NewTimeRange(start, end)
	if err != nil {
		return domain.TimeRange{}, fmt.Errorf("scenario current: %w", err)
	}
	return window, nil
}
