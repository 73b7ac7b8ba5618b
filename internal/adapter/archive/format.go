package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
)

// Default dataset identifiers written by the fixture generator.
const (
	DefaultDataset = "UCSB-CHG/CHIRPS/PENTAD"
	DefaultBand    = "precipitation"
)

// Document is the JSON wire and file format of a raster archive. Values are
// row-major per image; null marks a no-data pixel.
type Document struct {
	Dataset string     `json:"dataset"`
	Band    string     `json:"band"`
	Units   string     `json:"units,omitempty"`
	Grid    GridDoc    `json:"grid"`
	Images  []ImageDoc `json:"images"`
}

// GridDoc mirrors domain.Grid.
type GridDoc struct {
	MinLon   float64 `json:"min_lon"`
	MaxLat   float64 `json:"max_lat"`
	CellSize float64 `json:"cell_size"`
	Rows     int     `json:"rows"`
	Cols     int     `json:"cols"`
	CRS      string  `json:"crs,omitempty"`
}

// ImageDoc is one timestamped raster.
type ImageDoc struct {
	Time   time.Time  `json:"time"`
	Values []*float64 `json:"values"`
}

// Decode reads a Document from r.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode archive: %w", err)
	}
	return doc, nil
}

// Encode writes doc to w as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}
	return nil
}

// DomainGrid converts the grid, defaulting the CRS.
func (g GridDoc) DomainGrid() domain.Grid {
	crs := g.CRS
	if crs == "" {
		crs = domain.DefaultCRS
	}
	return domain.Grid{
		MinLon:   g.MinLon,
		MaxLat:   g.MaxLat,
		CellSize: g.CellSize,
		Rows:     g.Rows,
		Cols:     g.Cols,
		CRS:      crs,
	}
}

// Series converts the document into a validated time series.
func (d Document) Series() (domain.TimeSeries, error) {
	grid := d.Grid.DomainGrid()
	if err := grid.Validate(); err != nil {
		return domain.TimeSeries{}, fmt.Errorf("archive grid: %w", err)
	}
	if len(d.Images) == 0 {
		return domain.EmptySeries(grid), nil
	}

	images := make([]domain.Image, 0, len(d.Images))
	for i, img := range d.Images {
		if img.Time.IsZero() {
			return domain.TimeSeries{}, fmt.Errorf("archive image %d has no time", i)
		}
		values := make([]float64, len(img.Values))
		valid := make([]bool, len(img.Values))
		for j, v := range img.Values {
			if v != nil {
				values[j] = *v
				valid[j] = true
			}
		}
		field, err := domain.NewField(grid, values, valid)
		if err != nil {
			return domain.TimeSeries{}, fmt.Errorf("archive image %d (%s): %w", i, img.Time.Format(time.DateOnly), err)
		}
		images = append(images, domain.Image{Time: img.Time.UTC(), Field: field})
	}
	return domain.NewTimeSeries(images)
}

// FromSeries converts a time series into a Document.
func FromSeries(dataset, band string, series domain.TimeSeries) Document {
	grid := series.Grid()
	doc := Document{
		Dataset: dataset,
		Band:    band,
		Units:   "mm",
		Grid: GridDoc{
			MinLon:   grid.MinLon,
			MaxLat:   grid.MaxLat,
			CellSize: grid.CellSize,
			Rows:     grid.Rows,
			Cols:     grid.Cols,
			CRS:      grid.CRS,
		},
		Images: make([]ImageDoc, 0, series.Len()),
	}
	for _, img := range series.Images() {
		doc.Images = append(doc.Images, ImageDoc{Time: img.Time.UTC(), Values: fieldValues(img.Field)})
	}
	return doc
}

func fieldValues(f *domain.Field) []*float64 {
	values, valid := f.Values()
	out := make([]*float64, len(values))
	for i := range values {
		if valid[i] {
			v := values[i]
			out[i] = &v
		}
	}
	return out
}
