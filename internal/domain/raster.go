package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// DefaultCRS is the coordinate reference system of CHIRPS rasters.
const DefaultCRS = "EPSG:4326"

// Grid describes a regular lon/lat raster. Row 0 is the northern edge.
type Grid struct {
	MinLon   float64
	MaxLat   float64
	CellSize float64 // degrees
	Rows     int
	Cols     int
	CRS      string
}

// Validate reports whether the grid has positive dimensions and cell size.
func (g Grid) Validate() error {
	switch {
	case g.Rows <= 0 || g.Cols <= 0:
		return fmt.Errorf("invalid grid dimensions %dx%d", g.Rows, g.Cols)
	case !(g.CellSize > 0) || math.IsInf(g.CellSize, 0):
		return fmt.Errorf("invalid grid cell size %v", g.CellSize)
	case g.CRS == "":
		return errors.New("grid CRS is required")
	}
	return nil
}

// Len returns the number of pixels in the grid.
func (g Grid) Len() int { return g.Rows * g.Cols }

// CellBound returns the lon/lat extent of pixel (row, col).
func (g Grid) CellBound(row, col int) orb.Bound {
	west := g.MinLon + float64(col)*g.CellSize
	north := g.MaxLat - float64(row)*g.CellSize
	return orb.Bound{
		Min: orb.Point{west, north - g.CellSize},
		Max: orb.Point{west + g.CellSize, north},
	}
}

// CellCenter returns the lon/lat centre of pixel (row, col).
func (g Grid) CellCenter(row, col int) orb.Point {
	return orb.Point{
		g.MinLon + (float64(col)+0.5)*g.CellSize,
		g.MaxLat - (float64(row)+0.5)*g.CellSize,
	}
}

// Bound returns the extent of the whole grid.
func (g Grid) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{g.MinLon, g.MaxLat - float64(g.Rows)*g.CellSize},
		Max: orb.Point{g.MinLon + float64(g.Cols)*g.CellSize, g.MaxLat},
	}
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d@%g from (%g, %g) %s", g.Rows, g.Cols, g.CellSize, g.MinLon, g.MaxLat, g.CRS)
}

// Metadata describes where a field came from.
type Metadata struct {
	Name    string
	Year    int // set on annual totals
	Samples int // number of images aggregated into the field
}

// Field is an immutable raster of float64 values with a validity mask.
// The zero value is not usable; build fields with the constructors.
type Field struct {
	grid   Grid
	values []float64
	valid  []bool
	meta   Metadata
}

// NewField copies values into a new field. A nil mask marks every finite value
// valid; NaN and infinite values are always no-data.
func NewField(grid Grid, values []float64, valid []bool) (*Field, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if len(values) != grid.Len() {
		return nil, fmt.Errorf("field has %d values, grid needs %d", len(values), grid.Len())
	}
	if valid != nil && len(valid) != len(values) {
		return nil, fmt.Errorf("mask has %d entries, grid needs %d", len(valid), grid.Len())
	}

	f := newField(grid)
	for i, v := range values {
		if valid != nil && !valid[i] {
			continue
		}
		f.set(i, v, true)
	}
	return f, nil
}

// NewConstantField returns a field with every pixel set to v.
func NewConstantField(grid Grid, v float64) (*Field, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	f := newField(grid)
	for i := range f.values {
		f.set(i, v, true)
	}
	return f, nil
}

// NewEmptyField returns a field with every pixel no-data.
func NewEmptyField(grid Grid) (*Field, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return newField(grid), nil
}

func newField(grid Grid) *Field {
	return &Field{
		grid:   grid,
		values: make([]float64, grid.Len()),
		valid:  make([]bool, grid.Len()),
	}
}

// set stores v at i, demoting non-finite results to no-data.
func (f *Field) set(i int, v float64, ok bool) {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		f.values[i] = 0
		f.valid[i] = false
		return
	}
	f.values[i] = v
	f.valid[i] = true
}

func (f *Field) Grid() Grid { return f.grid }

func (f *Field) Metadata() Metadata { return f.meta }

// WithMetadata returns a copy of f carrying m. Pixel storage is shared since
// fields never change after construction.
func (f *Field) WithMetadata(m Metadata) *Field {
	out := *f
	out.meta = m
	return &out
}

// Named returns a copy of f with its metadata name set.
func (f *Field) Named(name string) *Field {
	m := f.meta
	m.Name = name
	return f.WithMetadata(m)
}

// At returns the value at (row, col) and whether it is valid.
func (f *Field) At(row, col int) (float64, bool) {
	if row < 0 || row >= f.grid.Rows || col < 0 || col >= f.grid.Cols {
		return 0, false
	}
	return f.AtIndex(row*f.grid.Cols + col)
}

// AtIndex returns the value at row-major index i and whether it is valid.
func (f *Field) AtIndex(i int) (float64, bool) {
	if i < 0 || i >= len(f.values) || !f.valid[i] {
		return 0, false
	}
	return f.values[i], true
}

// Values returns copies of the pixel values and the validity mask.
func (f *Field) Values() ([]float64, []bool) {
	values := make([]float64, len(f.values))
	valid := make([]bool, len(f.valid))
	copy(values, f.values)
	copy(valid, f.valid)
	return values, valid
}

// ValidCount returns the number of valid pixels.
func (f *Field) ValidCount() int {
	n := 0
	for _, ok := range f.valid {
		if ok {
			n++
		}
	}
	return n
}

// Map applies fn to every valid pixel. Pixels for which fn returns false
// become no-data.
func (f *Field) Map(fn func(v float64) (float64, bool)) *Field {
	out := newField(f.grid)
	for i := range f.values {
		if !f.valid[i] {
			continue
		}
		v, ok := fn(f.values[i])
		out.set(i, v, ok)
	}
	return out
}

// Combine applies fn pixel-wise to f and o. A pixel is no-data in the result
// when it is no-data in either input or when fn returns false.
func (f *Field) Combine(o *Field, fn func(a, b float64) (float64, bool)) (*Field, error) {
	if f.grid != o.grid {
		return nil, &GridMismatchError{Want: f.grid, Got: o.grid}
	}
	out := newField(f.grid)
	for i := range f.values {
		if !f.valid[i] || !o.valid[i] {
			continue
		}
		v, ok := fn(f.values[i], o.values[i])
		out.set(i, v, ok)
	}
	return out, nil
}

func (f *Field) Add(o *Field) (*Field, error) {
	return f.Combine(o, func(a, b float64) (float64, bool) { return a + b, true })
}

func (f *Field) Subtract(o *Field) (*Field, error) {
	return f.Combine(o, func(a, b float64) (float64, bool) { return a - b, true })
}

func (f *Field) Multiply(o *Field) (*Field, error) {
	return f.Combine(o, func(a, b float64) (float64, bool) { return a * b, true })
}

// Divide divides f by o pixel-wise. A zero divisor yields no-data.
func (f *Field) Divide(o *Field) (*Field, error) {
	return f.Combine(o, func(a, b float64) (float64, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	})
}

// Scale multiplies every valid pixel by k.
func (f *Field) Scale(k float64) *Field {
	return f.Map(func(v float64) (float64, bool) { return v * k, true })
}

// LessThan returns a 1/0 mask field of v < threshold.
func (f *Field) LessThan(threshold float64) *Field {
	return f.Map(func(v float64) (float64, bool) { return boolValue(v < threshold), true })
}

// LessOrEqual returns a 1/0 mask field of v <= threshold.
func (f *Field) LessOrEqual(threshold float64) *Field {
	return f.Map(func(v float64) (float64, bool) { return boolValue(v <= threshold), true })
}

// GreaterThan returns a 1/0 mask field of v > threshold.
func (f *Field) GreaterThan(threshold float64) *Field {
	return f.Map(func(v float64) (float64, bool) { return boolValue(v > threshold), true })
}

// GreaterOrEqual returns a 1/0 mask field of v >= threshold.
func (f *Field) GreaterOrEqual(threshold float64) *Field {
	return f.Map(func(v float64) (float64, bool) { return boolValue(v >= threshold), true })
}

// And returns 1 where both inputs are non-zero and 0 elsewhere.
func (f *Field) And(o *Field) (*Field, error) {
	return f.Combine(o, func(a, b float64) (float64, bool) { return boolValue(a != 0 && b != 0), true })
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
