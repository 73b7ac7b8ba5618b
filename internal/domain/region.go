package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

const squareMetresPerKm2 = 1e6

// Region is a named, immutable area of interest in lon/lat coordinates.
type Region struct {
	name     string
	geometry orb.MultiPolygon
	bound    orb.Bound
}

// NewRegion builds a region from a polygon, multipolygon or bound.
func NewRegion(name string, geometry orb.Geometry) (Region, error) {
	var mp orb.MultiPolygon
	switch g := geometry.(type) {
	case orb.Bound:
		mp = orb.MultiPolygon{g.ToPolygon()}
	case orb.Polygon:
		mp = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		mp = g
	case nil:
		return Region{}, errors.New("region geometry is required")
	default:
		return Region{}, fmt.Errorf("unsupported region geometry %s", geometry.GeoJSONType())
	}

	if len(mp) == 0 {
		return Region{}, errors.New("region geometry is empty")
	}
	for i, poly := range mp {
		if len(poly) == 0 || len(poly[0]) < 4 {
			return Region{}, fmt.Errorf("region polygon %d needs a closed outer ring", i)
		}
	}

	clone := mp.Clone()
	bound := clone.Bound()
	if bound.Max.X() <= bound.Min.X() || bound.Max.Y() <= bound.Min.Y() {
		return Region{}, errors.New("region geometry has no area")
	}
	return Region{name: name, geometry: clone, bound: bound}, nil
}

// RegionFromBound builds a rectangular region.
func RegionFromBound(name string, minLon, minLat, maxLon, maxLat float64) (Region, error) {
	return NewRegion(name, orb.Bound{
		Min: orb.Point{minLon, minLat},
		Max: orb.Point{maxLon, maxLat},
	})
}

func (r Region) Name() string { return r.name }

// Bound returns the bounding box of the region.
func (r Region) Bound() orb.Bound { return r.bound }

// Geometry returns a copy of the region geometry.
func (r Region) Geometry() orb.MultiPolygon { return r.geometry.Clone() }

// Contains reports whether p lies inside the region.
func (r Region) Contains(p orb.Point) bool {
	if !r.bound.Contains(p) {
		return false
	}
	return planar.MultiPolygonContains(r.geometry, p)
}

// AreaField returns the geodesic area in km² of every pixel of grid whose
// centre lies inside the region. Pixels outside the region are no-data.
func (r Region) AreaField(grid Grid) (*Field, error) {
	f, err := NewEmptyField(grid)
	if err != nil {
		return nil, err
	}
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			if !r.Contains(grid.CellCenter(row, col)) {
				continue
			}
			area := math.Abs(geo.Area(grid.CellBound(row, col).ToPolygon())) / squareMetresPerKm2
			f.set(row*grid.Cols+col, area, true)
		}
	}
	return f.Named("pixel_area_km2"), nil
}
