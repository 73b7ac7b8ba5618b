package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testGrid returns a 1° grid anchored at the origin: lon [0, cols], lat [0, rows].
func testGrid(rows, cols int) Grid {
	return Grid{MinLon: 0, MaxLat: float64(rows), CellSize: 1, Rows: rows, Cols: cols, CRS: DefaultCRS}
}

func mustField(t *testing.T, g Grid, values ...float64) *Field {
	t.Helper()
	f, err := NewField(g, values, nil)
	require.NoError(t, err)
	return f
}

func mustMaskedField(t *testing.T, g Grid, values []float64, valid []bool) *Field {
	t.Helper()
	f, err := NewField(g, values, valid)
	require.NoError(t, err)
	return f
}

func mustConstant(t *testing.T, g Grid, v float64) *Field {
	t.Helper()
	f, err := NewConstantField(g, v)
	require.NoError(t, err)
	return f
}

func mustSeries(t *testing.T, images ...Image) TimeSeries {
	t.Helper()
	s, err := NewTimeSeries(images)
	require.NoError(t, err)
	return s
}

func mustRegion(t *testing.T, minLon, minLat, maxLon, maxLat float64) Region {
	t.Helper()
	r, err := RegionFromBound("test", minLon, minLat, maxLon, maxLat)
	require.NoError(t, err)
	return r
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// annualSeries builds one constant image per year on July 1 holding the
// given annual total.
func annualSeries(t *testing.T, g Grid, firstYear int, totals ...float64) TimeSeries {
	t.Helper()
	images := make([]Image, 0, len(totals))
	for i, v := range totals {
		images = append(images, Image{Time: day(firstYear+i, time.July, 1), Field: mustConstant(t, g, v)})
	}
	return mustSeries(t, images...)
}

func valueAt(t *testing.T, f *Field, i int) float64 {
	t.Helper()
	v, ok := f.AtIndex(i)
	require.True(t, ok, "pixel %d is no-data", i)
	return v
}

func requireNoData(t *testing.T, f *Field, i int) {
	t.Helper()
	_, ok := f.AtIndex(i)
	require.False(t, ok, "pixel %d should be no-data", i)
}
