package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridValidate(t *testing.T) {
	tests := []struct {
		name    string
		grid    Grid
		wantErr string
	}{
		{name: "valid", grid: testGrid(2, 3)},
		{name: "zero rows", grid: Grid{CellSize: 1, Cols: 1, CRS: DefaultCRS}, wantErr: "dimensions"},
		{name: "negative cell size", grid: Grid{CellSize: -1, Rows: 1, Cols: 1, CRS: DefaultCRS}, wantErr: "cell size"},
		{name: "NaN cell size", grid: Grid{CellSize: math.NaN(), Rows: 1, Cols: 1, CRS: DefaultCRS}, wantErr: "cell size"},
		{name: "missing CRS", grid: Grid{CellSize: 1, Rows: 1, Cols: 1}, wantErr: "CRS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGridGeometry(t *testing.T) {
	g := Grid{MinLon: 68, MaxLat: 37, CellSize: 0.5, Rows: 4, Cols: 6, CRS: DefaultCRS}

	assert.Equal(t, orb.Point{68.25, 36.75}, g.CellCenter(0, 0))
	assert.Equal(t, orb.Point{70.75, 35.25}, g.CellCenter(3, 5))
	assert.Equal(t, orb.Bound{Min: orb.Point{68.5, 36}, Max: orb.Point{69, 36.5}}, g.CellBound(1, 1))
	assert.Equal(t, orb.Bound{Min: orb.Point{68, 35}, Max: orb.Point{71, 37}}, g.Bound())
	assert.Equal(t, 24, g.Len())
}

func TestNewField(t *testing.T) {
	g := testGrid(1, 4)

	t.Run("non-finite values become no-data", func(t *testing.T) {
		f := mustField(t, g, 1, math.NaN(), math.Inf(1), 4)
		assert.Equal(t, 2, f.ValidCount())
		assert.Equal(t, 1.0, valueAt(t, f, 0))
		requireNoData(t, f, 1)
		requireNoData(t, f, 2)
		assert.Equal(t, 4.0, valueAt(t, f, 3))
	})

	t.Run("explicit mask", func(t *testing.T) {
		f := mustMaskedField(t, g, []float64{1, 2, 3, 4}, []bool{true, false, true, false})
		assert.Equal(t, 2, f.ValidCount())
		requireNoData(t, f, 1)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := NewField(g, []float64{1, 2}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 values")
	})

	t.Run("wrong mask length", func(t *testing.T) {
		_, err := NewField(g, []float64{1, 2, 3, 4}, []bool{true})
		require.Error(t, err)
	})

	t.Run("inputs are copied", func(t *testing.T) {
		values := []float64{1, 2, 3, 4}
		f := mustField(t, g, values...)
		values[0] = 99
		assert.Equal(t, 1.0, valueAt(t, f, 0))

		out, _ := f.Values()
		out[1] = 99
		assert.Equal(t, 2.0, valueAt(t, f, 1))
	})

	t.Run("out of range access is no-data", func(t *testing.T) {
		f := mustField(t, g, 1, 2, 3, 4)
		_, ok := f.At(1, 0)
		assert.False(t, ok)
		_, ok = f.At(0, -1)
		assert.False(t, ok)
		v, ok := f.At(0, 2)
		assert.True(t, ok)
		assert.Equal(t, 3.0, v)
	})
}

func TestFieldArithmetic(t *testing.T) {
	g := testGrid(1, 4)
	a := mustMaskedField(t, g, []float64{6, 4, 2, 8}, []bool{true, true, true, false})
	b := mustField(t, g, 3, 0, -2, 1)

	t.Run("add propagates no-data", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, 9.0, valueAt(t, sum, 0))
		assert.Equal(t, 4.0, valueAt(t, sum, 1))
		assert.Equal(t, 0.0, valueAt(t, sum, 2))
		requireNoData(t, sum, 3)
	})

	t.Run("subtract and multiply", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, 3.0, valueAt(t, diff, 0))

		prod, err := a.Multiply(b)
		require.NoError(t, err)
		assert.Equal(t, -4.0, valueAt(t, prod, 2))
	})

	t.Run("divide by zero is no-data", func(t *testing.T) {
		q, err := a.Divide(b)
		require.NoError(t, err)
		assert.Equal(t, 2.0, valueAt(t, q, 0))
		requireNoData(t, q, 1)
		assert.Equal(t, -1.0, valueAt(t, q, 2))
	})

	t.Run("scale", func(t *testing.T) {
		s := a.Scale(0.5)
		assert.Equal(t, 3.0, valueAt(t, s, 0))
		requireNoData(t, s, 3)
	})

	t.Run("grid mismatch", func(t *testing.T) {
		other := mustConstant(t, testGrid(2, 2), 1)
		_, err := a.Add(other)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrGridMismatch))

		var gm *GridMismatchError
		require.ErrorAs(t, err, &gm)
		assert.Equal(t, g, gm.Want)
		assert.Equal(t, testGrid(2, 2), gm.Got)
	})

	t.Run("overflow becomes no-data", func(t *testing.T) {
		big := mustConstant(t, testGrid(1, 1), math.MaxFloat64)
		prod, err := big.Multiply(big)
		require.NoError(t, err)
		requireNoData(t, prod, 0)
	})
}

func TestFieldComparisons(t *testing.T) {
	g := testGrid(1, 4)
	f := mustMaskedField(t, g, []float64{-20, -10, 10, 0}, []bool{true, true, true, false})

	lt := f.LessThan(-10)
	assert.Equal(t, []float64{1, 0, 0}, []float64{valueAt(t, lt, 0), valueAt(t, lt, 1), valueAt(t, lt, 2)})
	requireNoData(t, lt, 3)

	gte := f.GreaterOrEqual(-10)
	lte := f.LessOrEqual(10)
	normal, err := gte.And(lte)
	require.NoError(t, err)
	assert.Equal(t, 0.0, valueAt(t, normal, 0))
	assert.Equal(t, 1.0, valueAt(t, normal, 1))
	assert.Equal(t, 1.0, valueAt(t, normal, 2))
	requireNoData(t, normal, 3)

	gt := f.GreaterThan(10)
	assert.Equal(t, 0.0, valueAt(t, gt, 2))
}

func TestFieldMetadata(t *testing.T) {
	f := mustConstant(t, testGrid(1, 1), 5)
	named := f.Named("x").WithMetadata(Metadata{Name: "y", Year: 2000, Samples: 3})

	assert.Equal(t, Metadata{}, f.Metadata())
	assert.Equal(t, Metadata{Name: "y", Year: 2000, Samples: 3}, named.Metadata())
	assert.Equal(t, 5.0, valueAt(t, named, 0))
}
