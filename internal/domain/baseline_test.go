package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBaseline(t *testing.T) {
	g := testGrid(2, 2)

	t.Run("mean and sample standard deviation", func(t *testing.T) {
		s := annualSeries(t, g, 2001, 100, 200, 300)

		b, err := BuildBaseline(s, 2001, 2003)
		require.NoError(t, err)

		assert.Equal(t, 3, b.SampleCount)
		assert.Equal(t, 2001, b.YearStart)
		assert.Equal(t, 2003, b.YearEnd)
		assert.Equal(t, g, b.Mean.Grid())
		assert.Equal(t, g, b.StdDev.Grid())
		for i := 0; i < g.Len(); i++ {
			assert.InDelta(t, 200.0, valueAt(t, b.Mean, i), 1e-9)
			assert.InDelta(t, 100.0, valueAt(t, b.StdDev, i), 1e-9)
		}
		assert.NoError(t, b.Validate())
	})

	t.Run("sample count matches the window", func(t *testing.T) {
		totals := make([]float64, 30)
		for i := range totals {
			totals[i] = float64(800 + 10*i)
		}
		s := annualSeries(t, g, 1991, totals...)

		b, err := BuildBaseline(s, 1991, 2020)
		require.NoError(t, err)
		assert.Equal(t, 30, b.SampleCount)
		assert.InDelta(t, 945.0, valueAt(t, b.Mean, 0), 1e-9)
		// Sample stddev of an arithmetic progression: step * sqrt(n(n+1)/12).
		assert.InDelta(t, 10*math.Sqrt(30*31/12.0), valueAt(t, b.StdDev, 0), 1e-9)
	})

	t.Run("window shorter than two years", func(t *testing.T) {
		s := annualSeries(t, g, 2001, 100)
		_, err := BuildBaseline(s, 2001, 2001)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInsufficientBaselineWindow))

		var bwe *InsufficientBaselineWindowError
		require.ErrorAs(t, err, &bwe)
		assert.Equal(t, 2001, bwe.YearStart)
		assert.Equal(t, 2001, bwe.YearEnd)
	})

	t.Run("inverted window", func(t *testing.T) {
		_, err := BuildBaseline(TimeSeries{}, 2005, 2001)
		assert.True(t, errors.Is(err, ErrInsufficientBaselineWindow))
	})

	t.Run("missing year", func(t *testing.T) {
		s := mustSeries(t,
			Image{Time: day(2001, time.July, 1), Field: mustConstant(t, g, 100)},
			Image{Time: day(2003, time.July, 1), Field: mustConstant(t, g, 300)},
		)
		_, err := BuildBaseline(s, 2001, 2003)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInsufficientData))
		assert.Contains(t, err.Error(), "2002")
	})
}

func TestReduceAnnualTotals(t *testing.T) {
	g := testGrid(1, 3)

	t.Run("per-pixel valid samples", func(t *testing.T) {
		totals := []*Field{
			mustMaskedField(t, g, []float64{10, 5, 0}, []bool{true, true, false}),
			mustMaskedField(t, g, []float64{20, 0, 0}, []bool{true, false, false}),
			mustMaskedField(t, g, []float64{30, 0, 0}, []bool{true, false, false}),
		}
		b, err := ReduceAnnualTotals(totals, 2000, 2002)
		require.NoError(t, err)

		assert.Equal(t, 20.0, valueAt(t, b.Mean, 0))
		assert.Equal(t, 10.0, valueAt(t, b.StdDev, 0))
		assert.Equal(t, 5.0, valueAt(t, b.Mean, 1), "one valid year still has a mean")
		requireNoData(t, b.StdDev, 1)
		requireNoData(t, b.Mean, 2)
		requireNoData(t, b.StdDev, 2)
		assert.Equal(t, BaselineMeanName, b.Mean.Metadata().Name)
		assert.Equal(t, BaselineStdDevName, b.StdDev.Metadata().Name)
	})

	t.Run("constant totals give zero spread", func(t *testing.T) {
		totals := []*Field{mustConstant(t, g, 50), mustConstant(t, g, 50)}
		b, err := ReduceAnnualTotals(totals, 2000, 2001)
		require.NoError(t, err)
		assert.Equal(t, 0.0, valueAt(t, b.StdDev, 0))
	})

	t.Run("large offset keeps spread", func(t *testing.T) {
		totals := []*Field{
			mustConstant(t, g, 1e12+100),
			mustConstant(t, g, 1e12+200),
			mustConstant(t, g, 1e12+300),
		}
		b, err := ReduceAnnualTotals(totals, 2000, 2002)
		require.NoError(t, err)
		for i := 0; i < g.Len(); i++ {
			assert.InDelta(t, 1e12+200, valueAt(t, b.Mean, i), 1e-3)
			assert.InDelta(t, 100.0, valueAt(t, b.StdDev, i), 1e-6)
		}
	})

	t.Run("count mismatch", func(t *testing.T) {
		_, err := ReduceAnnualTotals([]*Field{mustConstant(t, g, 1)}, 2000, 2001)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "needs 2 annual totals")
	})

	t.Run("grid mismatch", func(t *testing.T) {
		totals := []*Field{mustConstant(t, g, 1), mustConstant(t, testGrid(3, 1), 1)}
		_, err := ReduceAnnualTotals(totals, 2000, 2001)
		assert.True(t, errors.Is(err, ErrGridMismatch))
	})

	t.Run("nil total", func(t *testing.T) {
		_, err := ReduceAnnualTotals([]*Field{mustConstant(t, g, 1), nil}, 2000, 2001)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2001")
	})
}
