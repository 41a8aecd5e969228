package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricSeriesValidation(t *testing.T) {
	names := []string{"N", "P"}
	vals := []float64{1, 2}
	units := []string{"mg/kg", "mg/kg"}
	low := []float64{0, 0}
	high := []float64{5, 5}

	cases := []struct {
		name  string
		build func() (MetricSeries, error)
		field string
	}{
		{"short values", func() (MetricSeries, error) { return NewMetricSeries(names, vals[:1], units, low, high) }, "values"},
		{"short high", func() (MetricSeries, error) { return NewMetricSeries(names, vals, units, low, high[:1]) }, "range_high"},
		{"blank name", func() (MetricSeries, error) {
			return NewMetricSeries([]string{"N", " "}, vals, units, low, high)
		}, "names[1]"},
		{"nan value", func() (MetricSeries, error) {
			return NewMetricSeries(names, []float64{math.NaN(), 1}, units, low, high)
		}, "values[0]"},
		{"inverted band", func() (MetricSeries, error) {
			return NewMetricSeries(names, vals, units, []float64{0, 9}, high)
		}, "range_low[1]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.build()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, c.field, ve.Field)
			assert.Contains(t, err.Error(), c.field)
		})
	}
}

func TestNewMetricSeriesCopiesInput(t *testing.T) {
	vals := []float64{1}
	s, err := NewMetricSeries([]string{"N"}, vals, []string{""}, []float64{0}, []float64{2})
	require.NoError(t, err)
	vals[0] = 99
	assert.Equal(t, 1.0, s.Values[0])
	assert.Equal(t, Metric{Name: "N", Value: 1, Band: RangeBand{0, 2}}, s.Metric(0))
}

func TestNewWaterBudget(t *testing.T) {
	w, err := NewWaterBudget(50, 20, 30)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{50, 20, 30}, w.Values())

	_, err = NewWaterBudget(50, -1, 30)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rainfall", ve.Field)

	_, err = NewWaterBudget(50, 1, math.Inf(1))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "irrigation_required", ve.Field)
}

func TestCheckFinite(t *testing.T) {
	require.NoError(t, CheckFinite("value", 12.5))
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := CheckFinite("value", v)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "value", ve.Field)
	}
}
