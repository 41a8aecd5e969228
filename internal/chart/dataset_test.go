package chart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioInput(t *testing.T) Input {
	t.Helper()
	metrics, err := MetricSeriesFrom([]Metric{
		{Name: "N", Value: 30, Unit: "kg/ha", Band: RangeBand{Low: 40, High: 80}},
		{Name: "P", Value: 25, Unit: "mg/kg", Band: RangeBand{Low: 10, High: 50}},
		{Name: "K", Value: 260, Unit: "mg/kg", Band: RangeBand{Low: 80, High: 250}},
	})
	require.NoError(t, err)
	water, err := NewWaterBudget(50, 20, 30)
	require.NoError(t, err)
	return Input{Metrics: metrics, Water: &water, Probabilities: scenarioSet(t)}
}

func TestBuildNutrientScenario(t *testing.T) {
	c := BuildNutrient(scenarioInput(t).Metrics, DefaultOptions())
	require.NotNil(t, c)
	require.Len(t, c.Bars, 3)

	n := c.Bars[0]
	assert.Equal(t, "N", n.Label)
	assert.Equal(t, Deficient, n.Classification)
	assert.Equal(t, "rgba(220, 53, 69, 0.7)", n.Fill.String())
	assert.Equal(t, "30.00 kg/ha", n.Tooltip)

	assert.Equal(t, Optimal, c.Bars[1].Classification)
	assert.Equal(t, Excessive, c.Bars[2].Classification)
	assert.Equal(t, []string{"N", "P", "K"}, c.Labels())
	assert.Equal(t, []float64{40, 10, 80}, c.Low.Values)
	assert.Equal(t, []float64{80, 50, 250}, c.High.Values)
	assert.True(t, c.Low.Dashed)
	assert.Equal(t, "Optimal Low", c.Low.Label)
}

func TestBuildWaterScenario(t *testing.T) {
	c := BuildWater(scenarioInput(t).Water, DefaultOptions())
	require.NotNil(t, c)
	wantLabels := [3]string{"Total Need", "Rainfall", "Irrigation Required"}
	wantValues := [3]float64{50, 20, 30}
	wantFill := [3]string{"rgba(23, 162, 184, 0.7)", "rgba(0, 123, 255, 0.7)", "rgba(40, 167, 69, 0.7)"}
	for i, b := range c.Bars {
		assert.Equal(t, wantLabels[i], b.Label)
		assert.Equal(t, wantValues[i], b.Value)
		assert.Equal(t, wantFill[i], b.Fill.String())
		assert.Equal(t, 1.0, b.Border.A)
	}
	assert.Equal(t, "30.0 mm", c.Bars[2].Tooltip)
	assert.Equal(t, "Amount (mm)", c.AxisTitle)
}

func TestBuildDiseaseScenario(t *testing.T) {
	c := BuildDisease(scenarioSet(t), DefaultOptions())
	require.NotNil(t, c)
	require.Len(t, c.Bars, 5)
	assert.Equal(t, 0.9, c.Bars[0].Value)
	assert.Equal(t, 6, c.Total)
	assert.True(t, c.Horizontal)
	assert.Equal(t, 1.0, c.AxisMax)
	assert.Equal(t, []string{"0%", "20%", "40%", "60%", "80%", "100%"}, c.Ticks)
	for _, b := range c.Bars {
		assert.NotEqual(t, "F", b.Label)
		assert.InDelta(t, Opacity(b.Value), b.Fill.A, 1e-12)
		assert.Equal(t, b.Fill.RGB(), b.Border.RGB())
		assert.Equal(t, 1.0, b.Border.A)
	}
	assert.Equal(t, "Probability: 90.0%", c.Bars[0].Tooltip)
}

func TestBuildSkipsEmptyAndUntargeted(t *testing.T) {
	in := scenarioInput(t)
	in.Water = nil
	b, err := Build(in, Targets{Nutrient: true, Water: true}, DefaultOptions())
	require.NoError(t, err)
	assert.NotNil(t, b.Nutrient)
	assert.Nil(t, b.Water)
	assert.Nil(t, b.Disease)
	assert.Equal(t, []string{"water: no data", "disease: no render target"}, b.Skipped)
	assert.NotEmpty(t, b.ID)
}

func TestBuildStrictEmpty(t *testing.T) {
	b, err := Build(Input{}, AllTargets(), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, b.Empty())

	o := DefaultOptions()
	o.Strict = true
	_, err = Build(Input{}, AllTargets(), o)
	assert.True(t, errors.Is(err, ErrNoCharts))
}

func TestBuildConcurrentMatchesBuild(t *testing.T) {
	in := scenarioInput(t)
	seq, err := Build(in, AllTargets(), DefaultOptions())
	require.NoError(t, err)
	par, err := BuildConcurrent(context.Background(), in, AllTargets(), DefaultOptions())
	require.NoError(t, err)
	if diff := cmp.Diff(seq, par, cmpopts.IgnoreFields(Bundle{}, "ID")); diff != "" {
		t.Fatalf("concurrent build differs (-seq +par):\n%s", diff)
	}
}

func TestBuildConcurrentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := BuildConcurrent(ctx, scenarioInput(t), AllTargets(), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
