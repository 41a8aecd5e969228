package chart

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// RangeBand is the acceptable [Low, High] interval for a metric.
type RangeBand struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// NewRangeBand validates and returns a band. A degenerate band (Low == High) is legal.
func NewRangeBand(low, high float64) (RangeBand, error) {
	if !finite(low) {
		return RangeBand{}, invalid("low", "must be finite, got %v", low)
	}
	if !finite(high) {
		return RangeBand{}, invalid("high", "must be finite, got %v", high)
	}
	if low > high {
		return RangeBand{}, invalid("low", "%v exceeds high %v", low, high)
	}
	return RangeBand{Low: low, High: high}, nil
}

// Metric is a single row view over a MetricSeries.
type Metric struct {
	Name  string
	Value float64
	Unit  string
	Band  RangeBand
}

// MetricSeries holds parallel per-metric slices; index i identifies one nutrient.
// Build it with NewMetricSeries so the length and band invariants hold.
type MetricSeries struct {
	Names     []string
	Values    []float64
	Units     []string
	RangeLow  []float64
	RangeHigh []float64
}

// NewMetricSeries validates the parallel slices and returns a series that
// owns copies of them.
func NewMetricSeries(names []string, values []float64, units []string, low, high []float64) (MetricSeries, error) {
	n := len(names)
	for _, f := range []struct {
		name string
		l    int
	}{{"values", len(values)}, {"units", len(units)}, {"range_low", len(low)}, {"range_high", len(high)}} {
		if f.l != n {
			return MetricSeries{}, invalid(f.name, "length %d does not match names length %d", f.l, n)
		}
	}
	for i := 0; i < n; i++ {
		if strings.TrimSpace(names[i]) == "" {
			return MetricSeries{}, invalid(fmt.Sprintf("names[%d]", i), "must not be empty")
		}
		if !finite(values[i]) {
			return MetricSeries{}, invalid(fmt.Sprintf("values[%d]", i), "must be finite, got %v", values[i])
		}
		if !finite(low[i]) {
			return MetricSeries{}, invalid(fmt.Sprintf("range_low[%d]", i), "must be finite, got %v", low[i])
		}
		if !finite(high[i]) {
			return MetricSeries{}, invalid(fmt.Sprintf("range_high[%d]", i), "must be finite, got %v", high[i])
		}
		if low[i] > high[i] {
			return MetricSeries{}, invalid(fmt.Sprintf("range_low[%d]", i), "%v exceeds range_high %v for %s", low[i], high[i], names[i])
		}
	}
	return MetricSeries{
		Names:     append([]string(nil), names...),
		Values:    append([]float64(nil), values...),
		Units:     append([]string(nil), units...),
		RangeLow:  append([]float64(nil), low...),
		RangeHigh: append([]float64(nil), high...),
	}, nil
}

// MetricSeriesFrom builds a series from row-oriented metrics.
func MetricSeriesFrom(metrics []Metric) (MetricSeries, error) {
	names := make([]string, len(metrics))
	values := make([]float64, len(metrics))
	units := make([]string, len(metrics))
	low := make([]float64, len(metrics))
	high := make([]float64, len(metrics))
	for i, m := range metrics {
		names[i], values[i], units[i] = m.Name, m.Value, m.Unit
		low[i], high[i] = m.Band.Low, m.Band.High
	}
	return NewMetricSeries(names, values, units, low, high)
}

// Len returns the number of metrics in the series.
func (s MetricSeries) Len() int { return len(s.Names) }

// Band returns the reference band of metric i.
func (s MetricSeries) Band(i int) RangeBand {
	return RangeBand{Low: s.RangeLow[i], High: s.RangeHigh[i]}
}

// Metric returns the row view of metric i.
func (s MetricSeries) Metric(i int) Metric {
	return Metric{Name: s.Names[i], Value: s.Values[i], Unit: s.Units[i], Band: s.Band(i)}
}

// RankedItem is one labeled probability, e.g. a disease prediction.
type RankedItem struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// ProbabilitySet is an unordered collection of ranked items. Its size may
// exceed the display cap.
type ProbabilitySet struct {
	items []RankedItem
}

// NewProbabilitySet validates labels (non-empty, unique) and probabilities (finite, within [0,1]).
func NewProbabilitySet(items []RankedItem) (ProbabilitySet, error) {
	seen := make(map[string]struct{}, len(items))
	out := make([]RankedItem, 0, len(items))
	for i, it := range items {
		field := fmt.Sprintf("probabilities[%d]", i)
		label := strings.TrimSpace(it.Label)
		if label == "" {
			return ProbabilitySet{}, invalid(field, "label must not be empty")
		}
		if _, dup := seen[label]; dup {
			return ProbabilitySet{}, invalid(field, "duplicate label %q", label)
		}
		seen[label] = struct{}{}
		if !finite(it.Probability) || it.Probability < 0 || it.Probability > 1 {
			return ProbabilitySet{}, invalid(field, "probability for %q must be within [0,1], got %v", label, it.Probability)
		}
		out = append(out, RankedItem{Label: label, Probability: it.Probability})
	}
	return ProbabilitySet{items: out}, nil
}

// ProbabilitySetFromMap builds a set from label → probability. Map order is
// irrelevant; items are stored sorted by label.
func ProbabilitySetFromMap(m map[string]float64) (ProbabilitySet, error) {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	items := make([]RankedItem, len(labels))
	for i, l := range labels {
		items[i] = RankedItem{Label: l, Probability: m[l]}
	}
	return NewProbabilitySet(items)
}

// Len returns the number of items in the set.
func (p ProbabilitySet) Len() int { return len(p.items) }

// Items returns a copy of the items in construction order.
func (p ProbabilitySet) Items() []RankedItem {
	return append([]RankedItem(nil), p.items...)
}

// WaterBudget is the positional irrigation summary in millimetres.
type WaterBudget struct {
	TotalNeed          float64 `json:"total_need" yaml:"total_need"`
	Rainfall           float64 `json:"rainfall" yaml:"rainfall"`
	IrrigationRequired float64 `json:"irrigation_required" yaml:"irrigation_required"`
}

// NewWaterBudget rejects negative or non-finite amounts.
func NewWaterBudget(totalNeed, rainfall, irrigationRequired float64) (WaterBudget, error) {
	for _, f := range []struct {
		name string
		v    float64
	}{{"total_need", totalNeed}, {"rainfall", rainfall}, {"irrigation_required", irrigationRequired}} {
		if !finite(f.v) {
			return WaterBudget{}, invalid(f.name, "must be finite, got %v", f.v)
		}
		if f.v < 0 {
			return WaterBudget{}, invalid(f.name, "must be non-negative, got %v", f.v)
		}
	}
	return WaterBudget{TotalNeed: totalNeed, Rainfall: rainfall, IrrigationRequired: irrigationRequired}, nil
}

// Values returns the budget in display order.
func (w WaterBudget) Values() [3]float64 {
	return [3]float64{w.TotalNeed, w.Rainfall, w.IrrigationRequired}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// CheckFinite rejects NaN and ±Inf for a user-supplied number.
func CheckFinite(field string, v float64) error {
	if !finite(v) {
		return invalid(field, "must be a finite number, got %v", v)
	}
	return nil
}
