package chart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Input carries the already-validated sub-records of one analysis result.
// A nil Water or zero-length series/set means "no data" for that chart.
type Input struct {
	Metrics       MetricSeries
	Water         *WaterBudget
	Probabilities ProbabilitySet
}

// Targets tells Build which charts the caller has somewhere to render.
type Targets struct {
	Nutrient bool
	Water    bool
	Disease  bool
}

// AllTargets requests every chart.
func AllTargets() Targets { return Targets{Nutrient: true, Water: true, Disease: true} }

// Options controls dataset assembly.
type Options struct {
	// TopN caps the disease chart; 0 means DefaultTopN.
	TopN int
	// MetricDecimals is the tooltip precision; negative keeps full precision.
	MetricDecimals int
	Palette        Palette
	// Strict turns "every chart skipped" into ErrNoCharts.
	Strict bool
}

// DefaultOptions returns the stock assembly options.
func DefaultOptions() Options {
	return Options{TopN: DefaultTopN, MetricDecimals: DefaultMetricDecimals, Palette: DefaultPalette()}
}

// Bar is one categorical bucket ready for a renderer.
type Bar struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Fill    Color   `json:"fill"`
	Border  Color   `json:"border"`
	Tooltip string  `json:"tooltip"`
}

// NutrientBar is a Bar annotated with its classification inputs.
type NutrientBar struct {
	Bar
	Unit           string         `json:"unit"`
	Band           RangeBand      `json:"band"`
	Classification Classification `json:"classification"`
}

// ReferenceLine is a constant overlay series drawn across the bars.
type ReferenceLine struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
	Color  Color     `json:"color"`
	Dashed bool      `json:"dashed"`
}

// NutrientChart is the vertical bar chart of metric values against their bands.
type NutrientChart struct {
	Bars []NutrientBar `json:"bars"`
	Low  ReferenceLine `json:"low"`
	High ReferenceLine `json:"high"`
}

// Labels returns bar labels in order.
func (c *NutrientChart) Labels() []string {
	out := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		out[i] = b.Label
	}
	return out
}

// WaterLabels are the fixed positional labels of the water budget.
var WaterLabels = [3]string{"Total Need", "Rainfall", "Irrigation Required"}

// WaterChart is the fixed three-bar irrigation summary.
type WaterChart struct {
	Bars      [3]Bar `json:"bars"`
	AxisTitle string `json:"axis_title"`
}

// DiseaseChart is the horizontal top-N probability chart.
type DiseaseChart struct {
	Bars       []Bar    `json:"bars"`
	Horizontal bool     `json:"horizontal"`
	AxisMax    float64  `json:"axis_max"`
	Ticks      []string `json:"ticks"`
	// Total is the size of the probability set before truncation.
	Total int `json:"total"`
}

// Bundle holds every prepared dataset for one analysis result. A nil chart
// was skipped; Skipped says why.
type Bundle struct {
	ID       string         `json:"id"`
	Nutrient *NutrientChart `json:"nutrient,omitempty"`
	Water    *WaterChart    `json:"water,omitempty"`
	Disease  *DiseaseChart  `json:"disease,omitempty"`
	Skipped  []string       `json:"skipped,omitempty"`
}

// Empty reports whether no chart was produced.
func (b *Bundle) Empty() bool {
	return b.Nutrient == nil && b.Water == nil && b.Disease == nil
}

// BuildNutrient classifies and colors every metric. It returns nil for an empty series.
func BuildNutrient(s MetricSeries, o Options) *NutrientChart {
	if s.Len() == 0 {
		return nil
	}
	c := &NutrientChart{
		Bars: make([]NutrientBar, s.Len()),
		Low:  ReferenceLine{Label: "Optimal Low", Values: append([]float64(nil), s.RangeLow...), Color: o.Palette.LowLine, Dashed: true},
		High: ReferenceLine{Label: "Optimal High", Values: append([]float64(nil), s.RangeHigh...), Color: o.Palette.HighLine, Dashed: true},
	}
	for i := 0; i < s.Len(); i++ {
		m := s.Metric(i)
		class := Classify(m.Value, m.Band)
		fill := o.Palette.ForClass(class)
		c.Bars[i] = NutrientBar{
			Bar: Bar{
				Label:   m.Name,
				Value:   m.Value,
				Fill:    fill,
				Border:  fill,
				Tooltip: FormatMetric(m.Value, m.Unit, o.MetricDecimals),
			},
			Unit:           m.Unit,
			Band:           m.Band,
			Classification: class,
		}
	}
	return c
}

// BuildWater lays out the budget in its fixed positions. It returns nil when w is nil.
func BuildWater(w *WaterBudget, o Options) *WaterChart {
	if w == nil {
		return nil
	}
	c := &WaterChart{AxisTitle: "Amount (mm)"}
	for i, v := range w.Values() {
		fill := o.Palette.Water[i]
		c.Bars[i] = Bar{
			Label:   WaterLabels[i],
			Value:   v,
			Fill:    fill,
			Border:  BorderFromFill(fill),
			Tooltip: FormatWater(v),
		}
	}
	return c
}

// BuildDisease ranks the set and encodes each kept item. It returns nil for an empty set.
func BuildDisease(set ProbabilitySet, o Options) *DiseaseChart {
	if set.Len() == 0 {
		return nil
	}
	n := o.TopN
	if n <= 0 {
		n = DefaultTopN
	}
	top := SelectTopN(set, n)
	c := &DiseaseChart{
		Bars:       make([]Bar, len(top)),
		Horizontal: true,
		AxisMax:    1,
		Ticks:      percentTicks(),
		Total:      set.Len(),
	}
	for i, it := range top {
		fill := o.Palette.ProbabilityFill(it.Probability)
		c.Bars[i] = Bar{
			Label:   it.Label,
			Value:   it.Probability,
			Fill:    fill,
			Border:  BorderFromFill(fill),
			Tooltip: FormatProbability(it.Probability),
		}
	}
	return c
}

func percentTicks() []string {
	ticks := make([]string, 0, 6)
	for i := 0; i <= 5; i++ {
		ticks = append(ticks, FormatPercentTick(float64(i)*0.2))
	}
	return ticks
}

// Build prepares every targeted chart for in. Untargeted or empty charts
// are skipped, never an error, unless o.Strict and nothing was produced.
func Build(in Input, t Targets, o Options) (*Bundle, error) {
	b := &Bundle{ID: uuid.NewString()}
	if t.Nutrient {
		b.Nutrient = BuildNutrient(in.Metrics, o)
	}
	if t.Water {
		b.Water = BuildWater(in.Water, o)
	}
	if t.Disease {
		b.Disease = BuildDisease(in.Probabilities, o)
	}
	return finish(b, in, t, o)
}

// BuildConcurrent is Build with the three builders fanned out. None reads
// another's output, so the result equals Build's apart from the ID.
func BuildConcurrent(ctx context.Context, in Input, t Targets, o Options) (*Bundle, error) {
	b := &Bundle{ID: uuid.NewString()}
	g, ctx := errgroup.WithContext(ctx)
	if t.Nutrient {
		g.Go(func() error {
			b.Nutrient = BuildNutrient(in.Metrics, o)
			return ctx.Err()
		})
	}
	if t.Water {
		g.Go(func() error {
			b.Water = BuildWater(in.Water, o)
			return ctx.Err()
		})
	}
	if t.Disease {
		g.Go(func() error {
			b.Disease = BuildDisease(in.Probabilities, o)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build charts: %w", err)
	}
	return finish(b, in, t, o)
}

func finish(b *Bundle, in Input, t Targets, o Options) (*Bundle, error) {
	skip := func(name string, targeted bool, empty bool) {
		switch {
		case !targeted:
			b.Skipped = append(b.Skipped, name+": no render target")
		case empty:
			b.Skipped = append(b.Skipped, name+": no data")
		}
	}
	skip("nutrient", t.Nutrient, in.Metrics.Len() == 0)
	skip("water", t.Water, in.Water == nil)
	skip("disease", t.Disease, in.Probabilities.Len() == 0)
	if o.Strict && b.Empty() {
		return b, ErrNoCharts
	}
	return b, nil
}
