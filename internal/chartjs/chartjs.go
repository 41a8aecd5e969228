// Package chartjs serializes prepared chart datasets into Chart.js shaped
// configuration objects. It does not render anything; tooltip and tick
// callbacks are replaced by pre-formatted label arrays.
package chartjs

import (
	"github.com/KaramelBytes/soilviz-cli/internal/chart"
)

// Config is one Chart.js chart definition.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset covers both the bar datasets and the dashed reference lines.
// BackgroundColor and BorderColor hold either a single color or one per bar.
type Dataset struct {
	Type            string    `json:"type,omitempty"`
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	BorderColor     any       `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth"`
	BorderDash      []int     `json:"borderDash,omitempty"`
	Fill            *bool     `json:"fill,omitempty"`
	PointRadius     *int      `json:"pointRadius,omitempty"`
	// TooltipLabels[i] is the tooltip text for Data[i].
	TooltipLabels []string `json:"tooltipLabels,omitempty"`
}

type Options struct {
	IndexAxis           string           `json:"indexAxis,omitempty"`
	Responsive          bool             `json:"responsive"`
	MaintainAspectRatio bool             `json:"maintainAspectRatio"`
	Plugins             Plugins          `json:"plugins"`
	Scales              map[string]Scale `json:"scales"`
}

type Plugins struct {
	Legend Legend `json:"legend"`
}

type Legend struct {
	Display bool `json:"display"`
}

type Scale struct {
	BeginAtZero bool     `json:"beginAtZero,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Grid        Grid     `json:"grid"`
	Title       *Title   `json:"title,omitempty"`
	Ticks       *Ticks   `json:"ticks,omitempty"`
}

type Grid struct {
	Display    bool  `json:"display"`
	DrawBorder *bool `json:"drawBorder,omitempty"`
}

type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// Ticks carries pre-formatted tick labels with the values they belong to.
type Ticks struct {
	Values []float64 `json:"values"`
	Labels []string  `json:"labels"`
}

// Charts is the set of configs for one bundle, keyed by canvas element id.
type Charts struct {
	ID         string   `json:"id"`
	Nutrient   *Config  `json:"nutrientChart,omitempty"`
	Irrigation *Config  `json:"irrigationChart,omitempty"`
	Disease    *Config  `json:"diseaseChart,omitempty"`
	Skipped    []string `json:"skipped,omitempty"`
}

// FromBundle converts every prepared chart in b.
func FromBundle(b *chart.Bundle) Charts {
	out := Charts{ID: b.ID, Skipped: b.Skipped}
	if b.Nutrient != nil {
		c := Nutrient(b.Nutrient)
		out.Nutrient = &c
	}
	if b.Water != nil {
		c := Water(b.Water)
		out.Irrigation = &c
	}
	if b.Disease != nil {
		c := Disease(b.Disease)
		out.Disease = &c
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func baseOptions() Options {
	return Options{
		Responsive:          true,
		MaintainAspectRatio: false,
		Plugins:             Plugins{Legend: Legend{Display: false}},
	}
}

func valueAxis() Scale {
	return Scale{BeginAtZero: true, Grid: Grid{Display: true, DrawBorder: ptr(false)}}
}

func bars[B any](in []B, get func(B) chart.Bar) (labels []string, data []float64, fill, border, tips []string) {
	for _, x := range in {
		b := get(x)
		labels = append(labels, b.Label)
		data = append(data, b.Value)
		fill = append(fill, b.Fill.String())
		border = append(border, b.Border.String())
		tips = append(tips, b.Tooltip)
	}
	return
}

// Nutrient converts the nutrient chart: one bar dataset plus the two
// dashed reference lines.
func Nutrient(c *chart.NutrientChart) Config {
	labels, data, fill, border, tips := bars(c.Bars, func(b chart.NutrientBar) chart.Bar { return b.Bar })
	line := func(l chart.ReferenceLine) Dataset {
		return Dataset{
			Type:        "line",
			Label:       l.Label,
			Data:        l.Values,
			BorderColor: l.Color.String(),
			BorderWidth: 2,
			BorderDash:  dash(l.Dashed),
			Fill:        ptr(false),
			PointRadius: ptr(0),
		}
	}
	opts := baseOptions()
	opts.Scales = map[string]Scale{"y": valueAxis(), "x": {Grid: Grid{Display: false}}}
	return Config{
		Type: "bar",
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{
				{Label: "Nutrient Levels", Data: data, BackgroundColor: fill, BorderColor: border, BorderWidth: 1, TooltipLabels: tips},
				line(c.Low),
				line(c.High),
			},
		},
		Options: opts,
	}
}

func dash(on bool) []int {
	if on {
		return []int{5, 5}
	}
	return nil
}

// Water converts the three-bar irrigation chart.
func Water(c *chart.WaterChart) Config {
	labels, data, fill, border, tips := bars(c.Bars[:], func(b chart.Bar) chart.Bar { return b })
	y := valueAxis()
	y.Title = &Title{Display: true, Text: c.AxisTitle}
	opts := baseOptions()
	opts.Scales = map[string]Scale{"y": y, "x": {Grid: Grid{Display: false}}}
	return Config{
		Type: "bar",
		Data: Data{
			Labels:   labels,
			Datasets: []Dataset{{Label: "Water (mm)", Data: data, BackgroundColor: fill, BorderColor: border, BorderWidth: 1, TooltipLabels: tips}},
		},
		Options: opts,
	}
}

// Disease converts the ranked probability chart. Borders are written in
// rgb() form.
func Disease(c *chart.DiseaseChart) Config {
	labels, data, fill, _, tips := bars(c.Bars, func(b chart.Bar) chart.Bar { return b })
	border := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		border[i] = b.Border.RGB()
	}
	x := valueAxis()
	x.Max = ptr(c.AxisMax)
	if n := len(c.Ticks); n > 1 {
		ticks := &Ticks{Labels: c.Ticks}
		for i := range c.Ticks {
			ticks.Values = append(ticks.Values, c.AxisMax*float64(i)/float64(n-1))
		}
		x.Ticks = ticks
	}
	opts := baseOptions()
	if c.Horizontal {
		opts.IndexAxis = "y"
	}
	opts.Scales = map[string]Scale{"x": x, "y": {Grid: Grid{Display: false}}}
	return Config{
		Type: "bar",
		Data: Data{
			Labels:   labels,
			Datasets: []Dataset{{Label: "Probability", Data: data, BackgroundColor: fill, BorderColor: border, BorderWidth: 1, TooltipLabels: tips}},
		},
		Options: opts,
	}
}
