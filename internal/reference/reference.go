package reference

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/KaramelBytes/soilviz-cli/internal/chart"
	"gopkg.in/yaml.v3"
)

// Range is a reference entry for one nutrient. Optimal sits between Low and
// High and marks where "low but acceptable" ends.
type Range struct {
	Unit    string  `yaml:"unit"`
	Low     float64 `yaml:"low"`
	Optimal float64 `yaml:"optimal"`
	High    float64 `yaml:"high"`
}

// Band returns the acceptable interval used for chart classification.
func (r Range) Band() chart.RangeBand { return chart.RangeBand{Low: r.Low, High: r.High} }

// Table maps nutrient names to reference ranges.
type Table struct {
	Crop   string           `yaml:"crop"`
	Ranges map[string]Range `yaml:"ranges"`
	// Order lists nutrients in display order.
	Order []string `yaml:"order"`
}

// Rice returns the built-in reference table for paddy rice.
func Rice() *Table {
	return &Table{
		Crop:  "rice",
		Order: []string{"OM", "EC", "N", "P", "K", "Mg", "Fe"},
		Ranges: map[string]Range{
			"OM": {Unit: "%", Low: 1.5, Optimal: 3.0, High: 5.0},
			"EC": {Unit: "dS/m", Low: 0.2, Optimal: 0.5, High: 1.5},
			"N":  {Unit: "mg/kg", Low: 20, Optimal: 40, High: 60},
			"P":  {Unit: "mg/kg", Low: 10, Optimal: 25, High: 50},
			"K":  {Unit: "mg/kg", Low: 80, Optimal: 150, High: 250},
			"Mg": {Unit: "mg/kg", Low: 50, Optimal: 120, High: 200},
			"Fe": {Unit: "mg/kg", Low: 5, Optimal: 15, High: 30},
		},
	}
}

// Load reads a YAML reference table. Entries missing from Order are
// appended alphabetically.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse reference table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	t.fillOrder()
	return &t, nil
}

// LoadOrDefault loads path, or returns Rice() when path is empty.
func LoadOrDefault(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Rice(), nil
	}
	return Load(path)
}

func (t *Table) validate() error {
	if len(t.Ranges) == 0 {
		return &chart.ValidationError{Field: "ranges", Reason: "reference table has no entries"}
	}
	for name, r := range t.Ranges {
		if _, err := chart.NewRangeBand(r.Low, r.High); err != nil {
			return fmt.Errorf("reference %s: %w", name, err)
		}
		if r.Optimal != 0 && (r.Optimal < r.Low || r.Optimal > r.High) {
			return &chart.ValidationError{Field: "ranges." + name + ".optimal", Reason: fmt.Sprintf("%v outside [%v, %v]", r.Optimal, r.Low, r.High)}
		}
	}
	return nil
}

func (t *Table) fillOrder() {
	seen := make(map[string]bool, len(t.Order))
	order := t.Order[:0]
	for _, n := range t.Order {
		if _, ok := t.Ranges[n]; ok && !seen[n] {
			order = append(order, n)
			seen[n] = true
		}
	}
	var rest []string
	for n := range t.Ranges {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	t.Order = append(order, rest...)
}

// Lookup finds a range by name, case-insensitively.
func (t *Table) Lookup(name string) (Range, bool) {
	if r, ok := t.Ranges[name]; ok {
		return r, true
	}
	for k, r := range t.Ranges {
		if strings.EqualFold(k, strings.TrimSpace(name)) {
			return r, true
		}
	}
	return Range{}, false
}

// Series builds a metric series for the given measured values, in table
// order. Values for names missing from the table are rejected.
func (t *Table) Series(values map[string]float64) (chart.MetricSeries, error) {
	var metrics []chart.Metric
	used := make(map[string]bool, len(values))
	for _, name := range t.Order {
		for k, v := range values {
			if !strings.EqualFold(k, name) {
				continue
			}
			r := t.Ranges[name]
			metrics = append(metrics, chart.Metric{Name: name, Value: v, Unit: r.Unit, Band: r.Band()})
			used[k] = true
		}
	}
	var unknown []string
	for k := range values {
		if !used[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return chart.MetricSeries{}, &chart.ValidationError{Field: "nutrients", Reason: "no reference range for " + strings.Join(unknown, ", ")}
	}
	return chart.MetricSeriesFrom(metrics)
}

// Grade is the four-level status used in advice text. Charts keep the
// tri-state Classification.
type Grade string

const (
	GradeDeficient Grade = "deficient"
	GradeLow       Grade = "low"
	GradeOptimal   Grade = "optimal"
	GradeExcessive Grade = "excessive"
)

// Label returns the capitalized display label.
func (g Grade) Label() string {
	if g == "" {
		return ""
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:])
}

// Grade splits the optimal band at r.Optimal: values below it are Low.
func (r Range) Grade(value float64) Grade {
	switch chart.Classify(value, r.Band()) {
	case chart.Deficient:
		return GradeDeficient
	case chart.Excessive:
		return GradeExcessive
	}
	if value < r.Optimal {
		return GradeLow
	}
	return GradeOptimal
}

// StatusColor returns the hex status color for a grade.
func StatusColor(g Grade) string {
	p := chart.DefaultPalette()
	switch g {
	case GradeDeficient:
		return p.Deficient.Hex()
	case GradeLow:
		return p.LowLine.Hex()
	case GradeOptimal:
		return p.Optimal.Hex()
	case GradeExcessive:
		return p.Excessive.Hex()
	}
	return chart.DefaultPalette().Water[0].Hex()
}
