package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/soilviz-cli/internal/chart"
	"github.com/KaramelBytes/soilviz-cli/internal/recommend"
	"github.com/KaramelBytes/soilviz-cli/internal/reference"
)

// Header aliases accepted for metric and probability tables.
var (
	nameColumns  = []string{"name", "nutrient", "metric", "parameter"}
	valueColumns = []string{"value", "measured", "reading", "result"}
	unitColumns  = []string{"unit", "units"}
	lowColumns   = []string{"low", "min", "optimal low", "range low"}
	highColumns  = []string{"high", "max", "optimal high", "range high"}
	labelColumns = []string{"label", "disease", "class", "name"}
	probColumns  = []string{"probability", "prob", "p", "confidence", "score"}
)

// MetricsFromTable converts rows of Name,Value[,Unit][,Low,High] into a
// series. Rows without a band take it from ref; a row with neither is an
// error. Blank names are skipped with a warning.
func MetricsFromTable(t *Table, opt TableOptions, ref *reference.Table) (chart.MetricSeries, []string, error) {
	nameIdx := t.Column(nameColumns...)
	valIdx := t.Column(valueColumns...)
	if nameIdx < 0 || valIdx < 0 {
		return chart.MetricSeries{}, nil, &chart.ValidationError{Field: "header", Reason: fmt.Sprintf("%s: need name and value columns, got %s", t.Name, strings.Join(t.Header, ", "))}
	}
	unitIdx := t.Column(unitColumns...)
	lowIdx := t.Column(lowColumns...)
	highIdx := t.Column(highColumns...)
	warnings := append([]string(nil), t.Warnings...)

	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var metrics []chart.Metric
	for n, row := range t.Rows {
		line := n + 2 // header is line 1
		name := cell(row, nameIdx)
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: empty name skipped", line))
			continue
		}
		v, ok := parseNumeric(cell(row, valIdx), opt)
		if !ok {
			return chart.MetricSeries{}, nil, &chart.ValidationError{Field: fmt.Sprintf("rows[%d].value", line), Reason: fmt.Sprintf("%q is not a number", safeVal(cell(row, valIdx)))}
		}
		unit := cell(row, unitIdx)
		if unit == "" {
			unit = t.Unit(valIdx)
		}

		m := chart.Metric{Name: name, Value: v, Unit: unit}
		lowS, highS := cell(row, lowIdx), cell(row, highIdx)
		switch {
		case lowS != "" && highS != "":
			lo, okL := parseNumeric(lowS, opt)
			hi, okH := parseNumeric(highS, opt)
			if !okL || !okH {
				return chart.MetricSeries{}, nil, &chart.ValidationError{Field: fmt.Sprintf("rows[%d].range", line), Reason: fmt.Sprintf("bad band %q..%q", safeVal(lowS), safeVal(highS))}
			}
			m.Band = chart.RangeBand{Low: lo, High: hi}
			if nv, nu, ok := normalizeUnit(v, unit, opt); ok {
				m.Value, m.Unit = nv, nu
				m.Band.Low, _, _ = normalizeUnit(lo, unit, opt)
				m.Band.High, _, _ = normalizeUnit(hi, unit, opt)
			}
		default:
			r, found := lookup(ref, name)
			if !found {
				return chart.MetricSeries{}, nil, &chart.ValidationError{Field: fmt.Sprintf("rows[%d].range", line), Reason: fmt.Sprintf("no band given and no reference range for %s", name)}
			}
			if nv, nu, ok := normalizeUnit(v, unit, opt); ok {
				m.Value, m.Unit = nv, nu
			}
			if m.Unit == "" {
				m.Unit = r.Unit
			}
			if r.Unit != "" && m.Unit != r.Unit {
				warnings = append(warnings, fmt.Sprintf("row %d: %s unit %s differs from reference unit %s", line, name, m.Unit, r.Unit))
			}
			m.Band = r.Band()
		}
		metrics = append(metrics, m)
	}
	s, err := chart.MetricSeriesFrom(metrics)
	if err != nil {
		return chart.MetricSeries{}, nil, err
	}
	return s, warnings, nil
}

func lookup(ref *reference.Table, name string) (reference.Range, bool) {
	if ref == nil {
		return reference.Range{}, false
	}
	return ref.Lookup(name)
}

// LoadMetrics reads a metric table from path.
func LoadMetrics(path string, opt TableOptions, ref *reference.Table) (chart.MetricSeries, []string, error) {
	t, err := ReadTable(path, opt)
	if err != nil {
		return chart.MetricSeries{}, nil, err
	}
	return MetricsFromTable(t, opt, ref)
}

// ProbabilitiesFromTable converts Label,Probability rows into a set. Values
// written as percentages ("45%" or a "%" header unit) are scaled to [0,1].
// With normalize the set is rescaled to sum to 1.
func ProbabilitiesFromTable(t *Table, opt TableOptions, normalize bool) (chart.ProbabilitySet, []string, error) {
	labelIdx := t.Column(labelColumns...)
	probIdx := t.Column(probColumns...)
	if labelIdx < 0 || probIdx < 0 {
		return chart.ProbabilitySet{}, nil, &chart.ValidationError{Field: "header", Reason: fmt.Sprintf("%s: need label and probability columns, got %s", t.Name, strings.Join(t.Header, ", "))}
	}
	pctColumn := t.Unit(probIdx) == "%"
	warnings := append([]string(nil), t.Warnings...)

	var items []chart.RankedItem
	for n, row := range t.Rows {
		line := n + 2
		label := row[labelIdx]
		if label == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: empty label skipped", line))
			continue
		}
		raw := row[probIdx]
		p, ok := parseNumeric(raw, opt)
		if !ok {
			return chart.ProbabilitySet{}, nil, &chart.ValidationError{Field: fmt.Sprintf("rows[%d].probability", line), Reason: fmt.Sprintf("%q is not a number", safeVal(raw))}
		}
		if pctColumn || strings.HasSuffix(raw, "%") {
			p /= 100
		}
		items = append(items, chart.RankedItem{Label: label, Probability: p})
	}
	set, err := chart.NewProbabilitySet(items)
	if err != nil {
		return chart.ProbabilitySet{}, nil, err
	}
	if normalize && set.Len() > 0 {
		items = set.Items()
		m := make(map[string]float64, len(items))
		for _, it := range items {
			m[it.Label] = it.Probability
		}
		m = recommend.Normalize(m)
		for i := range items {
			items[i].Probability = m[items[i].Label]
		}
		if set, err = chart.NewProbabilitySet(items); err != nil {
			return chart.ProbabilitySet{}, nil, err
		}
	}
	return set, warnings, nil
}

// LoadProbabilities reads a probability table from path.
func LoadProbabilities(path string, opt TableOptions, normalize bool) (chart.ProbabilitySet, []string, error) {
	t, err := ReadTable(path, opt)
	if err != nil {
		return chart.ProbabilitySet{}, nil, err
	}
	return ProbabilitiesFromTable(t, opt, normalize)
}
