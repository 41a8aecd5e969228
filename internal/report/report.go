// Package report renders a prepared chart bundle and its advice as a
// compact Markdown summary.
package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/soilviz-cli/internal/chart"
	"github.com/KaramelBytes/soilviz-cli/internal/recommend"
)

// Report groups everything printed for one analysis result.
type Report struct {
	Name             string
	Bundle           *chart.Bundle
	Irrigation       *recommend.Irrigation
	IrrigationAdvice *recommend.IrrigationAdvice
	Fertilizer       *recommend.FertilizerAdvice
	Notes            []string
}

// Markdown renders the report in bracketed sections. Sections without data
// are left out.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[ANALYSIS SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Bundle != nil {
		b.WriteString(fmt.Sprintf("Bundle: %s\n", r.Bundle.ID))
		b.WriteString(fmt.Sprintf("Charts: %d prepared, %d skipped\n", prepared(r.Bundle), len(r.Bundle.Skipped)))
	}

	if r.Bundle != nil && r.Bundle.Nutrient != nil {
		b.WriteString("\n[NUTRIENTS]\n")
		for _, bar := range r.Bundle.Nutrient.Bars {
			name := safe(bar.Label)
			if bar.Unit != "" {
				name = fmt.Sprintf("%s [%s]", name, bar.Unit)
			}
			b.WriteString(fmt.Sprintf("- %s: %s — %s %s (range %s..%s)\n",
				name, bar.Tooltip, bar.Classification, bar.Fill.Hex(),
				chart.FormatMetric(bar.Band.Low, "", -1), chart.FormatMetric(bar.Band.High, "", -1)))
		}
	}

	if r.Bundle != nil && r.Bundle.Water != nil {
		b.WriteString("\n[WATER BUDGET]\n")
		for _, bar := range r.Bundle.Water.Bars {
			b.WriteString(fmt.Sprintf("- %s: %s\n", bar.Label, bar.Tooltip))
		}
		if irr := r.Irrigation; irr != nil {
			b.WriteString(fmt.Sprintf("- Irrigation Applied (efficiency %.0f%%): %s\n", irr.WaterEfficiency*100, chart.FormatWater(irr.IrrigationApplied)))
			ts := irr.TemperatureStatus
			b.WriteString(fmt.Sprintf("- Temperature: %.1f °C, %s (%s)\n", irr.Temperature, ts.Label, ts.Description))
		}
	}

	if r.Bundle != nil && r.Bundle.Disease != nil {
		d := r.Bundle.Disease
		b.WriteString("\n[DISEASE RISK]\n")
		if d.Total > len(d.Bars) {
			b.WriteString(fmt.Sprintf("Top %d of %d\n", len(d.Bars), d.Total))
		}
		for i, bar := range d.Bars {
			b.WriteString(fmt.Sprintf("%d. %s: %s", i+1, safe(bar.Label), bar.Tooltip))
			if info, ok := recommend.LookupDisease(bar.Label); ok {
				b.WriteString(fmt.Sprintf(" (severity %s %s)", info.Severity, recommend.SeverityColor(info.Severity)))
			}
			b.WriteString("\n")
		}
	}

	var recs []string
	if r.Fertilizer != nil {
		recs = append(recs, r.Fertilizer.Recommendations...)
	}
	if r.IrrigationAdvice != nil {
		recs = append(recs, r.IrrigationAdvice.Recommendations...)
	}
	if len(recs) > 0 {
		b.WriteString("\n[RECOMMENDATIONS]\n")
		for _, rec := range recs {
			b.WriteString("- ")
			b.WriteString(safe(rec))
			b.WriteString("\n")
		}
	}

	var notes []string
	if r.Bundle != nil {
		notes = append(notes, r.Bundle.Skipped...)
	}
	notes = append(notes, r.Notes...)
	if len(notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func prepared(b *chart.Bundle) int {
	n := 0
	if b.Nutrient != nil {
		n++
	}
	if b.Water != nil {
		n++
	}
	if b.Disease != nil {
		n++
	}
	return n
}

func safe(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
