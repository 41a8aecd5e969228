package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultMetricDecimals is the precision of nutrient tooltips.
const DefaultMetricDecimals = 2

// FormatMetric renders "<value> <unit>". decimals < 0 keeps the shortest
// representation of value. An empty unit yields just the value.
func FormatMetric(value float64, unit string, decimals int) string {
	var v string
	if decimals < 0 {
		v = strconv.FormatFloat(value, 'f', -1, 64)
	} else {
		v = strconv.FormatFloat(value, 'f', decimals, 64)
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return v
	}
	return v + " " + unit
}

// FormatWater renders a water amount, e.g. "30.0 mm".
func FormatWater(mm float64) string {
	return fmt.Sprintf("%.1f mm", mm)
}

// FormatProbability renders a probability tooltip, e.g. "Probability: 90.0%".
func FormatProbability(p float64) string {
	return fmt.Sprintf("Probability: %.1f%%", p*100)
}

// FormatPercentTick renders an axis tick for a [0,1] axis, e.g. "20%".
func FormatPercentTick(v float64) string {
	pct := math.Round(v*100*1e6) / 1e6
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}
