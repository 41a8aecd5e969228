package recommend

import (
	"math"

	"github.com/KaramelBytes/soilviz-cli/internal/chart"
)

// SeasonWaterNeedMM is the average water need of a rice season.
const SeasonWaterNeedMM = 1200.0

// TemperatureStatus describes growing conditions for a mean temperature.
type TemperatureStatus struct {
	Status      string `json:"status" yaml:"status"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
}

// ClassifyTemperature buckets a temperature in °C.
func ClassifyTemperature(c float64) TemperatureStatus {
	switch {
	case c < 20:
		return TemperatureStatus{"cold", "Cold", "Below optimal - growth may be inhibited"}
	case c < 25:
		return TemperatureStatus{"cool", "Moderate", "Acceptable for most rice varieties"}
	case c < 30:
		return TemperatureStatus{"optimal", "Optimal", "Ideal range for rice growth"}
	case c < 35:
		return TemperatureStatus{"hot", "High", "Watch for heat stress"}
	default:
		return TemperatureStatus{"extreme", "Extreme", "High risk of heat damage"}
	}
}

// Irrigation is the derived irrigation picture for one season.
type Irrigation struct {
	Temperature        float64           `json:"temperature"`
	Rainfall           float64           `json:"rainfall"`
	WaterEfficiency    float64           `json:"water_efficiency"`
	TotalWaterNeed     float64           `json:"total_water_need"`
	IrrigationRequired float64           `json:"irrigation_required"`
	IrrigationApplied  float64           `json:"irrigation_applied"`
	TemperatureStatus  TemperatureStatus `json:"temperature_status"`
}

// Budget returns the positional water budget for the chart.
func (i Irrigation) Budget() (chart.WaterBudget, error) {
	return chart.NewWaterBudget(i.TotalWaterNeed, i.Rainfall, i.IrrigationRequired)
}

// EstimateIrrigation derives the season water need from temperature and
// rainfall. Need scales ×0.9 below 22 °C and ×1.15 above 30 °C; efficiency
// below 0.5 is treated as 0.5 when estimating the applied amount.
func EstimateIrrigation(temperature, rainfall, efficiency float64) Irrigation {
	need := SeasonWaterNeedMM
	switch {
	case temperature < 22:
		need *= 0.9
	case temperature > 30:
		need *= 1.15
	}
	required := math.Max(0, need-rainfall)
	applied := required / math.Max(efficiency, 0.5)
	return Irrigation{
		Temperature:        temperature,
		Rainfall:           rainfall,
		WaterEfficiency:    efficiency,
		TotalWaterNeed:     need,
		IrrigationRequired: required,
		IrrigationApplied:  applied,
		TemperatureStatus:  ClassifyTemperature(temperature),
	}
}
