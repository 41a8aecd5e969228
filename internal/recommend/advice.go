package recommend

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/soilviz-cli/internal/reference"
)

// IrrigationAdvice is the irrigation plan derived from rainfall and efficiency.
type IrrigationAdvice struct {
	Recommendations []string `json:"recommendations"`
	Status          string   `json:"irrigation_status"`
	Schedule        string   `json:"schedule"`
}

var schedules = map[string]string{
	"high":     "Maintain 5-7cm standing water throughout the growing season. Irrigate every 3-4 days.",
	"medium":   "Maintain 3-5cm standing water. Implement Alternate Wetting and Drying with 7-day cycles.",
	"moderate": "Use Alternate Wetting and Drying with 10-day cycles. Ensure soil is moist during critical stages.",
	"low":      "Supplement only during dry spells. Focus on maintaining moist soil during critical growth stages.",
	"minimal":  "Focus on drainage rather than irrigation. Monitor for waterlogging.",
}

// AdviseIrrigation builds irrigation recommendations.
func AdviseIrrigation(irr Irrigation) IrrigationAdvice {
	var recs []string
	switch irr.TemperatureStatus.Status {
	case "cold":
		recs = append(recs, "Consider delaying planting or using cold-tolerant varieties.")
	case "hot", "extreme":
		recs = append(recs, "Increase irrigation frequency to reduce heat stress.")
	}

	var status string
	switch r := irr.Rainfall; {
	case r < 100:
		recs = append(recs, "Implement full irrigation system. Maintain 5-7cm standing water in paddies.")
		status = "high"
	case r < 200:
		recs = append(recs, "Supplement with irrigation. Ensure field is flooded during critical stages.")
		status = "medium"
	case r < 300:
		recs = append(recs, "Implement moderate irrigation. Monitor water levels regularly.")
		status = "moderate"
	case r < 400:
		recs = append(recs, "Minimal irrigation needed. Focus on drainage during heavy rainfall.")
		status = "low"
	default:
		recs = append(recs, "Focus on drainage and flood prevention. No additional irrigation required.")
		status = "minimal"
	}

	switch e := irr.WaterEfficiency; {
	case e < 0.4:
		recs = append(recs, "Improve irrigation infrastructure. Consider laser land leveling for even water distribution.")
	case e < 0.6:
		recs = append(recs, "Implement water conservation practices such as alternate wetting and drying (AWD).")
	}

	schedule := schedules[status]
	recs = append(recs, "Irrigation Schedule: "+schedule)
	if irr.WaterEfficiency < 0.6 {
		recs = append(recs, "Water Conservation: Implement water-saving technologies such as drip irrigation or moisture sensors.")
	}
	return IrrigationAdvice{Recommendations: recs, Status: status, Schedule: schedule}
}

// FertilizerAdvice lists per-nutrient recommendations and the grade behind each.
type FertilizerAdvice struct {
	Recommendations []string                   `json:"recommendations"`
	Grades          map[string]reference.Grade `json:"nutrient_status"`
}

// NutrientReading is one measured nutrient.
type NutrientReading struct {
	Name  string
	Value float64
}

var deficientAdvice = map[string]string{
	"N":  "Nitrogen is deficient. Apply nitrogen fertilizer (urea or ammonium sulfate) at 100-120 kg/ha.",
	"P":  "Phosphorus is deficient. Apply phosphate fertilizer (DAP or SSP) at 60-80 kg/ha.",
	"K":  "Potassium is deficient. Apply potassium fertilizer (KCl or K2SO4) at 60-80 kg/ha.",
	"OM": "Organic Matter is low. Add compost or well-rotted manure at 5-10 tons/ha.",
}

func isMacro(name string) bool { return name == "N" || name == "P" || name == "K" }

// AdviseFertilizer grades every reading against tbl and adds pH advice.
// Readings without a reference range are skipped.
func AdviseFertilizer(tbl *reference.Table, readings []NutrientReading, ph float64) FertilizerAdvice {
	out := FertilizerAdvice{Grades: make(map[string]reference.Grade, len(readings))}
	for _, rd := range readings {
		r, ok := tbl.Lookup(rd.Name)
		if !ok {
			continue
		}
		g := r.Grade(rd.Value)
		out.Grades[rd.Name] = g
		switch g {
		case reference.GradeDeficient:
			if msg, ok := deficientAdvice[rd.Name]; ok {
				out.Recommendations = append(out.Recommendations, msg)
			} else {
				out.Recommendations = append(out.Recommendations, fmt.Sprintf("%s is deficient. Consider applying appropriate supplements.", rd.Name))
			}
		case reference.GradeLow:
			if isMacro(rd.Name) {
				out.Recommendations = append(out.Recommendations, fmt.Sprintf("%s is somewhat low. Apply moderate amounts of fertilizer.", rd.Name))
			}
		case reference.GradeExcessive:
			if isMacro(rd.Name) {
				out.Recommendations = append(out.Recommendations, fmt.Sprintf("%s is excessive. Reduce or avoid further application.", rd.Name))
			}
		}
	}

	phs := strconv.FormatFloat(ph, 'f', -1, 64)
	switch {
	case ph < 5.5:
		out.Recommendations = append(out.Recommendations, fmt.Sprintf("Soil is acidic (pH %s). Consider applying agricultural lime to raise pH.", phs))
	case ph > 7.5:
		out.Recommendations = append(out.Recommendations, fmt.Sprintf("Soil is alkaline (pH %s). For rice, consider acidifying amendments if available.", phs))
	default:
		out.Recommendations = append(out.Recommendations, fmt.Sprintf("Soil pH (%s) is in good range for rice cultivation.", phs))
	}

	if out.Grades["N"] == reference.GradeDeficient && out.Grades["P"] == reference.GradeDeficient && out.Grades["K"] == reference.GradeDeficient {
		out.Recommendations = append(out.Recommendations,
			"Apply balanced NPK fertilizer in split doses - 50% at planting, 25% during tillering, and 25% at panicle initiation.")
	}
	return out
}
