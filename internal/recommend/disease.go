package recommend

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/soilviz-cli/internal/chart"
)

// DiseaseInfo is reference material for one rice disease.
type DiseaseInfo struct {
	ScientificName string  `json:"scientific_name"`
	Symptoms       string  `json:"symptoms"`
	Causes         string  `json:"causes"`
	Management     string  `json:"management"`
	Severity       string  `json:"severity"`
	Confidence     float64 `json:"confidence"`
}

var riceDiseases = map[string]DiseaseInfo{
	"bacterial_leaf_blight": {
		ScientificName: "Xanthomonas oryzae pv. oryzae",
		Symptoms:       "Water-soaked lesions on leaf margins that turn yellow and then white/gray as they enlarge.",
		Causes:         "Bacterial pathogen that enters through wounds or natural openings, favored by warm, humid conditions.",
		Management:     "Use resistant varieties, practice field sanitation, avoid excessive nitrogen fertilization, treat seeds with hot water or antibiotics.",
		Severity:       "high",
		Confidence:     0.92,
	},
	"bacterial_leaf_streak": {
		ScientificName: "Xanthomonas oryzae pv. oryzicola",
		Symptoms:       "Narrow, dark brown streaks between leaf veins that may later turn yellowish at margins.",
		Causes:         "Bacterial pathogen that enters through stomata and wounds, spreads via rain splash and irrigation.",
		Management:     "Use resistant varieties, practice crop rotation, maintain field hygiene, avoid overhead irrigation.",
		Severity:       "medium",
		Confidence:     0.87,
	},
	"brown_spot": {
		ScientificName: "Cochliobolus miyabeanus (Bipolaris oryzae)",
		Symptoms:       "Oval brown spots on leaves, often with yellow halos; affected seeds may have discolored husks.",
		Causes:         "Fungal infection, often associated with nutrient deficiency especially potassium.",
		Management:     "Balanced fertilization, particularly potassium; fungicide treatment; proper spacing; resistant varieties.",
		Severity:       "medium",
		Confidence:     0.90,
	},
	"blast": {
		ScientificName: "Magnaporthe oryzae",
		Symptoms:       "Diamond-shaped lesions on leaves with dark borders and gray/white centers, can affect stems and panicles.",
		Causes:         "Fungal pathogen that spreads via spores, favored by high humidity and moderate temperatures.",
		Management:     "Use resistant varieties, fungicide application, balanced fertilization, proper water management.",
		Severity:       "high",
		Confidence:     0.95,
	},
	"tungro": {
		ScientificName: "Rice tungro bacilliform virus (RTBV) and Rice tungro spherical virus (RTSV)",
		Symptoms:       "Yellow to orange discoloration of leaves, stunted growth, reduced tillering.",
		Causes:         "Viral disease transmitted by green leafhoppers (Nephotettix virescens).",
		Management:     "Vector control with insecticides, resistant varieties, adjusting planting time, removing infected plants.",
		Severity:       "high",
		Confidence:     0.88,
	},
	"healthy": {
		ScientificName: "N/A",
		Symptoms:       "No disease symptoms, normal green coloration, vigorous growth.",
		Causes:         "N/A",
		Management:     "Maintain balanced nutrition, proper water management, regular monitoring for early disease detection.",
		Severity:       "none",
		Confidence:     0.93,
	},
}

var unknownDisease = DiseaseInfo{
	ScientificName: "Unknown",
	Symptoms:       "Information not available",
	Causes:         "Information not available",
	Management:     "Please consult an agricultural expert",
	Severity:       "unknown",
	Confidence:     0.5,
}

// LookupDisease returns the info for name, or a placeholder when unknown.
func LookupDisease(name string) (DiseaseInfo, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	if d, ok := riceDiseases[key]; ok {
		return d, true
	}
	return unknownDisease, false
}

// Diseases lists the known disease keys, sorted.
func Diseases() []string {
	out := make([]string, 0, len(riceDiseases))
	for k := range riceDiseases {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SeverityColor returns the hex color for a disease severity.
func SeverityColor(severity string) string {
	p := chart.DefaultPalette()
	switch severity {
	case "high":
		return p.Deficient.Hex()
	case "medium":
		return p.LowLine.Hex()
	case "low":
		return p.Water[0].Hex()
	case "none":
		return p.Optimal.Hex()
	}
	return p.Excessive.Hex()
}

// Normalize scales probabilities so they sum to 1. A zero or negative
// total leaves the input unchanged.
func Normalize(m map[string]float64) map[string]float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if total > 0 {
			out[k] = v / total
		} else {
			out[k] = v
		}
	}
	return out
}
