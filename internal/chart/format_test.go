package chart

import "testing"

func TestFormatters(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"metric fixed", FormatMetric(30, "kg/ha", 2), "30.00 kg/ha"},
		{"metric raw", FormatMetric(0.55, "dS/m", -1), "0.55 dS/m"},
		{"metric no unit", FormatMetric(3, "", 1), "3.0"},
		{"water", FormatWater(30), "30.0 mm"},
		{"water rounding", FormatWater(1379.96), "1380.0 mm"},
		{"probability", FormatProbability(0.9), "Probability: 90.0%"},
		{"probability small", FormatProbability(0.0512), "Probability: 5.1%"},
		{"tick zero", FormatPercentTick(0), "0%"},
		{"tick fifth", FormatPercentTick(0.2), "20%"},
		{"tick float noise", FormatPercentTick(0.6), "60%"},
		{"tick one", FormatPercentTick(1), "100%"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, c.got, c.want)
		}
	}
}
