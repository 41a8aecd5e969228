package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/soilviz-cli/internal/chart"
)

func TestRiceGrades(t *testing.T) {
	tbl := Rice()
	n, ok := tbl.Lookup("n")
	if !ok {
		t.Fatalf("lookup N failed")
	}
	cases := []struct {
		v    float64
		want Grade
	}{
		{10, GradeDeficient},
		{20, GradeLow},
		{39.9, GradeLow},
		{40, GradeOptimal},
		{60, GradeOptimal},
		{61, GradeExcessive},
	}
	for _, c := range cases {
		if got := n.Grade(c.v); got != c.want {
			t.Errorf("N=%v: got %s, want %s", c.v, got, c.want)
		}
	}
	if GradeLow.Label() != "Low" {
		t.Fatalf("label: %q", GradeLow.Label())
	}
	if StatusColor(GradeLow) != "#ffc107" || StatusColor(GradeDeficient) != "#dc3545" {
		t.Fatalf("unexpected status colors: %s %s", StatusColor(GradeLow), StatusColor(GradeDeficient))
	}
}

func TestSeriesUsesTableOrderAndUnits(t *testing.T) {
	s, err := Rice().Series(map[string]float64{"K": 300, "n": 30, "OM": 2})
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	want := []string{"OM", "N", "K"}
	for i, name := range want {
		if s.Names[i] != name {
			t.Fatalf("order: got %v, want %v", s.Names, want)
		}
	}
	if s.Units[1] != "mg/kg" {
		t.Fatalf("unit for N: %q", s.Units[1])
	}
	if got := chart.ClassifySeries(s); got[1] != chart.Optimal || got[2] != chart.Excessive {
		t.Fatalf("classes: %v", got)
	}
}

func TestSeriesRejectsUnknown(t *testing.T) {
	_, err := Rice().Series(map[string]float64{"Zn": 3})
	if err == nil {
		t.Fatalf("expected error for unknown nutrient")
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wheat.yaml")
	yml := `crop: wheat
order: [P, N]
ranges:
  N: {unit: kg/ha, low: 40, optimal: 60, high: 80}
  P: {unit: mg/kg, low: 15, optimal: 20, high: 40}
  S: {unit: mg/kg, low: 5, high: 20}
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Crop != "wheat" {
		t.Fatalf("crop: %q", tbl.Crop)
	}
	if got := tbl.Order; len(got) != 3 || got[0] != "P" || got[1] != "N" || got[2] != "S" {
		t.Fatalf("order: %v", got)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("ranges:\n  N: {low: 9, high: 1}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected inverted band to fail")
	}
}
