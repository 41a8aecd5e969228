package analysis

import (
	"archive/zip"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/soilviz-cli/internal/chart"
	"github.com/KaramelBytes/soilviz-cli/internal/reference"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// writeXLSX builds a minimal workbook with inline-string and numeric cells.
// Relationship targets use a leading slash for the second sheet.
func writeXLSX(t *testing.T, dir, name string, sheets map[string][][]string, order []string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	put := func(n, body string) {
		w, err := zw.Create(n)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	var wb, rels strings.Builder
	wb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets>`)
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i, sn := range order {
		id := i + 1
		wb.WriteString(fmt.Sprintf(`<sheet name="%s" sheetId="%d" r:id="rId%d"/>`, sn, id, id))
		target := fmt.Sprintf("worksheets/sheet%d.xml", id)
		if id == 2 {
			target = "/xl/" + target
		}
		rels.WriteString(fmt.Sprintf(`<Relationship Id="rId%d" Type="worksheet" Target="%s"/>`, id, target))

		var sb strings.Builder
		sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)
		for r, row := range sheets[sn] {
			sb.WriteString(fmt.Sprintf(`<row r="%d">`, r+1))
			for c, v := range row {
				if v == "" {
					continue
				}
				ref := fmt.Sprintf("%c%d", 'A'+c, r+1)
				if _, ok := parseNumeric(v, TableOptions{}); ok && !strings.HasSuffix(v, "%") {
					sb.WriteString(fmt.Sprintf(`<c r="%s"><v>%s</v></c>`, ref, v))
				} else {
					sb.WriteString(fmt.Sprintf(`<c r="%s" t="inlineStr"><is><t>%s</t></is></c>`, ref, v))
				}
			}
			sb.WriteString(`</row>`)
		}
		sb.WriteString(`</sheetData></worksheet>`)
		put(fmt.Sprintf("xl/worksheets/sheet%d.xml", id), sb.String())
	}
	wb.WriteString(`</sheets></workbook>`)
	rels.WriteString(`</Relationships>`)
	put("xl/workbook.xml", wb.String())
	put("xl/_rels/workbook.xml.rels", rels.String())
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadMetricsCSVWithBands(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "soil.csv", strings.Join([]string{
		"Name,Value,Unit,Low,High",
		"N,30,kg/ha,40,80",
		"P,25,kg/ha,15,30",
		",9,,1,2",
		"K,100,kg/ha,20,60",
	}, "\n"))

	s, warns, err := LoadMetrics(p, DefaultTableOptions(), nil)
	if err != nil {
		t.Fatalf("LoadMetrics: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 metrics, got %d", s.Len())
	}
	classes := chart.ClassifySeries(s)
	want := []chart.Classification{chart.Deficient, chart.Optimal, chart.Excessive}
	for i := range want {
		if classes[i] != want[i] {
			t.Fatalf("class[%d]: got %v, want %v", i, classes[i], want[i])
		}
	}
	if len(warns) != 1 || !strings.Contains(warns[0], "row 4") {
		t.Fatalf("expected blank-name warning for row 4, got %v", warns)
	}
}

func TestLoadMetricsReferenceFallbackAndUnits(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "soil.tsv", "Nutrient\tValue (ppm)\nN\t30\nK\t0,3\n")
	opt := DefaultTableOptions()
	opt.Delimiter = '\t'
	s, _, err := LoadMetrics(p, opt, reference.Rice())
	if err != nil {
		t.Fatalf("LoadMetrics: %v", err)
	}
	if s.Units[0] != "mg/kg" {
		t.Fatalf("ppm should normalize to mg/kg, got %q", s.Units[0])
	}
	if s.RangeLow[0] != 20 || s.RangeHigh[0] != 60 {
		t.Fatalf("N band from reference: %v..%v", s.RangeLow[0], s.RangeHigh[0])
	}
	if math.Abs(s.Values[1]-0.3) > 1e-12 {
		t.Fatalf("decimal comma: got %v", s.Values[1])
	}

	bad := writeFile(t, dir, "bad.csv", "Name,Value\nZn,3\n")
	_, _, err = LoadMetrics(bad, DefaultTableOptions(), reference.Rice())
	var ve *chart.ValidationError
	if !errors.As(err, &ve) || ve.Field != "rows[2].range" {
		t.Fatalf("expected rows[2].range validation error, got %v", err)
	}
}

func TestLoadMetricsErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]struct {
		body  string
		field string
	}{
		"missing columns": {"Foo,Bar\n1,2\n", "header"},
		"bad value":       {"Name,Value,Low,High\nN,abc,1,2\n", "rows[2].value"},
		"inverted band":   {"Name,Value,Low,High\nN,1,5,2\n", "range_low[0]"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			p := writeFile(t, dir, strings.ReplaceAll(name, " ", "_")+".csv", c.body)
			_, _, err := LoadMetrics(p, DefaultTableOptions(), nil)
			var ve *chart.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != c.field {
				t.Fatalf("field: got %q, want %q", ve.Field, c.field)
			}
		})
	}
}

func TestLoadProbabilitiesPercentAndNormalize(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "pred.csv", "Disease,Probability\nblast,60%\nbrown_spot,20%\nhealthy,20%\n")
	set, _, err := LoadProbabilities(p, DefaultTableOptions(), false)
	if err != nil {
		t.Fatalf("LoadProbabilities: %v", err)
	}
	top := chart.SelectTopN(set, 1)
	if top[0].Label != "blast" || math.Abs(top[0].Probability-0.6) > 1e-12 {
		t.Fatalf("top: %+v", top)
	}

	raw := writeFile(t, dir, "raw.csv", "Label,Score\na,0.2\nb,0.6\n")
	set, _, err = LoadProbabilities(raw, DefaultTableOptions(), true)
	if err != nil {
		t.Fatalf("LoadProbabilities normalize: %v", err)
	}
	items := set.Items()
	if items[0].Label != "a" || math.Abs(items[0].Probability-0.25) > 1e-12 {
		t.Fatalf("normalized: %+v", items)
	}

	over := writeFile(t, dir, "over.csv", "Label,Probability\na,1.5\n")
	if _, _, err := LoadProbabilities(over, DefaultTableOptions(), false); err == nil {
		t.Fatalf("expected out-of-range probability to fail")
	}
}

func TestLoadProbabilitiesNormalizeKeepsRangeCheck(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "scores.csv", "Label,Probability\nblast,3\nbrown_spot,1\n")
	_, _, err := LoadProbabilities(p, DefaultTableOptions(), true)
	var ve *chart.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for probability above 1, got %v", err)
	}
	if ve.Field != "probabilities[0]" {
		t.Fatalf("field: %q", ve.Field)
	}
}

func TestReadTableMaxRowsWarning(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "many.csv", "Name,Value\na,1\nb,2\nc,3\n\n")
	opt := DefaultTableOptions()
	opt.MaxRows = 2
	tbl, err := ReadTable(p, opt)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 2 || tbl.Total != 3 {
		t.Fatalf("rows=%d total=%d", len(tbl.Rows), tbl.Total)
	}
	if len(tbl.Warnings) != 1 || tbl.Warnings[0] != "processed only 2/3 rows due to MaxRows" {
		t.Fatalf("warnings: %v", tbl.Warnings)
	}
	if _, err := ReadTable(filepath.Join(dir, "x.parquet"), opt); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestLoadMetricsXLSXSheetSelection(t *testing.T) {
	dir := t.TempDir()
	p := writeXLSX(t, dir, "lab.xlsx", map[string][][]string{
		"Notes": {{"Comment"}, {"ignore me"}},
		"Soil": {
			{"Name", "Value", "Unit", "Low", "High"},
			{"N", "30", "kg/ha", "40", "80"},
			{"Mg", "", "", "", ""},
			{"P", "20", "kg/ha", "15", "30"},
		},
	}, []string{"Notes", "Soil"})

	opt := DefaultTableOptions()
	opt.SheetName = "soil"
	tbl, err := ReadTable(p, opt)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(tbl.Rows) != 3 || len(tbl.Rows[1]) != 5 {
		t.Fatalf("rows: %v", tbl.Rows)
	}

	opt.SheetName = ""
	opt.SheetIndex = 2
	bad := DefaultTableOptions()
	bad.SheetName = "Missing"
	if _, err := ReadTable(p, bad); err == nil || !strings.Contains(err.Error(), "Available sheets: Notes, Soil") {
		t.Fatalf("expected sheet-not-found error listing sheets, got %v", err)
	}

	tbl, err = ReadTable(p, opt)
	if err != nil {
		t.Fatalf("ReadTable by index: %v", err)
	}
	tbl.Rows = append(tbl.Rows[:1], tbl.Rows[2:]...)
	s, _, err := MetricsFromTable(tbl, opt, nil)
	if err != nil {
		t.Fatalf("MetricsFromTable: %v", err)
	}
	if got := s.Names; len(got) != 2 || got[0] != "N" || got[1] != "P" {
		t.Fatalf("names: %v", got)
	}
}

func TestParseNumericLocales(t *testing.T) {
	cases := []struct {
		in   string
		opt  TableOptions
		want float64
		ok   bool
	}{
		{"1.000,5", TableOptions{}, 1000.5, true},
		{"1,000.5", TableOptions{}, 1000.5, true},
		{"0,25", TableOptions{}, 0.25, true},
		{"45%", TableOptions{}, 45, true},
		{"1 200", TableOptions{DecimalSeparator: '.', ThousandsSeparator: ' '}, 1200, true},
		{"2e-3", TableOptions{}, 0.002, true},
		{"n/a", TableOptions{}, 0, false},
		{"", TableOptions{}, 0, false},
	}
	for _, c := range cases {
		got, ok := parseNumeric(c.in, c.opt)
		if ok != c.ok || math.Abs(got-c.want) > 1e-12 {
			t.Errorf("parseNumeric(%q) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestSplitUnits(t *testing.T) {
	cases := map[string][2]string{
		"Value (mg/kg)": {"Value", "mg/kg"},
		"EC [dS/m]":     {"EC", "dS/m"},
		"OM_%":          {"OM", "%"},
		"Rainfall mm":   {"Rainfall", "mm"},
		"Name":          {"Name", ""},
	}
	for in, want := range cases {
		c, u := splitUnits(in)
		if c != want[0] || u != want[1] {
			t.Errorf("splitUnits(%q) = %q,%q want %q,%q", in, c, u, want[0], want[1])
		}
	}
}
