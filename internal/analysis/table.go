package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// TableOptions controls how tabular inputs are read.
type TableOptions struct {
	// Delimiter for CSV. If 0, inferred from the file extension.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, strip common separators (',' '.' space)
	// SheetName selects an XLSX sheet by name; SheetIndex is 1-based and used when the name is empty.
	SheetName  string
	SheetIndex int
	// MaxRows limits data rows kept; 0 means unlimited.
	MaxRows int
	// Unit normalization: convert values to target units using simple mappings.
	UnitNormalize bool
	UnitTargets   map[string]string // map[fromUnit]toUnit, e.g. {"ppm":"mg/kg", "g/kg":"mg/kg"}
}

// DefaultTableOptions returns reasonable defaults for soil tables.
func DefaultTableOptions() TableOptions {
	return TableOptions{
		MaxRows:       10000,
		UnitNormalize: true,
		UnitTargets: map[string]string{
			"ppm":   "mg/kg",
			"g/kg":  "mg/kg",
			"mS/cm": "dS/m",
		},
	}
}

// Table is a header plus string rows read from CSV, TSV or XLSX.
type Table struct {
	Name     string
	Header   []string
	Rows     [][]string
	Total    int
	Warnings []string

	cols  []string
	units []string
}

// ReadTable loads path, picking the reader by extension.
func ReadTable(path string, opt TableOptions) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path, opt)
	case ".csv", ".tsv", ".txt":
		return readCSV(path, opt)
	default:
		return nil, fmt.Errorf("unsupported table format: %s", filepath.Ext(path))
	}
}

func readCSV(path string, opt TableOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	t := &Table{Name: filepath.Base(path)}
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t.setHeader(header)
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", t.Total+1, err)
		}
		t.add(rec, opt)
	}
	t.finish()
	return t, nil
}

func (t *Table) setHeader(header []string) {
	t.Header = append([]string(nil), header...)
	t.cols = make([]string, len(header))
	t.units = make([]string, len(header))
	for i, h := range header {
		t.cols[i], t.units[i] = splitUnits(strings.TrimPrefix(strings.TrimSpace(h), "\ufeff"))
	}
}

func (t *Table) add(rec []string, opt TableOptions) {
	t.Total++
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	if len(t.Rows) >= maxRows {
		return
	}
	row := make([]string, len(t.Header))
	copy(row, rec)
	blank := true
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
		if row[i] != "" {
			blank = false
		}
	}
	if blank {
		t.Total--
		return
	}
	t.Rows = append(t.Rows, row)
}

func (t *Table) finish() {
	if len(t.Rows) < t.Total {
		t.Warnings = append(t.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", len(t.Rows), t.Total))
	}
}

// Column returns the index of the first header whose name (without unit)
// matches one of names, case-insensitively, or -1.
func (t *Table) Column(names ...string) int {
	for _, n := range names {
		for i, c := range t.cols {
			if strings.EqualFold(c, n) {
				return i
			}
		}
	}
	return -1
}

// Unit returns the unit parsed from column i's header, e.g. "mg/kg" for "Value (mg/kg)".
func (t *Table) Unit(i int) string {
	if i < 0 || i >= len(t.units) {
		return ""
	}
	return t.units[i]
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func parseNumeric(s string, opt TableOptions) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normalizeUnit converts x to the configured target unit for unit.
func normalizeUnit(x float64, unit string, opt TableOptions) (float64, string, bool) {
	if !opt.UnitNormalize || opt.UnitTargets == nil {
		return x, unit, false
	}
	target, ok := opt.UnitTargets[unit]
	if !ok {
		return x, unit, false
	}
	switch unit + ">" + target {
	case "ppm>mg/kg", "mS/cm>dS/m":
		return x, target, true
	case "g/kg>mg/kg":
		return x * 1000, target, true
	case "mg/kg>g/kg":
		return x / 1000, target, true
	default:
		return x, unit, false
	}
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Value (mg/kg)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Value [dS/m]
	{regexp.MustCompile(`^(.*?)[_\s-]+(mg/kg|g/kg|kg/ha|dS/m|mS/cm|ppm|mm|%)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
