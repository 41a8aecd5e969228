package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/soilviz-cli/internal/analysis"
	"github.com/spf13/pflag"
)

// tableFlags are the CSV/XLSX reading flags shared by every command that
// accepts a table.
type tableFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	sheetName  string
	sheetIndex int
	maxRows    int
	rawUnits   bool
}

func (tf *tableFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&tf.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	fs.StringVar(&tf.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	fs.StringVar(&tf.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	fs.StringVar(&tf.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	fs.IntVar(&tf.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fs.IntVar(&tf.maxRows, "max-rows", 10000, "maximum rows to process (0 = unlimited)")
	fs.BoolVar(&tf.rawUnits, "raw-units", false, "keep units as written (no ppm/g/kg/mS/cm normalization)")
}

// options converts the flags into analysis.TableOptions.
func (tf *tableFlags) options() (analysis.TableOptions, error) {
	opt := analysis.DefaultTableOptions()
	opt.MaxRows = tf.maxRows
	opt.SheetName = tf.sheetName
	opt.SheetIndex = tf.sheetIndex
	opt.UnitNormalize = !tf.rawUnits
	switch tf.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", tf.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(tf.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", tf.decimal)
	}
	switch strings.ToLower(tf.thousands) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", tf.thousands)
	}
	return opt, nil
}
