package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/soilviz-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/soilviz-cli/internal/config"
	"github.com/KaramelBytes/soilviz-cli/internal/reference"
	"github.com/spf13/cobra"
)

var (
	clsLow      float64
	clsHigh     float64
	clsNutrient string
	clsUnit     string
	clsRefFile  string
	clsDecimals int
)

var classifyCmd = &cobra.Command{
	Use:   "classify <value>",
	Short: "Classify a value against an optimal range",
	Long: `Classify reports whether a value is Deficient, Optimal or Excessive and
the colors its bar would get. Give the band with --low/--high, or name a
nutrient from the reference table with --nutrient.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[0], err)
		}
		if err := chart.CheckFinite("value", v); err != nil {
			return err
		}
		c := cfg
		if c == nil {
			c = cfgpkg.Default()
		}
		opts, err := c.ChartOptions()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("decimals") {
			opts.MetricDecimals = clsDecimals
		}

		name, unit := "value", clsUnit
		var band chart.RangeBand
		var rng *reference.Range
		switch {
		case clsNutrient != "":
			refPath := c.ReferenceFile
			if clsRefFile != "" {
				refPath = clsRefFile
			}
			tbl, err := reference.LoadOrDefault(refPath)
			if err != nil {
				return err
			}
			r, ok := tbl.Lookup(clsNutrient)
			if !ok {
				return fmt.Errorf("no reference range for %s (crop %s)", clsNutrient, tbl.Crop)
			}
			rng = &r
			band = r.Band()
			name = clsNutrient
			if unit == "" {
				unit = r.Unit
			}
		case cmd.Flags().Changed("low") && cmd.Flags().Changed("high"):
			if band, err = chart.NewRangeBand(clsLow, clsHigh); err != nil {
				return err
			}
		default:
			return fmt.Errorf("give --low and --high, or --nutrient")
		}

		class := chart.Classify(v, band)
		fill := opts.Palette.ForClass(class)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s — %s (range %s..%s)\n", name, chart.FormatMetric(v, unit, opts.MetricDecimals), class,
			chart.FormatMetric(band.Low, "", -1), chart.FormatMetric(band.High, "", -1))
		fmt.Fprintf(out, "fill: %s\n", fill)
		fmt.Fprintf(out, "border: %s\n", chart.BorderFromFill(fill))
		if rng != nil {
			g := rng.Grade(v)
			fmt.Fprintf(out, "grade: %s %s\n", g.Label(), reference.StatusColor(g))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().Float64Var(&clsLow, "low", 0, "lower bound of the optimal range")
	classifyCmd.Flags().Float64Var(&clsHigh, "high", 0, "upper bound of the optimal range")
	classifyCmd.Flags().StringVarP(&clsNutrient, "nutrient", "n", "", "take the range from the reference table")
	classifyCmd.Flags().StringVar(&clsUnit, "unit", "", "unit printed with the value")
	classifyCmd.Flags().StringVar(&clsRefFile, "reference", "", "YAML reference table (default: built-in rice ranges)")
	classifyCmd.Flags().IntVar(&clsDecimals, "decimals", 2, "precision of the printed value (-1 = full precision)")
}
