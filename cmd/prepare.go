package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/soilviz-cli/internal/analysis"
	"github.com/KaramelBytes/soilviz-cli/internal/chart"
	"github.com/KaramelBytes/soilviz-cli/internal/chartjs"
	cfgpkg "github.com/KaramelBytes/soilviz-cli/internal/config"
	"github.com/KaramelBytes/soilviz-cli/internal/recommend"
	"github.com/KaramelBytes/soilviz-cli/internal/reference"
	"github.com/KaramelBytes/soilviz-cli/internal/report"
	"github.com/KaramelBytes/soilviz-cli/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// prepareFlags are shared by prepare and prepare-batch.
type prepareFlags struct {
	charts    []string
	format    string
	topN      int
	decimals  int
	diseases  string
	water     string
	strict    bool
	refFile   string
	normalize bool
	table     tableFlags
}

func (pf *prepareFlags) register(fs *pflag.FlagSet) {
	fs.StringSliceVar(&pf.charts, "charts", nil, "charts to prepare: nutrient,water,disease|all (default from config)")
	fs.StringVarP(&pf.format, "format", "f", "", "output format: json|chartjs|markdown (default from config)")
	fs.IntVar(&pf.topN, "top-n", 0, "number of diseases kept in the ranked chart (default from config)")
	fs.IntVar(&pf.decimals, "decimals", 2, "tooltip precision for nutrient values (-1 = full precision)")
	fs.StringVar(&pf.diseases, "diseases", "", "Label,Probability table to use for the disease chart")
	fs.StringVar(&pf.water, "water", "", "water budget as need,rain,irrigation in mm")
	fs.BoolVar(&pf.strict, "strict", false, "fail when no chart could be prepared")
	fs.StringVar(&pf.refFile, "reference", "", "YAML reference table (default: built-in rice ranges)")
	fs.BoolVar(&pf.normalize, "normalize", false, "rescale disease probabilities to sum to 1")
	pf.table.register(fs)
}

// prepareSettings is the resolved form of prepareFlags plus config.
type prepareSettings struct {
	targets   chart.Targets
	format    string
	chartOpts chart.Options
	table     analysis.TableOptions
	ref       *reference.Table
	normalize bool
	diseases  string
	water     *chart.WaterBudget
}

func (pf *prepareFlags) settings(fs *pflag.FlagSet) (prepareSettings, error) {
	c := cfg
	if c == nil {
		c = cfgpkg.Default()
	}
	var s prepareSettings
	var err error
	if s.chartOpts, err = c.ChartOptions(); err != nil {
		return s, err
	}
	if fs.Changed("top-n") {
		if pf.topN < 1 {
			return s, fmt.Errorf("invalid --top-n: %d (must be >= 1)", pf.topN)
		}
		s.chartOpts.TopN = pf.topN
	}
	if fs.Changed("decimals") {
		s.chartOpts.MetricDecimals = pf.decimals
	}
	s.chartOpts.Strict = pf.strict

	s.targets = c.Targets()
	if fs.Changed("charts") {
		s.targets = cfgpkg.ParseTargets(pf.charts)
		if s.targets == (chart.Targets{}) {
			return s, fmt.Errorf("invalid --charts: %s (use nutrient,water,disease or all)", strings.Join(pf.charts, ","))
		}
	}

	s.format = c.DefaultFormat
	if pf.format != "" {
		s.format = strings.ToLower(pf.format)
	}
	switch s.format {
	case "json", "chartjs", "markdown":
	case "md":
		s.format = "markdown"
	default:
		return s, fmt.Errorf("unsupported --format: %s (use json|chartjs|markdown)", pf.format)
	}

	if s.table, err = pf.table.options(); err != nil {
		return s, err
	}
	refPath := c.ReferenceFile
	if pf.refFile != "" {
		refPath = pf.refFile
	}
	if s.ref, err = reference.LoadOrDefault(refPath); err != nil {
		return s, err
	}
	s.normalize = pf.normalize || c.NormalizeDiseases
	s.diseases = pf.diseases
	if pf.water != "" {
		if s.water, err = parseWater(pf.water); err != nil {
			return s, err
		}
	}
	return s, nil
}

// parseWater reads "need,rain,irrigation".
func parseWater(v string) (*chart.WaterBudget, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid --water: %q (want need,rain,irrigation)", v)
	}
	var f [3]float64
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --water value %q: %w", p, err)
		}
		f[i] = x
	}
	w, err := chart.NewWaterBudget(f[0], f[1], f[2])
	if err != nil {
		return nil, fmt.Errorf("invalid --water: %w", err)
	}
	return &w, nil
}

// preparedResult is one input turned into a bundle and its report.
type preparedResult struct {
	Path   string
	Bundle *chart.Bundle
	Report *report.Report
}

// prepareInput loads a record or metric table and assembles its charts.
func prepareInput(ctx context.Context, path string, s prepareSettings) (*preparedResult, error) {
	var in chart.Input
	rep := &report.Report{Name: filepath.Base(path)}

	if analysis.IsRecordFile(path) {
		rec, err := analysis.LoadRecord(path)
		if err != nil {
			return nil, err
		}
		if s.normalize {
			rec.NormalizeDiseases = true
		}
		if in, err = rec.ToInput(s.ref); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if irr, ok := rec.Irrigation(); ok {
			adv := recommend.AdviseIrrigation(irr)
			rep.Irrigation = &irr
			rep.IrrigationAdvice = &adv
		}
		if rec.PH != nil {
			fert := recommend.AdviseFertilizer(s.ref, rec.Readings(), *rec.PH)
			rep.Fertilizer = &fert
		}
	} else {
		series, warnings, err := analysis.LoadMetrics(path, s.table, s.ref)
		if err != nil {
			return nil, err
		}
		in.Metrics = series
		rep.Notes = append(rep.Notes, warnings...)
	}

	if s.diseases != "" {
		set, warnings, err := analysis.LoadProbabilities(s.diseases, s.table, s.normalize)
		if err != nil {
			return nil, err
		}
		in.Probabilities = set
		rep.Notes = append(rep.Notes, warnings...)
	}
	if s.water != nil {
		in.Water = s.water
	}

	logger.Debug("assembling charts",
		zap.String("input", path),
		zap.Int("metrics", in.Metrics.Len()),
		zap.Bool("water", in.Water != nil),
		zap.Int("probabilities", in.Probabilities.Len()))

	b, err := chart.BuildConcurrent(ctx, in, s.targets, s.chartOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, note := range b.Skipped {
		logger.Debug("chart skipped", zap.String("input", path), zap.String("reason", note))
	}
	rep.Bundle = b
	return &preparedResult{Path: path, Bundle: b, Report: rep}, nil
}

// render serializes the result in the requested format.
func (r *preparedResult) render(format string) ([]byte, error) {
	switch format {
	case "chartjs":
		return utils.PrettyJSON(chartjs.FromBundle(r.Bundle))
	case "markdown":
		return []byte(r.Report.Markdown()), nil
	default:
		return utils.PrettyJSON(r.Bundle)
	}
}

func formatExt(format string) string {
	switch format {
	case "markdown":
		return "md"
	case "chartjs":
		return "chartjs.json"
	default:
		return "json"
	}
}

var (
	prepFlags      prepareFlags
	prepOutputPath string
)

var prepareCmd = &cobra.Command{
	Use:   "prepare <record.yaml|record.json|metrics.csv|metrics.xlsx>",
	Short: "Prepare chart datasets from one analysis result",
	Long: `Prepare builds the nutrient, water and disease chart datasets for one
analysis result. The input is either an analysis record (YAML/JSON) or a
metric table with Name,Value[,Unit][,Low,High] columns; missing bands are
taken from the reference table.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := prepFlags.settings(cmd.Flags())
		if err != nil {
			return err
		}
		res, err := prepareInput(cmd.Context(), args[0], s)
		if err != nil {
			return err
		}
		out, err := res.render(s.format)
		if err != nil {
			return err
		}
		if prepOutputPath != "" {
			if dir := filepath.Dir(prepOutputPath); dir != "." {
				if err := utils.EnsureDir(dir); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
			}
			if err := utils.SafeWriteFile(prepOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s charts to %s\n", s.format, prepOutputPath)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}
		for _, note := range res.Bundle.Skipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Skipped %s\n", note)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
	prepFlags.register(prepareCmd.Flags())
	prepareCmd.Flags().StringVarP(&prepOutputPath, "output", "o", "", "optional path to write the result")
}
