package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/soilviz-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set soilviz configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "top_n: %d\n", cfg.TopN)
		fmt.Fprintf(out, "metric_decimals: %d\n", cfg.MetricDecimals)
		fmt.Fprintf(out, "default_format: %s\n", cfg.DefaultFormat)
		fmt.Fprintf(out, "default_charts: %s\n", strings.Join(cfg.DefaultCharts, ","))
		fmt.Fprintf(out, "batch_jobs: %d\n", cfg.BatchJobs)
		if cfg.ReferenceFile != "" {
			fmt.Fprintf(out, "reference_file: %s\n", cfg.ReferenceFile)
		}
		fmt.Fprintf(out, "normalize_diseases: %t\n", cfg.NormalizeDiseases)
		p := cfg.Palette
		for _, kv := range [][2]string{
			{"deficient", p.Deficient}, {"optimal", p.Optimal}, {"excessive", p.Excessive},
			{"low_line", p.LowLine}, {"high_line", p.HighLine}, {"probability", p.Probability},
		} {
			if kv[1] != "" {
				fmt.Fprintf(out, "palette.%s: %s\n", kv[0], kv[1])
			}
		}
		if len(p.Water) > 0 {
			fmt.Fprintf(out, "palette.water: %s\n", strings.Join(p.Water, ","))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "top_n":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for top_n: %w", err)
			}
			next.TopN = i
		case "metric_decimals":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for metric_decimals: %w", err)
			}
			next.MetricDecimals = i
		case "default_format":
			next.DefaultFormat = strings.ToLower(val)
		case "default_charts":
			next.DefaultCharts = splitList(strings.ToLower(val))
		case "batch_jobs":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for batch_jobs: %w", err)
			}
			next.BatchJobs = i
		case "reference_file":
			next.ReferenceFile = val
		case "normalize_diseases":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for normalize_diseases: %w", err)
			}
			next.NormalizeDiseases = b
		case "palette.deficient":
			next.Palette.Deficient = val
		case "palette.optimal":
			next.Palette.Optimal = val
		case "palette.excessive":
			next.Palette.Excessive = val
		case "palette.low_line":
			next.Palette.LowLine = val
		case "palette.high_line":
			next.Palette.HighLine = val
		case "palette.probability":
			next.Palette.Probability = val
		case "palette.water":
			next.Palette.Water = splitList(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
