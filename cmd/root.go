package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/soilviz-cli/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration; falls back to defaults when the file is unusable.
	cfg *cfgpkg.Global

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "soilviz",
	Short: "soilviz: prepare soil and plant analysis results for charting",
	Long: `soilviz turns soil analysis records, nutrient tables and disease
probability lists into chart-ready datasets: nutrient bars classified
against optimal ranges, a water budget, and a ranked disease chart.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(debug)
		if err != nil {
			return err
		}
		logger = l
		loadConfig()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.soilviz/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands still run on built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = cfgpkg.Default()
		return
	}
	cfg = c
	logger.Debug("config loaded",
		zap.String("file", cfgFile),
		zap.Int("top_n", cfg.TopN),
		zap.String("default_format", cfg.DefaultFormat),
		zap.Strings("default_charts", cfg.DefaultCharts))
}
