package cmd

import (
	"fmt"

	"github.com/KaramelBytes/soilviz-cli/internal/analysis"
	"github.com/KaramelBytes/soilviz-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/soilviz-cli/internal/config"
	"github.com/KaramelBytes/soilviz-cli/internal/recommend"
	"github.com/KaramelBytes/soilviz-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	rankTopN      int
	rankNormalize bool
	rankJSON      bool
	rankTable     tableFlags
)

// rankRow is one ranked disease with its display encoding.
type rankRow struct {
	Rank        int     `json:"rank"`
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
	Opacity     float64 `json:"opacity"`
	Fill        string  `json:"fill"`
	Border      string  `json:"border"`
	Tooltip     string  `json:"tooltip"`
	Severity    string  `json:"severity,omitempty"`
}

var rankCmd = &cobra.Command{
	Use:   "rank <probabilities.csv|probabilities.xlsx>",
	Short: "Rank disease probabilities and show their bar encoding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cfg
		if c == nil {
			c = cfgpkg.Default()
		}
		opts, err := c.ChartOptions()
		if err != nil {
			return err
		}
		n := opts.TopN
		if cmd.Flags().Changed("top-n") {
			if rankTopN < 1 {
				return fmt.Errorf("invalid --top-n: %d (must be >= 1)", rankTopN)
			}
			n = rankTopN
		}
		topt, err := rankTable.options()
		if err != nil {
			return err
		}
		set, warnings, err := analysis.LoadProbabilities(args[0], topt, rankNormalize || c.NormalizeDiseases)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", w)
		}

		top := chart.SelectTopN(set, n)
		rows := make([]rankRow, len(top))
		for i, it := range top {
			fill := opts.Palette.ProbabilityFill(it.Probability)
			rows[i] = rankRow{
				Rank:        i + 1,
				Label:       it.Label,
				Probability: it.Probability,
				Opacity:     chart.Opacity(it.Probability),
				Fill:        fill.String(),
				Border:      chart.BorderFromFill(fill).RGB(),
				Tooltip:     chart.FormatProbability(it.Probability),
			}
			if info, ok := recommend.LookupDisease(it.Label); ok {
				rows[i].Severity = info.Severity
			}
		}

		out := cmd.OutOrStdout()
		if rankJSON {
			b, err := utils.PrettyJSON(rows)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "Top %d of %d\n", len(rows), set.Len())
		for _, r := range rows {
			fmt.Fprintf(out, "%d. %s  %s  fill %s  border %s", r.Rank, r.Label, r.Tooltip, r.Fill, r.Border)
			if r.Severity != "" {
				fmt.Fprintf(out, "  severity %s", r.Severity)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().IntVar(&rankTopN, "top-n", chart.DefaultTopN, "number of items to keep")
	rankCmd.Flags().BoolVar(&rankNormalize, "normalize", false, "rescale probabilities to sum to 1")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "print JSON instead of text")
	rankTable.register(rankCmd.Flags())
}
