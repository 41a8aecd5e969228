package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/soilviz-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/soilviz-cli/internal/config"
	"github.com/KaramelBytes/soilviz-cli/internal/recommend"
	"github.com/KaramelBytes/soilviz-cli/internal/reference"
	"github.com/KaramelBytes/soilviz-cli/internal/report"
	"github.com/KaramelBytes/soilviz-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	recJSON    bool
	recRefFile string
)

// adviceOutput is the JSON shape of the recommend command.
type adviceOutput struct {
	ID               string                           `json:"id"`
	Fertilizer       *recommend.FertilizerAdvice      `json:"fertilizer,omitempty"`
	Irrigation       *recommend.Irrigation            `json:"irrigation,omitempty"`
	IrrigationAdvice *recommend.IrrigationAdvice      `json:"irrigation_advice,omitempty"`
	Diseases         map[string]recommend.DiseaseInfo `json:"diseases,omitempty"`
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <record.yaml|record.json>",
	Short: "Print fertilizer and irrigation advice for an analysis record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cfg
		if c == nil {
			c = cfgpkg.Default()
		}
		refPath := c.ReferenceFile
		if recRefFile != "" {
			refPath = recRefFile
		}
		tbl, err := reference.LoadOrDefault(refPath)
		if err != nil {
			return err
		}
		rec, err := analysis.LoadRecord(args[0])
		if err != nil {
			return err
		}

		res := adviceOutput{ID: rec.ID}
		if rec.PH != nil {
			fert := recommend.AdviseFertilizer(tbl, rec.Readings(), *rec.PH)
			res.Fertilizer = &fert
		}
		if irr, ok := rec.Irrigation(); ok {
			adv := recommend.AdviseIrrigation(irr)
			res.Irrigation = &irr
			res.IrrigationAdvice = &adv
		}
		if len(rec.Diseases) > 0 {
			res.Diseases = make(map[string]recommend.DiseaseInfo, len(rec.Diseases))
			for name := range rec.Diseases {
				if info, ok := recommend.LookupDisease(name); ok {
					res.Diseases[name] = info
				}
			}
		}
		if res.Fertilizer == nil && res.IrrigationAdvice == nil {
			return fmt.Errorf("%s: record has neither ph nor climate; nothing to advise", filepath.Base(args[0]))
		}

		out := cmd.OutOrStdout()
		if recJSON {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		rep := &report.Report{
			Name:             filepath.Base(args[0]),
			Irrigation:       res.Irrigation,
			IrrigationAdvice: res.IrrigationAdvice,
			Fertilizer:       res.Fertilizer,
		}
		fmt.Fprint(out, rep.Markdown())
		if res.Fertilizer != nil && len(res.Fertilizer.Grades) > 0 {
			fmt.Fprintln(out, "\n[NUTRIENT STATUS]")
			for _, rd := range rec.Readings() {
				g, ok := res.Fertilizer.Grades[rd.Name]
				if !ok {
					continue
				}
				fmt.Fprintf(out, "- %s: %s %s\n", rd.Name, g.Label(), reference.StatusColor(g))
			}
		}
		if len(res.Diseases) > 0 {
			fmt.Fprintln(out, "\n[DISEASE MANAGEMENT]")
			names := make([]string, 0, len(res.Diseases))
			for name := range res.Diseases {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				info := res.Diseases[name]
				fmt.Fprintf(out, "- %s (%s): %s\n", strings.ReplaceAll(name, "_", " "), info.Severity, info.Management)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "print JSON instead of Markdown")
	recommendCmd.Flags().StringVar(&recRefFile, "reference", "", "YAML reference table (default: built-in rice ranges)")
}
