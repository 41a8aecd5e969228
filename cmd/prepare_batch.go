package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/soilviz-cli/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	pbFlags  prepareFlags
	pbOutDir string
	pbJobs   int
	pbQuiet  bool
)

var prepareBatchCmd = &cobra.Command{
	Use:   "prepare-batch <files...>",
	Short: "Prepare chart datasets for many inputs concurrently",
	Long: `Prepare-batch runs prepare over every file matched by the given paths
or globs. Files are processed concurrently (--jobs) and written to --out-dir
in sorted input order; inputs sharing a base name get a __N suffix.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := utils.ExpandInputs(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		s, err := pbFlags.settings(cmd.Flags())
		if err != nil {
			return err
		}
		jobs := pbJobs
		if jobs <= 0 && cfg != nil {
			jobs = cfg.BatchJobs
		}
		if jobs <= 0 {
			jobs = 1
		}
		if err := utils.EnsureDir(pbOutDir); err != nil {
			return fmt.Errorf("create out dir: %w", err)
		}

		outputs := make([][]byte, len(files))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(jobs)
		for i, f := range files {
			i, f := i, f
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				res, err := prepareInput(ctx, f, s)
				if err != nil {
					return err
				}
				out, err := res.render(s.format)
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				outputs[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		total := len(files)
		used := map[string]int{}
		for i, f := range files {
			if !pbQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(f))
			}
			name := uniqueName(used, utils.OutputName(f, formatExt(s.format)))
			dst := filepath.Join(pbOutDir, name)
			if err := utils.SafeWriteFile(dst, outputs[i]); err != nil {
				return fmt.Errorf("write %s: %w", dst, err)
			}
			logger.Debug("batch output written", zap.String("input", f), zap.String("output", dst))
			if !pbQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", dst)
			}
		}
		if !pbQuiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Prepared %d file(s) into %s\n", total, pbOutDir)
		}
		return nil
	},
}

// uniqueName appends __2, __3, ... to names already handed out.
func uniqueName(used map[string]int, name string) string {
	used[name]++
	n := used[name]
	if n == 1 {
		return name
	}
	stem, ext, _ := strings.Cut(name, ".")
	return fmt.Sprintf("%s__%d.%s", stem, n, ext)
}

func init() {
	rootCmd.AddCommand(prepareBatchCmd)
	pbFlags.register(prepareBatchCmd.Flags())
	prepareBatchCmd.Flags().StringVar(&pbOutDir, "out-dir", "soilviz-out", "directory for prepared outputs")
	prepareBatchCmd.Flags().IntVarP(&pbJobs, "jobs", "j", 0, "parallel workers (default from config batch_jobs)")
	prepareBatchCmd.Flags().BoolVar(&pbQuiet, "quiet", false, "suppress progress output")
}
