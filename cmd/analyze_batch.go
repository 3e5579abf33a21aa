package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/shoptrends-cli/internal/utils"
)

var abQuiet bool

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze several datasets, one output subdirectory per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		c, err := effectiveConfig(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		used := map[string]int{}
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			stem := utils.FileStem(path)
			dirName := stem
			if n := used[stem]; n > 0 {
				dirName = fmt.Sprintf("%s__%d", stem, n+1)
				if !abQuiet {
					fmt.Fprintf(out, "⚠ Output name %s already used in this batch, writing to %s\n", stem, dirName)
				}
			}
			used[stem]++

			fc := *c
			fc.InputPath = path
			m, err := runAnalysis(cmd.Context(), path, filepath.Join(c.OutputDir, dirName), &fc)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if !abQuiet {
				printSummary(cmd, m)
			}
		}
		log.Info().Int("files", total).Str("output_dir", c.OutputDir).Msg("batch complete")
		return nil
	},
}

// expandInputs glob-expands args, keeps literal paths that exist, dedups and sorts.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	addAnalysisFlags(analyzeBatchCmd)
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
