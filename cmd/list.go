package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/shoptrends-cli/internal/manifest"
)

var (
	listRuns      bool
	listArtifacts bool
	listRunDir    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List previous runs or the artifacts of one run",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listRuns == listArtifacts { // either both true or both false
			return fmt.Errorf("specify exactly one of --runs or --artifacts")
		}
		c, err := requireConfig()
		if err != nil {
			return err
		}
		dir := listRunDir
		if dir == "" {
			dir = c.OutputDir
		}
		if listRuns {
			return listAllRuns(cmd, dir)
		}
		m, err := manifest.Load(dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(m.Artifacts) == 0 {
			fmt.Fprintln(out, "(no artifacts)")
			return nil
		}
		for _, a := range m.Artifacts {
			if a.Question != 0 {
				fmt.Fprintf(out, "- %s: %s (%s)\n", a.Kind, a.Path, a.Question)
				continue
			}
			fmt.Fprintf(out, "- %s: %s\n", a.Kind, a.Path)
		}
		return nil
	},
}

// listAllRuns prints the run in root and any batch runs one level below it.
func listAllRuns(cmd *cobra.Command, root string) error {
	out := cmd.OutOrStdout()
	found := false
	show := func(dir string) {
		m, err := manifest.Load(dir)
		if err != nil {
			return
		}
		fmt.Fprintf(out, "- %s: %s, %d rows, %d artifacts, %d skipped (%s)\n",
			dir, m.Input, m.Rows, len(m.Artifacts), len(m.Skipped), m.FinishedAt.Format("2006-01-02 15:04:05"))
		found = true
	}
	show(root)
	entries, err := os.ReadDir(root)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			show(filepath.Join(root, e.Name()))
		}
	}
	if !found {
		fmt.Fprintln(out, "(no runs)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listRuns, "runs", false, "list runs under the output directory")
	listCmd.Flags().BoolVar(&listArtifacts, "artifacts", false, "list artifacts recorded in a run's manifest")
	listCmd.Flags().StringVarP(&listRunDir, "dir", "d", "", "output directory to inspect (default: output_dir)")
}
