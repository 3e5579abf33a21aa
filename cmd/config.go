package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/shoptrends-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set shoptrends configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "input_path: %s\n", cfg.InputPath)
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "figures_dir: %s\n", cfg.FiguresDir)
		fmt.Fprintf(out, "report_name: %s\n", cfg.ReportName)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", cfg.SheetName)
		}
		if cfg.MaxRows > 0 {
			fmt.Fprintf(out, "max_rows: %d\n", cfg.MaxRows)
		}
		fmt.Fprintf(out, "top_n: %d\n", cfg.TopN)
		fmt.Fprintf(out, "workers: %d\n", cfg.Workers)
		fmt.Fprintf(out, "charts: %t\n", cfg.Charts)
		if cfg.ExportFormat != "" {
			fmt.Fprintf(out, "export_format: %s\n", cfg.ExportFormat)
		}
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintln(out, "columns:")
		keys := make([]string, 0, len(cfg.Columns))
		for k := range cfg.Columns {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s: %s\n", k, cfg.Columns[k])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. Column headers are set with keys like columns.location.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := setKey(c, key, val); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setKey(c *cfgpkg.Global, key, val string) error {
	if col, ok := strings.CutPrefix(key, "columns."); ok {
		if _, known := cfgpkg.DefaultColumns()[col]; !known {
			return fmt.Errorf("unknown column key: %s", col)
		}
		if c.Columns == nil {
			c.Columns = cfgpkg.DefaultColumns()
		}
		c.Columns[col] = val
		return nil
	}
	switch key {
	case "input_path":
		c.InputPath = val
	case "output_dir":
		c.OutputDir = val
	case "figures_dir":
		c.FiguresDir = val
	case "report_name":
		c.ReportName = val
	case "delimiter":
		c.Delimiter = val
	case "sheet_name":
		c.SheetName = val
	case "max_rows", "top_n", "workers":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %w", key, err)
		}
		switch key {
		case "max_rows":
			c.MaxRows = i
		case "top_n":
			c.TopN = i
		default:
			c.Workers = i
		}
	case "charts":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for charts: %w", err)
		}
		c.Charts = b
	case "export_format":
		c.ExportFormat = strings.ToLower(val)
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		c.LogFormat = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
