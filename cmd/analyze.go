package cmd

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/shoptrends-cli/internal/analysis"
	"github.com/KaramelBytes/shoptrends-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/shoptrends-cli/internal/config"
	"github.com/KaramelBytes/shoptrends-cli/internal/dataset"
	"github.com/KaramelBytes/shoptrends-cli/internal/manifest"
	"github.com/KaramelBytes/shoptrends-cli/internal/report"
	"github.com/KaramelBytes/shoptrends-cli/internal/utils"
)

var (
	anaOutputDir string
	anaDelimiter string
	anaSheetName string
	anaTopN      int
	anaWorkers   int
	anaMaxRows   int
	anaNoCharts  bool
	anaExport    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a purchase dataset and write charts, report and manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			c.InputPath = args[0]
		}
		if strings.TrimSpace(c.InputPath) == "" {
			return fmt.Errorf("no input file: pass one as argument or set input_path")
		}
		m, err := runAnalysis(cmd.Context(), c.InputPath, c.OutputDir, c)
		if err != nil {
			return err
		}
		printSummary(cmd, m)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addAnalysisFlags(analyzeCmd)
}

// addAnalysisFlags registers the flags shared by analyze and analyze-batch.
func addAnalysisFlags(c *cobra.Command) {
	c.Flags().StringVarP(&anaOutputDir, "output-dir", "o", "", "directory for report, figures and manifest (overrides config)")
	c.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (default: by file extension)")
	c.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to analyze (default: first sheet)")
	c.Flags().IntVar(&anaTopN, "top-n", 0, "number of locations in the geographic ranking (overrides config)")
	c.Flags().IntVar(&anaWorkers, "workers", 0, "questions computed in parallel (overrides config)")
	c.Flags().IntVar(&anaMaxRows, "max-rows", 0, "maximum rows to process (0 = unlimited)")
	c.Flags().BoolVar(&anaNoCharts, "no-charts", false, "skip chart rendering")
	c.Flags().StringVar(&anaExport, "export", "", "also export results as json|yaml")
}

// effectiveConfig copies the loaded configuration, applies changed flags and validates the result.
func effectiveConfig(cmd *cobra.Command) (*cfgpkg.Global, error) {
	base, err := requireConfig()
	if err != nil {
		return nil, err
	}
	c := *base
	c.Columns = make(map[string]string, len(base.Columns))
	for k, v := range base.Columns {
		c.Columns[k] = v
	}

	f := cmd.Flags()
	if f.Changed("output-dir") {
		c.OutputDir = anaOutputDir
	}
	if f.Changed("delimiter") {
		c.Delimiter = anaDelimiter
	}
	if f.Changed("sheet-name") {
		c.SheetName = anaSheetName
	}
	if f.Changed("top-n") {
		c.TopN = anaTopN
	}
	if f.Changed("workers") {
		c.Workers = anaWorkers
	}
	if f.Changed("max-rows") {
		c.MaxRows = anaMaxRows
	}
	if f.Changed("no-charts") {
		c.Charts = !anaNoCharts
	}
	if f.Changed("export") {
		c.ExportFormat = strings.ToLower(anaExport)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func loaderOptions(c *cfgpkg.Global) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	switch c.Delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	case "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported delimiter: %s", c.Delimiter)
	}
	opt.SheetName = c.SheetName
	opt.MaxRows = c.MaxRows
	for k, h := range c.Columns {
		col := dataset.Column(k)
		if _, known := opt.Headers[col]; !known {
			return opt, fmt.Errorf("unknown column key in config: %s", k)
		}
		if strings.TrimSpace(h) != "" {
			opt.Headers[col] = h
		}
	}
	return opt, nil
}

// runAnalysis loads input, answers every question and writes all artifacts
// under outDir. Artifacts already written are left in place on error.
func runAnalysis(ctx context.Context, input, outDir string, c *cfgpkg.Global) (*manifest.Manifest, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	m := manifest.New(input, outDir)
	logger := log.With().Str("run_id", m.RunID).Str("input", input).Logger()

	opt, err := loaderOptions(c)
	if err != nil {
		return nil, err
	}
	tbl, err := dataset.Load(input, opt)
	if err != nil {
		return nil, err
	}
	for _, w := range tbl.Warnings() {
		logger.Warn().Msg(w)
	}
	logger.Info().Int("rows", tbl.Len()).Msg("dataset loaded")

	res, err := analysis.RunAll(logger.WithContext(ctx), tbl, analysis.Options{TopN: c.TopN, Workers: c.Workers})
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", input, err)
	}
	m.Record(res)

	if err := utils.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if c.Charts {
		paths, err := chart.Render(filepath.Join(outDir, c.FiguresDir), res)
		for i, p := range paths {
			m.AddArtifact(manifest.KindFigure, p, res.Bundles[i].Question)
		}
		if err != nil {
			return nil, fmt.Errorf("render charts: %w", err)
		}
		logger.Info().Int("figures", len(paths)).Msg("charts rendered")
	}

	var buf bytes.Buffer
	meta := report.Meta{RunID: m.RunID, Input: input, Generated: time.Now().UTC()}
	if err := report.WriteText(&buf, res, meta); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	reportPath := filepath.Join(outDir, c.ReportName)
	if err := utils.SafeWriteFile(reportPath, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	m.AddArtifact(manifest.KindReport, reportPath, 0)

	if c.ExportFormat != "" {
		buf.Reset()
		if err := report.Export(&buf, res, c.ExportFormat); err != nil {
			return nil, err
		}
		exportPath := filepath.Join(outDir, "analysis_results"+report.ExportExt(c.ExportFormat))
		if err := utils.SafeWriteFile(exportPath, buf.Bytes()); err != nil {
			return nil, fmt.Errorf("write export: %w", err)
		}
		m.AddArtifact(manifest.KindExport, exportPath, 0)
	}

	if err := m.Save(); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	logger.Info().Int("bundles", len(res.Bundles)).Int("skipped", len(res.Skipped)).Msg("run complete")
	return m, nil
}

func printSummary(cmd *cobra.Command, m *manifest.Manifest) {
	out := cmd.OutOrStdout()
	answered := len(analysis.Questions) - len(m.Skipped)
	fmt.Fprintf(out, "✓ Analyzed %d rows from %s: %d/%d questions answered\n", m.Rows, m.Input, answered, len(analysis.Questions))
	for _, s := range m.Skipped {
		fmt.Fprintf(out, "⚠ Skipped question %d: %s\n", int(s.Question), s.Reason)
	}
	fmt.Fprintf(out, "✓ Wrote %d artifacts to %s (run %s)\n", len(m.Artifacts), m.RootDir(), m.RunID)
}
