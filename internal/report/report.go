// Package report writes analysis results as a human-readable text report
// and as machine-readable JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/shoptrends-cli/internal/analysis"
)

// Meta describes the run a report belongs to.
type Meta struct {
	RunID     string
	Input     string
	Generated time.Time
}

// WriteText renders every bundle as a titled section of tables, followed by
// notes on skipped questions and loader warnings.
func WriteText(w io.Writer, res *analysis.Results, meta Meta) error {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SHOPPING TRENDS ANALYSIS REPORT")
	fmt.Fprintln(w, rule)
	if meta.RunID != "" {
		fmt.Fprintf(w, "Run ID:    %s\n", meta.RunID)
	}
	if meta.Input != "" {
		fmt.Fprintf(w, "Input:     %s\n", meta.Input)
	}
	if !meta.Generated.IsZero() {
		fmt.Fprintf(w, "Generated: %s\n", meta.Generated.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Rows:      %d\n", res.Rows)

	for _, b := range res.Bundles {
		fmt.Fprintf(w, "\n%s\nQuestion %d: %s\n%s\n", rule, int(b.Question), b.Title, rule)
		for _, s := range b.Series {
			fmt.Fprintf(w, "\n%s\n", s.Title)
			renderSeries(w, s)
		}
		for _, m := range b.Matrices {
			fmt.Fprintf(w, "\n%s\n", m.Title)
			renderMatrix(w, m)
		}
		for _, l := range b.Labels {
			fmt.Fprintf(w, "\n%s\n", l.Title)
			renderLabels(w, l)
		}
	}

	if len(res.Skipped) > 0 || len(res.Warnings) > 0 {
		fmt.Fprintf(w, "\n%s\nNotes\n%s\n", rule, rule)
		for _, s := range res.Skipped {
			fmt.Fprintf(w, "- skipped question %d: %s\n", int(s.Question), s.Reason)
		}
		for _, msg := range res.Warnings {
			fmt.Fprintf(w, "- warning: %s\n", msg)
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderSeries(w io.Writer, s analysis.Series) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Key", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	for _, p := range s.Points {
		t.AppendRow(table.Row{p.Key, formatValue(s.Name, p.Value)})
	}
	t.Render()
}

func renderMatrix(w io.Writer, m analysis.Matrix) {
	t := newTable(w)
	header := make(table.Row, 0, len(m.Cols)+1)
	header = append(header, "")
	for _, c := range m.Cols {
		header = append(header, c)
	}
	t.AppendHeader(header)
	for i, r := range m.Rows {
		row := make(table.Row, 0, len(m.Cols)+1)
		row = append(row, r)
		for _, v := range m.Values[i] {
			row = append(row, strconv.FormatFloat(v, 'f', 3, 64))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func renderLabels(w io.Writer, l analysis.Labels) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Key", "Value"})
	for _, e := range l.Entries {
		t.AppendRow(table.Row{e.Key, e.Value})
	}
	t.Render()
}

// formatValue prints counts as integers, proportions with three decimals and
// everything else with two.
func formatValue(metric string, v float64) string {
	switch {
	case strings.HasSuffix(metric, "_count"):
		return strconv.FormatFloat(v, 'f', 0, 64)
	case strings.HasSuffix(metric, "_distribution"):
		return strconv.FormatFloat(v, 'f', 3, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

// Export serializes res in the given format ("json" or "yaml").
func Export(w io.Writer, res *analysis.Results, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q (use json or yaml)", format)
	}
}

// ExportExt is the file extension for format.
func ExportExt(format string) string {
	if strings.EqualFold(format, "yml") {
		return ".yaml"
	}
	return "." + strings.ToLower(format)
}
