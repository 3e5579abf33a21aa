package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/shoptrends-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/shoptrends-cli/internal/config"
	"github.com/KaramelBytes/shoptrends-cli/internal/dataset"
	"github.com/KaramelBytes/shoptrends-cli/internal/manifest"
)

const shoppingHeader = "Customer ID,Age,Gender,Item Purchased,Category,Purchase Amount (USD),Location,Size,Season,Review Rating,Shipping Type,Frequency of Purchases\n"

var shoppingRows = []string{
	"1,55,Male,Blouse,Clothing,53,Kentucky,L,Winter,3.1,Express,Fortnightly",
	"2,19,Male,Sweater,Clothing,64,Maine,L,Winter,3.1,Express,Fortnightly",
	"3,50,Male,Jeans,Clothing,73,Massachusetts,S,Spring,3.1,Free Shipping,Weekly",
	"4,21,Female,Sandals,Footwear,90,Rhode Island,M,Spring,3.5,Next Day Air,Weekly",
	"5,45,Female,Blouse,Clothing,49,Oregon,M,Spring,2.7,Free Shipping,Annually",
	"6,46,Male,Sneakers,Footwear,20,Wyoming,M,Summer,2.9,Standard,Weekly",
	"7,63,Male,Shirt,Clothing,85,Montana,M,Fall,3.2,Free Shipping,Quarterly",
	"8,27,Female,Shorts,Clothing,34,Louisiana,L,Winter,3.2,Free Shipping,Weekly",
	"9,26,Male,Coat,Outerwear,97,West Virginia,L,Summer,2.6,Express,Annually",
	"10,57,Female,Handbag,Accessories,31,Missouri,M,Spring,4.8,2-Day Shipping,Quarterly",
	"11,53,Male,Shoes,Footwear,34,Arkansas,L,Fall,4.1,Store Pickup,Bi-Weekly",
	"12,30,Female,Shorts,Clothing,68,Hawaii,S,Winter,4.9,Store Pickup,Fortnightly",
}

// writeShoppingFile writes the fixture joined by sep, optionally dropping one column by header name.
func writeShoppingFile(t *testing.T, path, drop, sep string) string {
	t.Helper()
	header := strings.Split(strings.TrimSpace(shoppingHeader), ",")
	keep := make([]bool, len(header))
	for i, h := range header {
		keep[i] = h != drop
	}
	pick := func(fields []string) string {
		var out []string
		for i, f := range fields {
			if keep[i] {
				out = append(out, f)
			}
		}
		return strings.Join(out, sep)
	}
	var b strings.Builder
	b.WriteString(pick(header) + "\n")
	for _, r := range shoppingRows {
		b.WriteString(pick(strings.Split(r, ",")) + "\n")
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func writeShoppingCSV(t *testing.T, path, drop string) string {
	t.Helper()
	return writeShoppingFile(t, path, drop, ",")
}

// resetFlags clears values and Changed state that persist across Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmdErr executes the root command with args and returns its stdout and error.
func runCmdErr(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmdErr(t, args...)
	require.NoError(t, err, "command %v", args)
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestCLI_AnalyzeWritesAllArtifacts(t *testing.T) {
	home := isolateHome(t)
	input := writeShoppingCSV(t, filepath.Join(home, "data", "shopping_trends.csv"), "")
	outDir := filepath.Join(home, "out")

	stdout := runCmd(t, "analyze", input, "--output-dir", outDir, "--export", "json", "--top-n", "5")
	assert.Contains(t, stdout, "8/8 questions answered")

	report, err := os.ReadFile(filepath.Join(outDir, "analysis_report.txt"))
	require.NoError(t, err)
	for i := 1; i <= 8; i++ {
		assert.Contains(t, string(report), fmt.Sprintf("Question %d:", i))
	}
	assert.Contains(t, string(report), "Top 5 locations", "--top-n applied")

	for i := 1; i <= 8; i++ {
		_, err := os.Stat(filepath.Join(outDir, "figures", fmt.Sprintf("question%d_visualization.png", i)))
		require.NoError(t, err)
	}
	_, err = os.Stat(filepath.Join(outDir, "analysis_results.json"))
	require.NoError(t, err)

	m, err := manifest.Load(outDir)
	require.NoError(t, err)
	assert.Equal(t, len(shoppingRows), m.Rows)
	assert.Empty(t, m.Skipped)
	assert.Len(t, m.Artifacts, 10, "8 figures, report and export")
}

func TestCLI_AnalyzeSkipsQuestionWithoutColumn(t *testing.T) {
	home := isolateHome(t)
	input := writeShoppingCSV(t, filepath.Join(home, "no_location.csv"), "Location")
	outDir := filepath.Join(home, "out")

	stdout := runCmd(t, "analyze", input, "-o", outDir, "--no-charts")
	assert.Contains(t, stdout, "7/8 questions answered")
	assert.Contains(t, stdout, "Skipped question 7")

	_, err := os.Stat(filepath.Join(outDir, "figures"))
	assert.True(t, os.IsNotExist(err), "no figures with --no-charts")

	m, err := manifest.Load(outDir)
	require.NoError(t, err)
	require.Len(t, m.Skipped, 1)
	assert.Equal(t, analysis.GeographicSpending, m.Skipped[0].Question)
}

func TestCLI_AnalyzeFailsWhenTooFewColumnsResolve(t *testing.T) {
	home := isolateHome(t)
	input := filepath.Join(home, "ages.csv")
	require.NoError(t, os.WriteFile(input, []byte("Age,Notes\n30,a\n40,b\n"), 0o644))
	outDir := filepath.Join(home, "out")

	_, err := runCmdErr(t, "analyze", input, "-o", outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "8 of 8 questions could not be answered")
	var aggErr *analysis.AggregationError
	assert.ErrorAs(t, err, &aggErr)

	_, err = os.Stat(filepath.Join(outDir, manifest.FileName))
	assert.True(t, os.IsNotExist(err), "no manifest for a failed run")
}

func TestCLI_AnalyzeErrors(t *testing.T) {
	home := isolateHome(t)

	_, err := runCmdErr(t, "analyze", filepath.Join(home, "missing.csv"), "-o", filepath.Join(home, "out"))
	var notFound *dataset.DataNotFoundError
	assert.ErrorAs(t, err, &notFound)

	noAge := writeShoppingCSV(t, filepath.Join(home, "no_age.csv"), "Age")
	_, err = runCmdErr(t, "analyze", noAge, "-o", filepath.Join(home, "out"))
	var schema *dataset.SchemaError
	assert.ErrorAs(t, err, &schema)

	_, err = runCmdErr(t, "analyze", noAge, "--export", "xml")
	assert.Error(t, err, "invalid --export is rejected")
}

func TestCLI_AnalyzeTabDelimited(t *testing.T) {
	home := isolateHome(t)
	// .txt is read as comma separated unless told otherwise
	input := writeShoppingFile(t, filepath.Join(home, "export.txt"), "", "\t")
	outDir := filepath.Join(home, "out")

	_, err := runCmdErr(t, "analyze", input, "-o", outDir, "--no-charts")
	assert.Error(t, err, "tab-separated header is one unknown column")

	stdout := runCmd(t, "analyze", input, "-o", outDir, "--no-charts", "--delimiter", "tab")
	assert.Contains(t, stdout, "8/8 questions answered")

	_, err = runCmdErr(t, "analyze", input, "-o", outDir, "--no-charts", "--delimiter", "\t")
	assert.Error(t, err, "a literal tab is not a delimiter name")
}

func TestLoaderOptionsDelimiters(t *testing.T) {
	cases := map[string]rune{"": 0, ",": ',', ";": ';', "|": '|', "tab": '\t'}
	for name, want := range cases {
		c := &cfgpkg.Global{Delimiter: name}
		opt, err := loaderOptions(c)
		require.NoError(t, err, "delimiter %q", name)
		assert.Equal(t, want, opt.Delimiter, "delimiter %q", name)
	}

	_, err := loaderOptions(&cfgpkg.Global{Delimiter: "\t"})
	assert.Error(t, err)
	_, err = loaderOptions(&cfgpkg.Global{Columns: map[string]string{"nope": "x"}})
	assert.Error(t, err)
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolateHome(t)

	runCmd(t, "config", "set", "top_n", "7")
	runCmd(t, "config", "set", "columns.location", "State")
	_, err := os.Stat(filepath.Join(home, ".shoptrends", "config.yaml"))
	require.NoError(t, err)

	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "top_n: 7")
	assert.Contains(t, out, "location: State")

	_, err = runCmdErr(t, "config", "set", "top_n", "0")
	assert.Error(t, err, "validation rejects top_n 0")
	_, err = runCmdErr(t, "config", "set", "columns.nope", "x")
	assert.Error(t, err, "unknown column key")
}

func TestCLI_ListRunsAndArtifacts(t *testing.T) {
	home := isolateHome(t)
	input := writeShoppingCSV(t, filepath.Join(home, "shop.csv"), "")
	outDir := filepath.Join(home, "out")

	out := runCmd(t, "list", "--runs", "--dir", outDir)
	assert.Contains(t, out, "(no runs)")

	runCmd(t, "config", "set", "output_dir", outDir)
	runCmd(t, "analyze", input, "--no-charts")

	out = runCmd(t, "list", "--runs")
	assert.Contains(t, out, input)
	out = runCmd(t, "list", "--artifacts")
	assert.Contains(t, out, "report: analysis_report.txt")

	_, err := runCmdErr(t, "list")
	assert.Error(t, err, "one of --runs or --artifacts is required")
}

func TestCLI_Version(t *testing.T) {
	isolateHome(t)
	out := runCmd(t, "version")
	assert.True(t, strings.HasPrefix(out, "shoptrends "), out)
}
