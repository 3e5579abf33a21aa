package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/shoptrends-cli/internal/config"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolateHome(t)

	c, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "shopping_trends.csv"), c.InputPath)
	assert.Equal(t, "output", c.OutputDir)
	assert.Equal(t, "figures", c.FiguresDir)
	assert.Equal(t, "analysis_report.txt", c.ReportName)
	assert.Equal(t, 10, c.TopN)
	assert.Equal(t, 4, c.Workers)
	assert.True(t, c.Charts)
	assert.Equal(t, "Purchase Amount (USD)", c.Columns["purchase_amount"])
	assert.Equal(t, "Frequency of Purchases", c.Columns["purchase_frequency"])
	require.NoError(t, c.Validate())
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "custom.yaml")
	body := "top_n: 5\noutput_dir: results\ncolumns:\n  location: State\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("SHOPTRENDS_OUTPUT_DIR", "from-env")

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, c.TopN)
	assert.Equal(t, "from-env", c.OutputDir)
	assert.Equal(t, "State", c.Columns["location"])
	assert.Equal(t, "Gender", c.Columns["gender"], "unspecified columns keep defaults")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolateHome(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	home := isolateHome(t)

	c, err := config.Load("")
	require.NoError(t, err)
	c.TopN = 3
	c.ExportFormat = "yaml"
	require.NoError(t, config.Save(c, ""))

	_, err = os.Stat(filepath.Join(home, ".shoptrends", "config.yaml"))
	require.NoError(t, err)

	again, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, again.TopN)
	assert.Equal(t, "yaml", again.ExportFormat)
}

func TestValidateRejectsBadValues(t *testing.T) {
	isolateHome(t)
	base, err := config.Load("")
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func(c *config.Global)
	}{
		{"zero top_n", func(c *config.Global) { c.TopN = 0 }},
		{"too many workers", func(c *config.Global) { c.Workers = 500 }},
		{"negative max rows", func(c *config.Global) { c.MaxRows = -1 }},
		{"bad export", func(c *config.Global) { c.ExportFormat = "xml" }},
		{"bad delimiter", func(c *config.Global) { c.Delimiter = "#" }},
		{"bad log level", func(c *config.Global) { c.LogLevel = "verbose" }},
		{"empty output dir", func(c *config.Global) { c.OutputDir = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := *base
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidateAcceptsDelimiters(t *testing.T) {
	isolateHome(t)
	base, err := config.Load("")
	require.NoError(t, err)

	for _, d := range []string{"", ",", ";", "tab", "|"} {
		c := *base
		c.Delimiter = d
		assert.NoError(t, c.Validate(), "delimiter %q", d)
	}
}
