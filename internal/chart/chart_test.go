package chart

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/shoptrends-cli/internal/analysis"
	"github.com/KaramelBytes/shoptrends-cli/internal/dataset"
)

func sampleResults(t *testing.T) *analysis.Results {
	t.Helper()
	row := func(g string, age float64, cat, item, loc, season string, amt, rat float64) dataset.Row {
		return dataset.Row{
			Gender: g, Age: age, Category: cat, Item: item, Size: "M", Season: season,
			ShippingType: "Express", Location: loc, PurchaseFrequency: "Weekly",
			PurchaseAmount: amt, HasPurchaseAmount: true, ReviewRating: rat, HasReviewRating: true,
		}
	}
	rows := []dataset.Row{
		row("Male", 19, "Clothing", "Shirt", "Ohio", "Fall", 30, 3.1),
		row("Female", 44, "Footwear", "Boots", "Texas", "Winter", 80, 4.2),
		row("Female", 67, "Clothing", "Dress", "Maine", "Summer", 55, 3.1),
	}
	tbl, err := dataset.NewTable("sample.csv", rows, dataset.SourceColumns)
	require.NoError(t, err)
	res, err := analysis.RunAll(context.Background(), tbl, analysis.DefaultOptions())
	require.NoError(t, err)
	return res
}

func TestRenderWritesOnePNGPerBundle(t *testing.T) {
	res := sampleResults(t)
	dir := filepath.Join(t.TempDir(), "figures")

	paths, err := Render(dir, res)
	require.NoError(t, err)
	require.Len(t, paths, len(res.Bundles))

	pngMagic := []byte("\x89PNG\r\n\x1a\n")
	for i, p := range paths {
		assert.Equal(t, FileName(res.Bundles[i].Question), filepath.Base(p))
		b, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(b, pngMagic), "%s is a PNG", p)
	}
}

func TestRenderSkipsMissingBundles(t *testing.T) {
	res := sampleResults(t)
	res.Bundles = res.Bundles[:2]
	dir := t.TempDir()

	paths, err := Render(dir, res)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	_, err = os.Stat(filepath.Join(dir, "question3_visualization.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "question7_visualization.png", FileName(analysis.GeographicSpending))
}
