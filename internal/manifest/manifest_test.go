package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/shoptrends-cli/internal/analysis"
	"github.com/KaramelBytes/shoptrends-cli/internal/manifest"
)

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	m := manifest.New("data/shop.csv", dir)
	_, err := uuid.Parse(m.RunID)
	require.NoError(t, err, "run id is a uuid")

	m.Record(&analysis.Results{
		Rows:     42,
		Skipped:  []analysis.Skipped{{Question: analysis.GeographicSpending, Reason: "no location"}},
		Warnings: []string{"capped"},
	})
	m.AddArtifact(manifest.KindReport, filepath.Join(dir, "analysis_report.txt"), 0)
	m.AddArtifact(manifest.KindFigure, filepath.Join(dir, "figures", "question1_visualization.png"), analysis.Demographics)

	require.NoError(t, m.Save())
	_, err = os.Stat(filepath.Join(dir, manifest.FileName))
	require.NoError(t, err)

	got, err := manifest.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, got.RunID)
	assert.Equal(t, 42, got.Rows)
	assert.Equal(t, "data/shop.csv", got.Input)
	assert.Equal(t, dir, got.RootDir())
	assert.Equal(t, []string{"capped"}, got.Warnings)

	require.Len(t, got.Artifacts, 2)
	assert.Equal(t, manifest.Artifact{Kind: manifest.KindReport, Path: "analysis_report.txt"}, got.Artifacts[0])
	assert.Equal(t, manifest.Artifact{
		Kind: manifest.KindFigure, Path: "figures/question1_visualization.png", Question: analysis.Demographics,
	}, got.Artifacts[1])

	require.Len(t, got.Skipped, 1)
	assert.Equal(t, analysis.GeographicSpending, got.Skipped[0].Question)
	assert.False(t, got.FinishedAt.Before(got.StartedAt))
}

func TestLoadMissing(t *testing.T) {
	_, err := manifest.Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveWithoutRoot(t *testing.T) {
	m := &manifest.Manifest{}
	assert.Error(t, m.Save())
}
