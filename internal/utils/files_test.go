package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/shoptrends-cli/internal/utils"
)

func TestSafeWriteFileCreatesParentAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.txt")

	require.NoError(t, utils.SafeWriteFile(path, []byte("first")))
	require.NoError(t, utils.SafeWriteFile(path, []byte("second")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(b))
}

func TestFileStem(t *testing.T) {
	cases := map[string]string{
		"data/shopping_trends.csv": "shopping_trends",
		"report.tar.gz":            "report.tar",
		"noext":                    "noext",
	}
	for in, want := range cases {
		assert.Equal(t, want, utils.FileStem(in), in)
	}
}
