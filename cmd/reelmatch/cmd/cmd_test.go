package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubenschmidt/reelmatch/recommend"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dataset, err := filepath.Abs(filepath.Join("..", "..", "..", "catalog", "testdata", "movies.csv"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reelmatch.yaml")
	body := "dataset:\n  path: " + dataset + "\nstore:\n  dsn: " +
		filepath.Join(t.TempDir(), "reelmatch.db") + "\nlog:\n  level: disabled\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		recommendJSON = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRecommendCommand(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "recommend", "Iron", "Man")
	require.NoError(t, err)
	assert.Contains(t, out, `Recommendations for "Iron Man"`)
	assert.Contains(t, out, "Iron Man 2")
}

func TestRecommendCommand_JSON(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "recommend", "--json", "titanic")
	require.NoError(t, err)

	var res recommend.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "titanic", res.Match)
	require.NotEmpty(t, res.Recommendations)
	assert.Equal(t, 1.0, res.Recommendations[0].Score)
}

func TestRecommendCommand_NoMatch(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "recommend", "zzzzqqqxx")
	require.NoError(t, err)
	assert.Contains(t, out, "No recommendations found")
}

func TestRecommendCommand_RequiresTitle(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t), "recommend")
	assert.Error(t, err)
}

func TestPrecomputeCommand(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "precompute")
	require.NoError(t, err)
	assert.Contains(t, out, "movies:   11")
	assert.Contains(t, out, "depth:    31")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "recommend", "avatar")
	assert.Error(t, err)
}
