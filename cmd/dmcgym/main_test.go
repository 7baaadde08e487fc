package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/dmcgym/environment/envconfig"
	"github.com/samuelfneumann/dmcgym/experiment/savers"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	configPath, logFile, verbose = "", "", false

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	path := filepath.Join(dir, "config.yaml")
	c := envconfig.WithSeed(envconfig.Default(), 3)
	c.Task = "balance"
	c.TaskKwargs.TimeLimit = 0.2
	c.LogDir = filepath.Join(dir, "runs")
	require.NoError(t, envconfig.Save(c, path))
	return path
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	out, err := execute(t, "init", "--out", path, "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized")

	c, err := envconfig.Load(viper.New(), path)
	require.NoError(t, err)
	require.NotNil(t, c.TaskKwargs.Random)
	assert.Equal(t, uint64(7), *c.TaskKwargs.Random)
}

func TestSpaces(t *testing.T) {
	path := writeConfig(t, t.TempDir())
	out, err := execute(t, "spaces", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "cartpole/balance")
	assert.Contains(t, out, "Box(-1, 1, [1], float32)")
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir)

	out, err := execute(t, "run", "--config", path, "--episodes", "2",
		"--seeds", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "seed 3:")
	assert.Contains(t, out, "seed 4:")

	runs, err := os.ReadDir(filepath.Join(dir, "runs"))
	require.NoError(t, err)
	require.Len(t, runs, 1)

	for _, seed := range []string{"seed-3", "seed-4"} {
		seedDir := filepath.Join(dir, "runs", runs[0].Name(), seed)
		assert.FileExists(t, filepath.Join(seedDir, ConfigFile))

		returns, err := savers.LoadData(filepath.Join(seedDir, ReturnsFile))
		require.NoError(t, err)
		assert.Len(t, returns, 2)

		lengths, err := savers.LoadLengths(filepath.Join(seedDir,
			LengthsFile))
		require.NoError(t, err)
		assert.Equal(t, []int{20, 20}, lengths)
	}
}

func TestRunWithoutSeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, envconfig.Save(envconfig.Default(), path))

	_, err := execute(t, "run", "--config", path)
	assert.Error(t, err)
}
