package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachekv/cachekv/internal/bench"
	"github.com/cachekv/cachekv/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.StoreFile = filepath.Join(dir, "kv_store.json")
	cfg.ResultsFile = filepath.Join(dir, "benchmark_results.json")
	return cfg
}

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// whatever fn printed alongside its error.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out), runErr
}

// The usage text documents flags after the positionals ("set <key> <value>
// [--cached]"); the flag package alone stops parsing at the first non-flag
// argument, so that ordering must be handled explicitly.
func TestDispatchCommand_FlagsAfterPositionals(t *testing.T) {
	cfg := testConfig(t)

	require.NoError(t, dispatchCommand(cfg, true, []string{"set", "k", "v", "--cached"}))

	out, err := captureStdout(t, func() error {
		return dispatchCommand(cfg, true, []string{"status", "k"})
	})
	require.NoError(t, err)
	assert.Equal(t, "cached\n", out)

	out, err = captureStdout(t, func() error {
		return dispatchCommand(cfg, true, []string{"getset", "k", "v2", "--cached"})
	})
	require.NoError(t, err)
	assert.Equal(t, "v\n", out)

	require.NoError(t, dispatchCommand(cfg, true, []string{"cache", "k", "--status", "false"}))

	out, err = captureStdout(t, func() error {
		return dispatchCommand(cfg, true, []string{"status", "k"})
	})
	require.NoError(t, err)
	assert.Equal(t, "not cached\n", out)
}

func TestDispatchCommand_FlagsBeforePositionals(t *testing.T) {
	cfg := testConfig(t)

	require.NoError(t, dispatchCommand(cfg, true, []string{"set", "--cached", "k", "v"}))

	out, err := captureStdout(t, func() error {
		return dispatchCommand(cfg, true, []string{"status", "k"})
	})
	require.NoError(t, err)
	assert.Equal(t, "cached\n", out)
}

func TestDispatchCommand_BenchmarkTypeThenFlags(t *testing.T) {
	cfg := testConfig(t)

	out, err := captureStdout(t, func() error {
		return dispatchCommand(cfg, true, []string{"benchmark", "set", "--requests", "2", "--size", "1"})
	})
	require.NoError(t, err)

	var res bench.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, bench.TypeSet, res.Type)
	assert.Equal(t, 2, res.Requests)
	assert.Equal(t, 1, res.Size)
}

func TestDispatchCommand_SetMissingValue(t *testing.T) {
	cfg := testConfig(t)

	err := dispatchCommand(cfg, true, []string{"set", "k", "--cached"})
	assert.Error(t, err)
}

// An empty results log must print a JSON array, never null.
func TestRunResults_EmptyLogPrintsArray(t *testing.T) {
	cfg := testConfig(t)

	out, err := captureStdout(t, func() error {
		return dispatchCommand(cfg, true, []string{"results", "--format", "json"})
	})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}
