package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gator/infra/config"
)

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "input_output_file.txt", OutputPath("input.txt"))
	assert.Equal(t, filepath.Join("tests", "case1_output_file.txt"), OutputPath(filepath.Join("tests", "case1.in.txt")))
	assert.Equal(t, "noext_output_file.txt", OutputPath("noext"))
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.txt")
	require.NoError(t, os.WriteFile(input, []byte("createOrder(1, 0, 50, 10)\nQuit()\n"), 0o644))

	cfg, err := config.Load("test", []string{"--journal-dir", filepath.Join(dir, "journal"), input})
	require.NoError(t, err)
	require.NoError(t, runFile(t.Context(), cfg, testr.New(t)))

	out, err := os.ReadFile(filepath.Join(dir, "sample_output_file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Order 1 has been created - ETA: 10\nOrder 1 has been delivered at time 10\n", string(out))

	require.NoError(t, runReplay(t.Context(), cfg, testr.New(t)))
}

func TestRunFileUsage(t *testing.T) {
	cfg, err := config.Load("test", nil)
	require.NoError(t, err)
	assert.Error(t, runFile(t.Context(), cfg, testr.New(t)))
	assert.Error(t, runReplay(t.Context(), cfg, testr.New(t)))
}
