package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "warn", JSON: true, Stdout: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("dropped")
	logger.Warn("backend slow", "entity", "services")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "backend slow", rec["msg"])
	assert.Equal(t, "services", rec["entity"])
	assert.NotContains(t, buf.String(), "dropped")
}

func TestNewTeesIntoRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hsadmin.log")
	var buf bytes.Buffer
	logger, closer, err := New(Options{File: path, MaxSizeMB: 1, Stdout: &buf})
	require.NoError(t, err)

	logger.Info("screen opened", "entity", "items")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "screen opened")
	assert.Contains(t, buf.String(), "entity=items")
}
