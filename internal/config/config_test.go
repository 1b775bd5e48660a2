package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("IMPRESSION_PLATFORM", "")
	t.Setenv("IMPRESSION_INPUT_BUCKET", "")
	t.Setenv("IMPRESSION_LOG_LEVEL", "")

	cfg := Load()
	assert.Equal(t, "gcp", cfg.Platform)
	assert.Equal(t, "impression-uploads", cfg.InputBucket)
	assert.Equal(t, "impression-output", cfg.OutputBucket)
	assert.Equal(t, "jobs", cfg.JobsCollection)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IMPRESSION_PLATFORM", "SurrealDB")
	t.Setenv("IMPRESSION_USER", "alice")
	t.Setenv("IMPRESSION_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "surrealdb", cfg.Platform)
	assert.Equal(t, "alice", cfg.User)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)

	logger.Info("job saved", "job_id", "job-1")
	logger.Warn("ignored invalid job fields", "job_id", "job-2")

	assert.NotContains(t, stderr.String(), "job saved")
	assert.Contains(t, stderr.String(), "ignored invalid job fields")

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	require.Len(t, lines, 2)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "job-1", rec["job_id"])
}
