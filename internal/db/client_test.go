// Package db_test contains tests for SurrealDB client configuration.
package db_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/impression-go/internal/db"
)

// getTestConfig returns config from environment or defaults for local testing.
func getTestConfig() db.Config {
	return db.Config{
		URL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		Namespace: getEnv("SURREALDB_NAMESPACE", "test_impression"),
		Database:  getEnv("SURREALDB_DATABASE", "test_jobs"),
		Username:  getEnv("SURREALDB_USER", "root"),
		Password:  getEnv("SURREALDB_PASS", "root"),
		AuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// TestClientAgainstLocalServer runs against an already running SurrealDB
// named by SURREALDB_URL; it is skipped when none is configured.
func TestClientAgainstLocalServer(t *testing.T) {
	if testing.Short() || os.Getenv("SURREALDB_URL") == "" {
		t.Skip("SURREALDB_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client, err := db.NewClient(ctx, getTestConfig(), logger)
	require.NoError(t, err, "should connect to SurrealDB")
	defer client.Close(ctx)

	require.NoError(t, client.InitSchema(ctx), "should initialize schema")

	result, err := client.Query(ctx, "INFO FOR DB", nil)
	require.NoError(t, err, "should query database info")
	assert.NotNil(t, result)
}
