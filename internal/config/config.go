// Package config loads runtime configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all configuration values.
type Config struct {
	// Platform selects the job, database and file-storage backends.
	Platform string

	// Buckets and collection
	InputBucket    string
	OutputBucket   string
	JobsCollection string

	// Google Cloud (platform "gcp")
	GCPProject string

	// SurrealDB connection (platform "surrealdb")
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// DataDir holds the bucket directories of the local file store.
	DataDir string

	// User is the default requesting user for CLI commands.
	User string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Platform: strings.ToLower(getEnv("IMPRESSION_PLATFORM", "gcp")),

		InputBucket:    getEnv("IMPRESSION_INPUT_BUCKET", "impression-uploads"),
		OutputBucket:   getEnv("IMPRESSION_OUTPUT_BUCKET", "impression-output"),
		JobsCollection: getEnv("IMPRESSION_JOBS_COLLECTION", "jobs"),

		GCPProject: getEnv("GOOGLE_CLOUD_PROJECT", ""),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "impression"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "jobs"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		DataDir: getEnv("IMPRESSION_DATA_DIR", defaultDataDir()),

		User: getEnv("IMPRESSION_USER", os.Getenv("USER")),

		LogFile:  getEnv("IMPRESSION_LOG_FILE", filepath.Join(os.TempDir(), "impression.log")),
		LogLevel: parseLogLevel(getEnv("IMPRESSION_LOG_LEVEL", "INFO")),
	}
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "impression")
	}
	return filepath.Join(os.TempDir(), "impression")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
