// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server and the CLI.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// StoreDriver is "sqlite" (default) or "postgres".
	StoreDriver string

	// DatabaseURL is the SQLite file path or the Postgres connection string.
	// Required for postgres; defaults to "journal.db" for sqlite.
	DatabaseURL string

	// Backup configures where snapshots are saved and restored from.
	Backup BackupConfig

	// MaxBodyBytes limits request bodies, including uploaded snapshots.
	// Defaults to 32 MiB.
	MaxBodyBytes int64

	// ImportTimeout bounds a single snapshot import. Defaults to 2m.
	ImportTimeout time.Duration
}

// BackupConfig selects and configures the snapshot target.
type BackupConfig struct {
	// Target is "file" (default) or "s3".
	Target string
	// Dir is the directory used by the file target. Defaults to "backups".
	Dir string
	// Key is an optional hex-encoded AES-256 key. When set, snapshots are
	// encrypted before they leave the process.
	Key string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string // empty for AWS
	S3AccessKey string
	S3SecretKey string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first value that cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
		Backup: BackupConfig{
			Target:      strings.ToLower(getEnv("BACKUP_TARGET", "file")),
			Dir:         getEnv("BACKUP_DIR", "backups"),
			Key:         os.Getenv("BACKUP_KEY"),
			S3Bucket:    os.Getenv("S3_BUCKET"),
			S3Region:    getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:  os.Getenv("S3_ENDPOINT"),
			S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
	}

	var err error
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "33554432"), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES: must be a positive integer")
	}
	if cfg.ImportTimeout, err = time.ParseDuration(getEnv("IMPORT_TIMEOUT", "2m")); err != nil || cfg.ImportTimeout <= 0 {
		return Config{}, fmt.Errorf("IMPORT_TIMEOUT: must be a positive duration such as 90s")
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	switch cfg.StoreDriver {
	case "sqlite":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "journal.db"
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER: unknown driver %q (want sqlite or postgres)", cfg.StoreDriver)
	}

	switch cfg.Backup.Target {
	case "file":
	case "s3":
		if cfg.Backup.S3Bucket == "" {
			missing = append(missing, "S3_BUCKET")
		}
	default:
		return Config{}, fmt.Errorf("BACKUP_TARGET: unknown target %q (want file or s3)", cfg.Backup.Target)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
