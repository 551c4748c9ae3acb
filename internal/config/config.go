// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	SweepDir          string // Directory the grid search writes its result records into
	DataDir           string // Base directory for the run ledger database (always absolute, created on first use)
	LogLevel          string
	LogPretty         bool
	Metric            string // Default performance metric for aggregation
	PruneMaxGapSecs   int    // Creation-time gap that marks the end of the recent cluster
	PruneSchedule     string // Cron spec for the prune job, empty disables it
	ArchiveSchedule   string // Cron spec for the archive job, empty disables it
	WorkerProcessName string // Substring matched against process names when looking for sweep workers
	Offload           *OffloadConfig
}

// OffloadConfig holds object storage settings for shipping archive directories off the box.
// An empty Bucket disables offloading.
type OffloadConfig struct {
	Bucket          string
	Endpoint        string // Custom endpoint for S3-compatible stores (e.g. Cloudflare R2)
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Enabled reports whether archive directories should be uploaded after archival.
func (o *OffloadConfig) Enabled() bool {
	return o != nil && o.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("SWEEP_DATA_DIR", "data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		SweepDir:          getEnv("SWEEP_DIR", "my_logs/backtest/grid_search"),
		DataDir:           dataDir,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogPretty:         getEnvAsBool("LOG_PRETTY", true),
		Metric:            getEnv("SWEEP_METRIC", "Sharpe ratio"),
		PruneMaxGapSecs:   getEnvAsInt("PRUNE_MAX_GAP_SECONDS", 3600),
		PruneSchedule:     getEnv("PRUNE_SCHEDULE", "@every 1h"),
		ArchiveSchedule:   getEnv("ARCHIVE_SCHEDULE", ""),
		WorkerProcessName: getEnv("WORKER_PROCESS_NAME", "python"),
		Offload:           loadOffloadConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and consistent
func (c *Config) Validate() error {
	if c.SweepDir == "" {
		return errors.New("sweep directory must not be empty")
	}

	if c.PruneMaxGapSecs < 0 {
		return fmt.Errorf("prune max gap must not be negative, got %d seconds", c.PruneMaxGapSecs)
	}

	if c.WorkerProcessName == "" {
		return errors.New("worker process name must not be empty")
	}

	// Static credentials are all-or-nothing; half a key pair silently falls back to the
	// default AWS credential chain otherwise.
	if c.Offload.Enabled() && (c.Offload.AccessKeyID == "") != (c.Offload.SecretAccessKey == "") {
		return errors.New("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
	}

	return nil
}

// PruneMaxGap returns the prune threshold as a duration.
func (c *Config) PruneMaxGap() time.Duration {
	return time.Duration(c.PruneMaxGapSecs) * time.Second
}

// LedgerPath returns the path of the run ledger database.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func loadOffloadConfig() *OffloadConfig {
	return &OffloadConfig{
		Bucket:          getEnv("S3_BUCKET", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		Region:          getEnv("S3_REGION", "auto"),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		Prefix:          getEnv("S3_PREFIX", "gridsweep/"),
	}
}
