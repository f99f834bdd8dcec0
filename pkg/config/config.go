// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
)

// Config represents the application configuration
type Config struct {
	// Catalog endpoints
	Source *EndpointConfig
	Target *EndpointConfig

	// Reconciliation settings
	ExcludedColumns       []string // nil selects the reconciler's audit column defaults
	LengthToleranceSource int64
	LengthToleranceTarget int64
	WorkerPoolSize        int
	StrictDuplicates      bool
	FailFast              bool

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Default values
		ExcludedColumns:       getEnvAsStringSlice("EXCLUDED_COLUMNS", nil),
		LengthToleranceSource: getEnvAsInt64("LENGTH_TOLERANCE_SOURCE", 16777216),
		LengthToleranceTarget: getEnvAsInt64("LENGTH_TOLERANCE_TARGET", 8388607),
		WorkerPoolSize:        getEnvAsInt("WORKER_POOL_SIZE", 0), // 0 derives the count from the CPUs
		StrictDuplicates:      getEnvAsBool("STRICT_DUPLICATES", true),
		FailFast:              getEnvAsBool("FAIL_FAST", false),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
	}

	// Load endpoint configurations
	srcConfig, err := LoadEndpointConfig("source")
	if err != nil {
		return nil, errors.New("failed to load source endpoint configuration: " + err.Error())
	}
	cfg.Source = srcConfig

	tgtConfig, err := LoadEndpointConfig("target")
	if err != nil {
		return nil, errors.New("failed to load target endpoint configuration: " + err.Error())
	}
	cfg.Target = tgtConfig

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.Source == nil {
		return errors.New("source endpoint configuration is required")
	}

	if c.Target == nil {
		return errors.New("target endpoint configuration is required")
	}

	if c.WorkerPoolSize < 0 {
		return errors.New("worker pool size cannot be negative")
	}

	if c.LengthToleranceSource <= 0 || c.LengthToleranceTarget <= 0 {
		return errors.New("length tolerance values must be positive")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
