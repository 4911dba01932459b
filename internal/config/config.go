package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	DataBackend  string
	SQLiteDBPath string

	// Firebase / Google Cloud
	GoogleCloudProject string

	// Auth
	SkipAuth bool

	// Analytics
	AnalyticsTaskTimeout time.Duration

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finsight.db"),

		GoogleCloudProject: getEnv("GOOGLE_CLOUD_PROJECT", ""),

		SkipAuth: getEnvBool("SKIP_AUTH", false),

		AnalyticsTaskTimeout: getEnvDuration("ANALYTICS_TASK_TIMEOUT", 5*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite", "firestore"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Read-only check: the store creates the directory when it opens
			// the database.
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if info, err := os.Stat(dir); err == nil && !info.IsDir() {
					errors = append(errors, fmt.Sprintf("SQLite database directory '%s' is not a directory", dir))
				}
			}
		}
	}

	if c.DataBackend == "firestore" && c.GoogleCloudProject == "" {
		errors = append(errors, "GOOGLE_CLOUD_PROJECT is required when using firestore backend")
	}

	if !c.SkipAuth && c.GoogleCloudProject == "" {
		errors = append(errors, "GOOGLE_CLOUD_PROJECT is required unless SKIP_AUTH is set")
	}

	if c.AnalyticsTaskTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid analytics task timeout %v: must be at least 100ms", c.AnalyticsTaskTimeout))
	} else if c.AnalyticsTaskTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid analytics task timeout %v: must be at most 1 minute", c.AnalyticsTaskTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
