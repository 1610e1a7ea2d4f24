// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config carries the tunables of the budget core's host process.
type Config struct {
	// Logging
	LogLevel string

	// Defaults applied when a request omits the field
	DefaultCurrency string

	// Scheduler: cap on occurrences materialized per template per pass,
	// protecting a long-dormant process from unbounded back-fill.
	SchedulerMaxBackfill int
}

// Load reads configuration from the environment with sensible defaults.
func Load() *Config {
	return &Config{
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DefaultCurrency:      getEnv("DEFAULT_CURRENCY", "EUR"),
		SchedulerMaxBackfill: getEnvInt("SCHEDULER_MAX_BACKFILL", 1000),
	}
}

// Validate checks the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []string

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level %q: must be debug, info, warn or error", c.LogLevel))
	}

	cur := strings.TrimSpace(c.DefaultCurrency)
	if len(cur) != 3 || strings.ToUpper(cur) != cur {
		errs = append(errs, fmt.Sprintf("invalid default currency %q: must be a 3-letter uppercase code", c.DefaultCurrency))
	}

	if c.SchedulerMaxBackfill < 1 {
		errs = append(errs, fmt.Sprintf("invalid scheduler backfill cap %d: must be positive", c.SchedulerMaxBackfill))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
