// Package config loads runtime configuration from the environment and the
// optional business profile file.
package config

import "os"

// Config holds process configuration.
type Config struct {
	// Driver selects the ledger store: "sqlite", "postgres", or "memory".
	Driver string
	// DSN is the sqlite path or postgres connection string.
	DSN string
	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string
	// ProfilePath points at the YAML business profile; empty means defaults.
	ProfilePath string
}

// Load loads configuration from environment variables.
func Load() *Config {
	driver := os.Getenv("LEDGER_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}

	dsn := os.Getenv("LEDGER_DSN")
	if dsn == "" {
		dsn = "hydrohub-ledger.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	return &Config{
		Driver:      driver,
		DSN:         dsn,
		LogLevel:    logLevel,
		ProfilePath: os.Getenv("HYDROHUB_PROFILE"),
	}
}
