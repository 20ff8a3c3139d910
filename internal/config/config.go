// Package config loads toolkit settings from the environment. CLI flags
// override whatever is loaded here.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config carries every knob the CLI and server share.
type Config struct {
	// Root is the project directory holding the asset tree, snapshot,
	// manifest and migrations directory.
	Root string

	// DefaultSchema applies to asset files whose names do not encode one.
	DefaultSchema string

	// Engine and DSN select the target database for db update/status/serve.
	Engine string
	DSN    string

	// LockScope partitions the migration lock and history.
	LockScope string

	// CommandTimeout bounds each SQL batch execution.
	CommandTimeout time.Duration

	HTTPAddress string
	LogLevel    string
	LogFormat   string
}

// Load reads PROGMIG_* variables, applying defaults for everything optional.
func Load() Config {
	return Config{
		Root:           getEnv("PROGMIG_ROOT", "."),
		DefaultSchema:  getEnv("PROGMIG_DEFAULT_SCHEMA", "public"),
		Engine:         os.Getenv("PROGMIG_ENGINE"),
		DSN:            os.Getenv("PROGMIG_DB_DSN"),
		LockScope:      os.Getenv("PROGMIG_LOCK_SCOPE"),
		CommandTimeout: time.Duration(getEnvInt("PROGMIG_COMMAND_TIMEOUT", 60)) * time.Second,
		HTTPAddress:    getEnv("PROGMIG_HTTP_ADDR", ":8080"),
		LogLevel:       getEnv("PROGMIG_LOG_LEVEL", "info"),
		LogFormat:      getEnv("PROGMIG_LOG_FORMAT", "json"),
	}
}

// ValidateTarget checks the fields a database-touching command requires.
func (c Config) ValidateTarget() error {
	if c.Engine == "" {
		return errors.New("database engine is required (--engine or PROGMIG_ENGINE)")
	}
	if c.DSN == "" {
		return errors.New("connection string is required (--conn or PROGMIG_DB_DSN)")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
