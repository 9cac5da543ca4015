package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"themehint/pkg/core"
	"themehint/pkg/logger"
)

const (
	defaultVariant         = "dark"
	defaultDirectory       = "xprop"
	defaultCommandTimeout  = 2 * time.Second
	defaultTeardownTimeout = 3 * time.Second
)

// DefaultConfig creates a default configuration.
func DefaultConfig(log core.Logger) *Config {
	log.Debug("Creating default configuration")

	config := &Config{
		variant:         defaultVariant,
		directory:       defaultDirectory,
		commandTimeout:  defaultCommandTimeout,
		teardownTimeout: defaultTeardownTimeout,
		includeChildren: true,
		socketPath:      DefaultSocketPath(),
		watchConfig:     true,
		followPortal:    true,
		notifyFailures:  true,
		logLevel:        "info",
		logFile:         logger.DefaultLogPath(),
		log:             log,
	}

	log.Debug("Created default configuration",
		"variant", config.variant,
		"socket_path", config.socketPath)
	return config
}

// DefaultSocketPath returns the trigger socket inside XDG_RUNTIME_DIR, or
// a per-user path in the temp dir.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "themehint.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("themehint-%d.sock", os.Getuid()))
}
