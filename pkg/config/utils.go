package config

import (
	"fmt"
	"os"
	"path/filepath"

	"themehint/pkg/core"
)

// initializeConfig creates or loads the configuration.
func initializeConfig(providedPath string, defaultPath string, log core.Logger) (*Config, error) {
	var config *Config
	var err error

	// Try provided path first if specified
	if providedPath != "" {
		config, err = loadConfigFromPath(providedPath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from provided path: %w", err)
		}
		return config, nil
	}

	// Try default path, create if doesn't exist
	if _, statErr := os.Stat(defaultPath); os.IsNotExist(statErr) {
		config = DefaultConfig(log)
		if err := config.Save(defaultPath); err != nil {
			log.Warn("Could not write default config", "path", defaultPath, "error", err.Error())
		} else {
			log.Info("Wrote default configuration", "path", defaultPath)
			config.path = defaultPath
		}
		return config, nil
	}

	config, err = loadConfigFromPath(defaultPath, log)
	if err != nil {
		log.Error("Invalid config file, using defaults", err, "path", defaultPath)
		config = DefaultConfig(log)
		config.path = defaultPath
	}
	return config, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/themehint/config.toml.
func DefaultConfigPath() (string, error) {
	homeConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeConfigDir, "themehint", "config.toml"), nil
}

// FindConfig locates and initializes the configuration, then applies
// environment overrides.
func FindConfig(providedPath string, log core.Logger) (*Config, error) {
	log.Info("Looking for configuration", "provided_path", providedPath)

	defaultConfigPath, err := DefaultConfigPath()
	if err != nil {
		log.Error("Failed to get user config directory", err)
		return nil, err
	}
	log.Debug("Configuration paths", "config_path", defaultConfigPath)

	config, err := initializeConfig(providedPath, defaultConfigPath, log)
	if err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// Reload re-reads the file this config came from, with environment
// overrides applied again.
func (c *Config) Reload() (*Config, error) {
	if c.path == "" {
		return nil, fmt.Errorf("config was not loaded from a file")
	}
	next, err := loadConfigFromPath(c.path, c.log)
	if err != nil {
		return nil, err
	}
	if err := next.ApplyEnv(); err != nil {
		return nil, err
	}
	return next, nil
}
