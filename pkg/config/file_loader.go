package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"themehint/pkg/core"
)

// EnvPrefix prefixes every environment override, e.g. THEMEHINT_VARIANT.
const EnvPrefix = "THEMEHINT"

// Duration is a time.Duration written as "2s" in TOML and the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// fileConfig is the on-disk and environment shape of Config.
type fileConfig struct {
	Variant         string   `toml:"variant" envconfig:"VARIANT"`
	Directory       string   `toml:"directory" envconfig:"DIRECTORY"`
	CommandTimeout  Duration `toml:"command_timeout" envconfig:"COMMAND_TIMEOUT"`
	TeardownTimeout Duration `toml:"teardown_timeout" envconfig:"TEARDOWN_TIMEOUT"`
	MaxParallel     int      `toml:"max_parallel" envconfig:"MAX_PARALLEL"`
	TargetPID       int      `toml:"target_pid" envconfig:"TARGET_PID"`
	IncludeChildren bool     `toml:"include_children" envconfig:"INCLUDE_CHILDREN"`
	ForwardEnv      []string `toml:"forward_env" envconfig:"FORWARD_ENV"`
	SocketPath      string   `toml:"socket_path" envconfig:"SOCKET_PATH"`
	WatchConfig     bool     `toml:"watch_config" envconfig:"WATCH_CONFIG"`
	FollowPortal    bool     `toml:"follow_portal" envconfig:"FOLLOW_PORTAL"`
	NotifyFailures  bool     `toml:"notify_failures" envconfig:"NOTIFY_FAILURES"`
	Log             logFile  `toml:"log" envconfig:"LOG"`
}

type logFile struct {
	Level string `toml:"level" envconfig:"LEVEL"`
	File  string `toml:"file" envconfig:"FILE"`
}

func (c *Config) toFile() fileConfig {
	return fileConfig{
		Variant:         c.variant,
		Directory:       c.directory,
		CommandTimeout:  Duration{c.commandTimeout},
		TeardownTimeout: Duration{c.teardownTimeout},
		MaxParallel:     c.maxParallel,
		TargetPID:       c.targetPID,
		IncludeChildren: c.includeChildren,
		ForwardEnv:      c.ForwardEnv(),
		SocketPath:      c.socketPath,
		WatchConfig:     c.watchConfig,
		FollowPortal:    c.followPortal,
		NotifyFailures:  c.notifyFailures,
		Log:             logFile{Level: c.logLevel, File: c.logFile},
	}
}

func (c *Config) fromFile(f fileConfig) {
	c.variant = f.Variant
	c.directory = f.Directory
	c.commandTimeout = f.CommandTimeout.Duration
	c.teardownTimeout = f.TeardownTimeout.Duration
	c.maxParallel = f.MaxParallel
	c.targetPID = f.TargetPID
	c.includeChildren = f.IncludeChildren
	c.forwardEnv = append([]string{}, f.ForwardEnv...)
	c.socketPath = f.SocketPath
	c.watchConfig = f.WatchConfig
	c.followPortal = f.FollowPortal
	c.notifyFailures = f.NotifyFailures
	c.logLevel = f.Log.Level
	c.logFile = f.Log.File
}

// LoadFromFile loads the configuration from a TOML file. Keys missing from
// the file keep their current values.
func (c *Config) LoadFromFile(path string, log core.Logger) error {
	log.Debug("Loading configuration from file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("Failed to read config file", err, "path", path)
		return err
	}
	log.Debug("Config file read successfully", "size_bytes", len(data))

	temp := c.toFile()
	md, err := toml.Decode(string(data), &temp)
	if err != nil {
		log.Error("Failed to parse config TOML", err, "path", path)
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		log.Warn("Ignoring unknown config keys", "keys", fmt.Sprint(undecoded))
	}

	c.fromFile(temp)
	c.path = path
	return c.validate()
}

// ApplyEnv overrides values from THEMEHINT_* environment variables.
func (c *Config) ApplyEnv() error {
	temp := c.toFile()
	if err := envconfig.Process(EnvPrefix, &temp); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	c.fromFile(temp)
	return c.validate()
}

// Save writes the configuration as TOML.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c.toFile()); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// loadConfigFromPath loads the configuration from a file on top of the defaults.
func loadConfigFromPath(path string, log core.Logger) (*Config, error) {
	config := DefaultConfig(log)
	if err := config.LoadFromFile(path, log); err != nil {
		return nil, err
	}
	return config, nil
}
