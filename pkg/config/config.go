package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"themehint/pkg/core"
)

// VariantAuto follows the desktop's dark-style preference.
const VariantAuto = "auto"

// Config holds the application configuration.
type Config struct {
	// Configurable via TOML file and environment (private fields to enforce immutability)
	variant         string
	directory       string
	commandTimeout  time.Duration
	teardownTimeout time.Duration
	maxParallel     int
	targetPID       int
	includeChildren bool
	forwardEnv      []string
	socketPath      string
	watchConfig     bool
	followPortal    bool
	notifyFailures  bool
	logLevel        string
	logFile         string

	// Internal fields
	path string
	log  core.Logger
}

// New creates a new Config instance with the provided logger.
func New(log core.Logger) *Config {
	return &Config{
		log: log,
	}
}

// Variant returns the configured variant name, "auto", or "" for none.
func (c *Config) Variant() string {
	return c.variant
}

// IsAutoVariant reports whether the variant follows the desktop preference.
func (c *Config) IsAutoVariant() bool {
	return strings.EqualFold(c.variant, VariantAuto)
}

// Directory returns the window directory backend name.
func (c *Config) Directory() string {
	return c.directory
}

// CommandTimeout bounds each external command.
func (c *Config) CommandTimeout() time.Duration {
	return c.commandTimeout
}

// TeardownTimeout bounds the best-effort clear on shutdown.
func (c *Config) TeardownTimeout() time.Duration {
	return c.teardownTimeout
}

// MaxParallel caps concurrent commands per pass; 0 is unbounded.
func (c *Config) MaxParallel() int {
	return c.maxParallel
}

// TargetPID returns the process whose windows are themed; 0 is this process.
func (c *Config) TargetPID() int {
	return c.targetPID
}

// IncludeChildren reports whether descendants of the target count as the application.
func (c *Config) IncludeChildren() bool {
	return c.includeChildren
}

// ForwardEnv returns extra environment variables passed to commands.
func (c *Config) ForwardEnv() []string {
	return append([]string{}, c.forwardEnv...)
}

// SocketPath returns the trigger socket path.
func (c *Config) SocketPath() string {
	return c.socketPath
}

// WatchConfig reports whether config file changes trigger a re-apply.
func (c *Config) WatchConfig() bool {
	return c.watchConfig
}

// FollowPortal reports whether desktop preference changes trigger a re-apply.
func (c *Config) FollowPortal() bool {
	return c.followPortal
}

// NotifyFailures reports whether failed passes raise a desktop notification.
func (c *Config) NotifyFailures() bool {
	return c.notifyFailures
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.logLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// LogFile returns the log file path; empty disables file logging.
func (c *Config) LogFile() string {
	return c.logFile
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// WithTarget returns a copy targeting pid.
func (c *Config) WithTarget(pid int, includeChildren bool) *Config {
	cp := *c
	cp.forwardEnv = c.ForwardEnv()
	cp.targetPID = pid
	cp.includeChildren = includeChildren
	return &cp
}

// WithVariant returns a copy using variant.
func (c *Config) WithVariant(variant string) *Config {
	cp := *c
	cp.forwardEnv = c.ForwardEnv()
	cp.variant = variant
	return &cp
}

// validate checks value ranges after loading.
func (c *Config) validate() error {
	switch c.directory {
	case "xprop", "xgb":
	default:
		return fmt.Errorf("invalid directory %q: expected xprop or xgb", c.directory)
	}
	if c.commandTimeout < 0 {
		return fmt.Errorf("command_timeout must not be negative")
	}
	if c.teardownTimeout < 0 {
		return fmt.Errorf("teardown_timeout must not be negative")
	}
	if c.maxParallel < 0 {
		return fmt.Errorf("max_parallel must not be negative")
	}
	if c.targetPID < 0 {
		return fmt.Errorf("target_pid must not be negative")
	}
	if c.socketPath == "" {
		return fmt.Errorf("socket_path must not be empty")
	}
	if _, err := zerolog.ParseLevel(c.logLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.logLevel, err)
	}
	return nil
}
