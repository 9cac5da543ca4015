// Package cli defines the themehint command tree.
package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"themehint/pkg/config"
	"themehint/pkg/global"
	"themehint/pkg/logger"
)

const version = "0.1.0"

type rootOptions struct {
	configPath string
	debug      bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "themehint",
		Short:         "Set the GTK dark theme hint on an application's X11 windows",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newRunCommand(opts),
		newApplyCommand(opts),
		newClearCommand(opts),
		newListCommand(opts),
		newSendCommand(opts),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap initializes logging and configuration. An early console
// logger covers config loading; the final logger adds the configured
// level and log file.
func bootstrap(opts *rootOptions) (*config.Config, *logger.Logger, error) {
	early, err := logger.NewLogger(
		logger.WithConsole(),
		logger.WithLevel(levelFor(opts.debug, zerolog.InfoLevel)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	early.Debug("Loading configuration", "provided_path", opts.configPath)
	cfg, err := config.FindConfig(opts.configPath, early)
	if err != nil {
		early.Error("Failed to load configuration", err, "provided_path", opts.configPath)
		return nil, nil, err
	}

	log, err := logger.NewLogger(
		logger.WithConsole(),
		logger.WithLevel(levelFor(opts.debug, cfg.LogLevel())),
		logger.WithFile(cfg.LogFile()),
	)
	if err != nil {
		early.Warn("Falling back to console logging", "error", err.Error(), "file", cfg.LogFile())
		log = early
	} else {
		early.Close()
	}

	log.Info("Starting themehint",
		"version", version,
		"pid", os.Getpid(),
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
		"debug", opts.debug)
	log.Debug("Configuration loaded",
		"path", cfg.Path(),
		"variant", cfg.Variant(),
		"directory", cfg.Directory(),
		"command_timeout", cfg.CommandTimeout().String(),
		"max_parallel", cfg.MaxParallel())

	global.InitGlobals(cfg, log)
	return cfg, log, nil
}

func levelFor(debug bool, configured zerolog.Level) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return configured
}
