package global

import (
	"sync"

	"themehint/pkg/config"
	"themehint/pkg/logger"
)

var (
	cfg      *config.Config
	log      *logger.Logger
	initOnce sync.Once
	mu       sync.RWMutex
)

func InitGlobals(config *config.Config, logger *logger.Logger) {
	initOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		cfg = config
		log = logger
	})
}

// SetConfig replaces the global config, e.g. after a reload.
func SetConfig(config *config.Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = config
}

// GetConfig returns the global config instance
func GetConfig() *config.Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// GetLogger returns the global logger instance, or a no-op logger before
// initialization.
func GetLogger() *logger.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if log == nil {
		return logger.Nop()
	}
	return log
}
