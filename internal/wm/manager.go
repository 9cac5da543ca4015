package wm

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"themehint/internal/runner"
	"themehint/pkg/core"
)

// Backend names accepted by NewManager.
const (
	BackendXProp = "xprop"
	BackendXGB   = "xgb"
)

// Manager bundles the window directory with the property writer. Writes
// always go through xprop; the directory backend is selectable.
type Manager struct {
	Directory Directory
	Writer    PropertyWriter
}

// NewManager creates the window backends based on the session type and
// the requested directory backend.
func NewManager(backend string, run runner.Runner, log core.Logger) (*Manager, error) {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	display := os.Getenv("DISPLAY")
	log.Info("Session type detected", "session", sessionType, "display", display)

	if display == "" {
		return nil, fmt.Errorf("DISPLAY is not set: an X11 or XWayland display is required")
	}
	if sessionType == "wayland" {
		log.Warn("Wayland session detected, only XWayland windows can be themed")
	}

	if _, err := exec.LookPath("xprop"); err != nil {
		return nil, fmt.Errorf("xprop is required but was not found: %w", err)
	}
	xp := NewXProp(run, log)

	var dir Directory
	switch backend {
	case "", BackendXProp:
		dir = xp
	case BackendXGB:
		dir = NewXGB(display, log)
	default:
		return nil, fmt.Errorf("unsupported window directory backend: %s", backend)
	}

	log.Debug("Window manager initialized", "directory", dir.Name())
	return &Manager{Directory: dir, Writer: xp}, nil
}

// Close releases backend resources.
func (m *Manager) Close() error {
	if c, ok := m.Directory.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
