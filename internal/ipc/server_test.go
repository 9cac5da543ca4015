package ipc

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"themehint/pkg/logger"
)

type recordingHandler struct {
	mu    sync.Mutex
	calls []string
}

func (h *recordingHandler) record(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, name)
}

func (h *recordingHandler) Started()   { h.record("start") }
func (h *recordingHandler) Activated() { h.record("activate") }
func (h *recordingHandler) Stopped()   { h.record("stop") }

func (h *recordingHandler) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.calls...)
}

// Unix socket paths are length limited, so avoid the long t.TempDir paths.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "th")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func startServer(t *testing.T, h Handler) (string, func()) {
	t.Helper()
	path := socketPath(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(path, h, logger.Nop()).Serve(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	return path, func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("server did not stop")
		}
	}
}

func TestServerDispatchesCommands(t *testing.T) {
	h := &recordingHandler{}
	path, stop := startServer(t, h)
	defer stop()

	for _, cmd := range []string{CommandStart, CommandActivate, CommandStop} {
		resp, err := SendCommand(path, cmd)
		require.NoError(t, err)
		assert.Equal(t, "success", resp.Status, cmd)
	}
	assert.Equal(t, []string{"start", "activate", "stop"}, h.snapshot())
}

func TestServerRejectsUnknownCommand(t *testing.T) {
	h := &recordingHandler{}
	path, stop := startServer(t, h)
	defer stop()

	resp, err := SendCommand(path, "reboot")
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.Empty(t, h.snapshot())
}

func TestServerRemovesSocketOnShutdown(t *testing.T) {
	path, stop := startServer(t, &recordingHandler{})
	stop()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestServerReplacesStaleSocket(t *testing.T) {
	path := socketPath(t)
	require.NoError(t, os.WriteFile(path, nil, 0600))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(path, &recordingHandler{}, logger.Nop()).Serve(ctx) }()

	require.Eventually(t, func() bool {
		_, err := SendCommand(path, CommandActivate)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestSendCommandWithoutServer(t *testing.T) {
	_, err := SendCommand(socketPath(t)+".missing", CommandActivate)
	assert.Error(t, err)
}
