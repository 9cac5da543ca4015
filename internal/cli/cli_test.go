package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"themehint/internal/ipc"
	"themehint/internal/theme"
	"themehint/internal/wm"
	"themehint/pkg/config"
	"themehint/pkg/logger"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"run", "apply", "clear", "list", "send"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

func TestPrintOutcome(t *testing.T) {
	var out bytes.Buffer
	printOutcome(&out, &theme.BatchOutcome{
		Variant:  theme.Named("dark"),
		Handles:  []wm.Handle{"0x1", "0x2", "0x3"},
		Failures: []theme.ApplyError{{Handle: "0x2", Err: errors.New("BadWindow")}},
	})

	assert.Equal(t, "0x1\tdark\n0x2\tfailed\tBadWindow\n0x3\tdark\n3 windows, 1 failed\n", out.String())
}

func TestPrintWindows(t *testing.T) {
	var out bytes.Buffer
	printWindows(&out, []wm.Ownership{{Handle: "0x00e00002", PID: 4821}, {Handle: "0x00e00007"}})
	assert.Equal(t, "0x00e00002\t4821\n0x00e00007\t-\n", out.String())
}

func TestTargetFlags(t *testing.T) {
	cfg := config.DefaultConfig(logger.Nop())

	tests := []struct {
		name         string
		args         []string
		wantPID      int
		wantChildren bool
		unchanged    bool
	}{
		{name: "no flags keep config", unchanged: true},
		{name: "pid", args: []string{"--pid", "4821"}, wantPID: 4821, wantChildren: true},
		{name: "pid without children", args: []string{"--pid", "4821", "--children=false"}, wantPID: 4821},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}
			target := &targetFlags{}
			target.register(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))

			got := target.apply(cmd, cfg)
			if tt.unchanged {
				assert.Same(t, cfg, got)
				return
			}
			assert.Equal(t, tt.wantPID, got.TargetPID())
			assert.Equal(t, tt.wantChildren, got.IncludeChildren())
		})
	}
}

type countingHandler struct{ activated chan struct{} }

func (h countingHandler) Started()   {}
func (h countingHandler) Activated() { h.activated <- struct{}{} }
func (h countingHandler) Stopped()   {}

func TestSendCommand(t *testing.T) {
	dir, err := os.MkdirTemp("", "th")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	sock := filepath.Join(dir, "s.sock")
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("socket_path = %q\n[log]\nfile = \"\"\n", sock)), 0644))

	h := countingHandler{activated: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ipc.NewServer(sock, h, logger.Nop()).Serve(ctx) }()
	require.Eventually(t, func() bool {
		_, err := os.Stat(sock)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "send", "activate"})
	require.NoError(t, root.Execute())

	select {
	case <-h.activated:
	case <-time.After(time.Second):
		t.Fatal("activate was not delivered")
	}
	assert.Contains(t, out.String(), "scheduled")
}

func TestSendRejectsUnknownTrigger(t *testing.T) {
	root := NewRootCommand()
	root.SetArgs([]string{"send", "reboot"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}
