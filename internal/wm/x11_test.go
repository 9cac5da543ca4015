package wm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"themehint/internal/runner"
	"themehint/pkg/logger"
)

type scriptedRunner struct {
	mu    sync.Mutex
	calls [][]string
	reply func(args []string) (runner.Result, error)
}

func (s *scriptedRunner) Run(ctx context.Context, name string, args ...string) (runner.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string{name}, args...))
	s.mu.Unlock()
	return s.reply(args)
}

func TestParseClientList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Handle
	}{
		{"comma separated", "0x00e00002, 0x00e00007 ", []Handle{"0x00e00002", "0x00e00007"}},
		{"empty", "", []Handle{}},
		{"xprop prefix", " window id # 0x1a00003, 0x2C00001\n", []Handle{"0x1a00003", "0x2C00001"}},
		{"trailing punctuation", "0x1;0x2.", []Handle{"0x1", "0x2"}},
		{"duplicates kept", "0xa, 0xa", []Handle{"0xa", "0xa"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseClientList(tt.in))
		})
	}
}

func TestParseWMPID(t *testing.T) {
	pid, err := ParseWMPID("_NET_WM_PID(CARDINAL) = 4821\n")
	require.NoError(t, err)
	assert.Equal(t, 4821, pid)

	_, err = ParseWMPID("_NET_WM_PID:  not found.\n")
	assert.ErrorIs(t, err, ErrNoOwner)

	_, err = ParseWMPID("_NET_WM_PID(CARDINAL) = \n")
	assert.ErrorIs(t, err, ErrNoOwner)
}

func TestXPropListWindows(t *testing.T) {
	run := &scriptedRunner{reply: func(args []string) (runner.Result, error) {
		return runner.Result{Stdout: "_NET_CLIENT_LIST(WINDOW): window id # 0x00e00002, 0x00e00007\n"}, nil
	}}
	x := NewXProp(run, logger.Nop())

	handles, err := x.ListWindows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Handle{"0x00e00002", "0x00e00007"}, handles)
	assert.Equal(t, [][]string{{"xprop", "-root", "_NET_CLIENT_LIST"}}, run.calls)
}

func TestXPropListWindowsEmptyIsNotAnError(t *testing.T) {
	run := &scriptedRunner{reply: func(args []string) (runner.Result, error) {
		return runner.Result{Stdout: "_NET_CLIENT_LIST(WINDOW): window id # \n"}, nil
	}}

	handles, err := NewXProp(run, logger.Nop()).ListWindows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, handles)
}

func TestXPropListWindowsFailures(t *testing.T) {
	tests := []struct {
		name string
		res  runner.Result
		err  error
	}{
		{"command fails", runner.Result{ExitCode: 1}, errors.New("exit status 1")},
		{"property missing", runner.Result{Stdout: "_NET_CLIENT_LIST:  not found.\n"}, nil},
		{"garbage", runner.Result{Stdout: "xprop: unable to open display ':9'\n"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &scriptedRunner{reply: func(args []string) (runner.Result, error) {
				return tt.res, tt.err
			}}
			_, err := NewXProp(run, logger.Nop()).ListWindows(context.Background())
			assert.ErrorIs(t, err, ErrQuery)
		})
	}
}

func TestXPropOwnerOf(t *testing.T) {
	run := &scriptedRunner{reply: func(args []string) (runner.Result, error) {
		switch args[1] {
		case "0x1":
			return runner.Result{Stdout: "_NET_WM_PID(CARDINAL) = 100\n"}, nil
		case "0x2":
			return runner.Result{Stdout: "_NET_WM_PID:  not found.\n"}, nil
		default:
			return runner.Result{ExitCode: 1}, errors.New("BadWindow")
		}
	}}
	x := NewXProp(run, logger.Nop())

	pid, err := x.OwnerOf(context.Background(), "0x1")
	require.NoError(t, err)
	assert.Equal(t, 100, pid)

	_, err = x.OwnerOf(context.Background(), "0x2")
	assert.ErrorIs(t, err, ErrNoOwner)

	_, err = x.OwnerOf(context.Background(), "0x3")
	assert.ErrorIs(t, err, ErrNoOwner)

	assert.Equal(t, []string{"xprop", "-id", "0x1", "_NET_WM_PID"}, run.calls[0])
}

func TestXPropVariantCommands(t *testing.T) {
	run := &scriptedRunner{reply: func(args []string) (runner.Result, error) {
		return runner.Result{}, nil
	}}
	x := NewXProp(run, logger.Nop())

	require.NoError(t, x.SetVariant(context.Background(), "0xabc", "dark"))
	require.NoError(t, x.ClearVariant(context.Background(), "0xabc"))

	assert.Equal(t,
		"xprop -id 0xabc -f _GTK_THEME_VARIANT 8u -set _GTK_THEME_VARIANT dark",
		strings.Join(run.calls[0], " "))
	assert.Equal(t,
		"xprop -id 0xabc -f _GTK_THEME_VARIANT 8u -remove _GTK_THEME_VARIANT",
		strings.Join(run.calls[1], " "))
}

func TestHandleRoundTrip(t *testing.T) {
	assert.Equal(t, Handle("0xe00002"), FormatHandle(0x00e00002))

	id, err := ParseHandle("0x00E00002")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00e00002), id)

	_, err = ParseHandle("e00002")
	assert.Error(t, err)
	_, err = ParseHandle("0xzz")
	assert.Error(t, err)
}
