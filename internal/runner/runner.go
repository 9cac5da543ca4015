// Package runner executes external commands with a filtered environment
// and captures their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"themehint/pkg/core"
)

// DefaultEnvKeys are the only variables forwarded to spawned commands
// unless more are requested.
var DefaultEnvKeys = []string{"DISPLAY", "PATH"}

// Result is the captured outcome of one command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs one external command and waits for it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// CommandError reports a command that could not start, timed out or
// exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%v (%s)", e.Err, e.Command)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Exec runs commands through os/exec.
type Exec struct {
	env     []string
	timeout time.Duration
	log     core.Logger
}

type Option func(*Exec)

// WithTimeout bounds every command. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Exec) {
		e.timeout = d
	}
}

// WithEnv forwards the given variables from the current environment in
// addition to DefaultEnvKeys.
func WithEnv(keys ...string) Option {
	return func(e *Exec) {
		e.env = FilterEnv(os.Environ(), append(append([]string{}, DefaultEnvKeys...), keys...)...)
	}
}

// NewExec creates an Exec runner.
func NewExec(log core.Logger, opts ...Option) *Exec {
	e := &Exec{
		env: FilterEnv(os.Environ(), DefaultEnvKeys...),
		log: log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exec) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = e.env
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		cmdErr := &CommandError{
			Command:  cmd.String(),
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
			Err:      err,
		}
		e.log.Debug("Command failed",
			"command", cmdErr.Command,
			"exit_code", res.ExitCode,
			"error", err.Error())
		return res, cmdErr
	}
	return res, nil
}

// FilterEnv keeps only the named variables from environ, in environ order.
func FilterEnv(environ []string, keys ...string) []string {
	keep := make(map[string]bool, len(keys))
	for _, k := range keys {
		keep[k] = true
	}
	out := make([]string, 0, len(keys))
	for _, kv := range environ {
		k, _, ok := strings.Cut(kv, "=")
		if ok && keep[k] {
			out = append(out, kv)
		}
	}
	return out
}

// IsTimeout reports whether err came from a command that hit its deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
