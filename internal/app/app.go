package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"themehint/internal/appearance"
	"themehint/internal/correlate"
	"themehint/internal/ipc"
	"themehint/internal/process"
	"themehint/internal/runner"
	"themehint/internal/theme"
	"themehint/internal/wm"
	"themehint/pkg/config"
	"themehint/pkg/global"
	"themehint/pkg/logger"
	"themehint/pkg/notify"
)

// App wires the window directory, process identity, correlator and
// applier into a Controller, and owns the long-running trigger sources.
type App struct {
	log        *logger.Logger
	manager    *wm.Manager
	identity   process.Identity
	correlator *correlate.Correlator
	applier    *theme.Applier
	controller *Controller

	mu              sync.Mutex
	cfg             *config.Config
	variantOverride string
	portal          *appearance.Portal
}

// Option customizes an App.
type Option func(*App)

// WithVariantOverride pins the variant regardless of later config reloads.
func WithVariantOverride(variant string) Option {
	return func(a *App) {
		a.variantOverride = variant
	}
}

// New builds the application pipeline from cfg.
func New(cfg *config.Config, log *logger.Logger, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, log: log}
	for _, opt := range opts {
		opt(a)
	}
	if a.variantOverride != "" {
		a.cfg = cfg.WithVariant(a.variantOverride)
	}

	run := runner.NewExec(log,
		runner.WithTimeout(a.cfg.CommandTimeout()),
		runner.WithEnv(a.cfg.ForwardEnv()...),
	)

	manager, err := wm.NewManager(a.cfg.Directory(), run, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize window manager: %w", err)
	}
	a.manager = manager

	a.identity = process.New(a.cfg.TargetPID(), a.cfg.IncludeChildren(), log)
	a.correlator = correlate.New(manager.Directory, a.identity, a.cfg.MaxParallel())
	a.applier = theme.NewApplier(a.correlator, manager.Writer, log, a.cfg.MaxParallel())
	a.controller = NewController(a.applier, a.sourceFor(a.cfg), log, 0, a.cfg.TeardownTimeout())
	if a.cfg.NotifyFailures() {
		notifyRun := runner.NewExec(log,
			runner.WithTimeout(a.cfg.CommandTimeout()),
			runner.WithEnv("DBUS_SESSION_BUS_ADDRESS", "XDG_RUNTIME_DIR", "WAYLAND_DISPLAY"),
		)
		a.controller.OnPass(notifyOnFailure(notify.NewNotifyService(notifyRun, log, notify.DefaultCooldown)))
	}

	log.Info("Application initialized",
		"directory", manager.Directory.Name(),
		"variant", a.cfg.Variant(),
		"target_pid", a.cfg.TargetPID(),
		"include_children", a.cfg.IncludeChildren())
	return a, nil
}

// Controller returns the lifecycle controller.
func (a *App) Controller() *Controller {
	return a.controller
}

// Logger returns the application logger.
func (a *App) Logger() *logger.Logger {
	return a.log
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Variant resolves the configured variant once.
func (a *App) Variant(ctx context.Context) (theme.Variant, error) {
	a.mu.Lock()
	source := a.sourceForLocked(a.cfg)
	a.mu.Unlock()
	return source.Variant(ctx)
}

// Apply runs a single pass synchronously.
func (a *App) Apply(ctx context.Context, v theme.Variant) (*theme.BatchOutcome, error) {
	return a.applier.Apply(ctx, v)
}

// Windows returns the application's windows with their owner. With all
// set it returns every client window instead; owners that cannot be
// resolved are reported with PID 0.
func (a *App) Windows(ctx context.Context, all bool) ([]wm.Ownership, error) {
	var handles []wm.Handle
	var err error
	if all {
		handles, err = a.manager.Directory.ListWindows(ctx)
	} else {
		handles, err = a.correlator.Correlate(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]wm.Ownership, 0, len(handles))
	for _, h := range handles {
		pid, err := a.manager.Directory.OwnerOf(ctx, h)
		if err != nil {
			pid = 0
		}
		out = append(out, wm.Ownership{Handle: h, PID: pid})
	}
	return out, nil
}

// RunHeadless drives the controller from the trigger socket, the portal
// and config changes until ctx is done, then clears the hint.
func (a *App) RunHeadless(ctx context.Context) error {
	a.log.Info("Starting headless host", "socket", a.Config().SocketPath())

	a.controller.Started()
	err := a.ServeTriggers(ctx)
	a.controller.Stopped()
	return err
}

// ServeTriggers runs every background trigger source until ctx is done.
func (a *App) ServeTriggers(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	cfg := a.Config()

	g.Go(func() error {
		return ipc.NewServer(cfg.SocketPath(), a.controller, a.log).Serve(ctx)
	})

	if cfg.WatchConfig() && cfg.Path() != "" {
		g.Go(func() error {
			err := WatchFile(ctx, cfg.Path(), a.log, a.reload)
			if err != nil {
				a.log.Warn("Config watch disabled", "error", err.Error())
			}
			return nil
		})
	}

	if p := a.portalIfFollowing(); p != nil {
		g.Go(func() error {
			err := p.Watch(ctx, func(s appearance.Scheme) {
				a.log.Info("Desktop color scheme changed", "scheme", s.String())
				a.controller.Activated()
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				a.log.Warn("Portal watch stopped", "error", err.Error())
			}
			return nil
		})
	}

	return g.Wait()
}

// reload re-reads the config file. Only the variant takes effect without
// a restart.
func (a *App) reload() {
	a.mu.Lock()
	defer a.mu.Unlock()

	next, err := a.cfg.Reload()
	if err != nil {
		a.log.Error("Failed to reload config, keeping current settings", err, "path", a.cfg.Path())
		return
	}
	if a.variantOverride != "" {
		next = next.WithVariant(a.variantOverride)
	}
	if next.Variant() == a.cfg.Variant() {
		a.log.Debug("Config reloaded without variant change")
		a.cfg = next
		global.SetConfig(next)
		return
	}

	a.log.Info("Config reloaded", "variant", next.Variant())
	a.cfg = next
	global.SetConfig(next)
	a.controller.SetSource(a.sourceForLocked(next))
	a.controller.Activated()
}

func (a *App) sourceFor(cfg *config.Config) VariantSource {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sourceForLocked(cfg)
}

func (a *App) sourceForLocked(cfg *config.Config) VariantSource {
	if !cfg.IsAutoVariant() {
		return StaticVariant{V: theme.ParseVariant(cfg.Variant())}
	}
	if a.portal == nil {
		p, err := appearance.ConnectPortal(a.log)
		if err != nil {
			a.log.Warn("Settings portal unavailable, using dark variant", "error", err.Error())
			return StaticVariant{V: theme.Named("dark")}
		}
		a.portal = p
	}
	return NewPortalVariant(a.portal, theme.Named("dark"), a.log)
}

func (a *App) portalIfFollowing() *appearance.Portal {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.cfg.FollowPortal() || !a.cfg.IsAutoVariant() {
		return nil
	}
	return a.portal
}

// Close waits for in-flight passes and releases resources.
func (a *App) Close() error {
	a.controller.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()
	var err error
	if a.portal != nil {
		err = multierr.Append(err, a.portal.Close())
		a.portal = nil
	}
	return multierr.Append(err, a.manager.Close())
}

// Notifier shows desktop notifications.
type Notifier interface {
	Show(ctx context.Context, message string, nType notify.NotificationType) error
}

// notifyOnFailure reports failed passes. Stop passes are skipped since the
// host is going away.
func notifyOnFailure(n Notifier) func(Pass) {
	return func(p Pass) {
		if p.Trigger == "stop" {
			return
		}
		var msg string
		switch {
		case p.Err != nil:
			msg = fmt.Sprintf("Could not list windows: %v", p.Err)
		case p.Outcome != nil && p.Outcome.HasFailures():
			msg = fmt.Sprintf("Theme hint failed on %d of %d windows", len(p.Outcome.Failures), len(p.Outcome.Handles))
		default:
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = n.Show(ctx, msg, notify.Error)
	}
}
