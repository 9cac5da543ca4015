package app

import (
	"context"
	"sync"
	"time"

	"themehint/internal/theme"
	"themehint/pkg/core"
)

// Applier applies a variant to the application's windows.
type Applier interface {
	Apply(ctx context.Context, v theme.Variant) (*theme.BatchOutcome, error)
}

// VariantSource decides which variant an activation applies.
type VariantSource interface {
	Variant(ctx context.Context) (theme.Variant, error)
}

// Pass describes one finished apply pass.
type Pass struct {
	Trigger string
	Variant theme.Variant
	Outcome *theme.BatchOutcome
	Err     error
}

// Controller turns host lifecycle events into apply passes. Triggers
// never block the caller and never report errors back to it.
type Controller struct {
	applier  Applier
	log      core.Logger
	timeout  time.Duration
	teardown time.Duration

	mu      sync.RWMutex
	source  VariantSource
	stopped bool
	onPass  []func(Pass)

	wg sync.WaitGroup
}

// NewController creates a Controller. passTimeout bounds each activation
// pass, teardown bounds how long Stopped waits for the clear pass.
func NewController(applier Applier, source VariantSource, log core.Logger, passTimeout, teardown time.Duration) *Controller {
	return &Controller{
		applier:  applier,
		source:   source,
		log:      log,
		timeout:  passTimeout,
		teardown: teardown,
	}
}

// SetSource swaps the variant source, e.g. after a config reload.
func (c *Controller) SetSource(source VariantSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = source
}

// OnPass registers fn to be called after every pass.
func (c *Controller) OnPass(fn func(Pass)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPass = append(c.onPass, fn)
}

// Started handles application start. It re-arms triggers after a
// previous Stopped and then behaves like Activated.
func (c *Controller) Started() {
	c.mu.Lock()
	c.stopped = false
	c.mu.Unlock()
	c.log.Debug("Start trigger received")
	c.activate("start")
}

// Activated handles the application gaining focus.
func (c *Controller) Activated() {
	c.log.Debug("Activate trigger received")
	c.activate("activate")
}

func (c *Controller) activate(trigger string) {
	c.mu.RLock()
	source, stopped := c.source, c.stopped
	c.mu.RUnlock()
	if stopped {
		c.log.Debug("Ignoring trigger after stop", "trigger", trigger)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := c.passContext(c.timeout)
		defer cancel()

		v, err := source.Variant(ctx)
		if err != nil {
			c.log.Error("Failed to resolve theme variant", err, "trigger", trigger)
			return
		}
		c.run(ctx, trigger, v)
	}()
}

// Stopped removes the hint from all windows. It waits at most the
// teardown timeout; commands still running after that are abandoned.
func (c *Controller) Stopped() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	c.log.Debug("Stop trigger received")

	done := make(chan struct{})
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)
		ctx, cancel := c.passContext(c.teardown)
		defer cancel()
		c.run(ctx, "stop", theme.None)
	}()

	if c.teardown <= 0 {
		<-done
		return
	}
	select {
	case <-done:
	case <-time.After(c.teardown):
		c.log.Warn("Teardown timed out, some windows may keep the theme hint",
			"timeout", c.teardown.String())
	}
}

// Wait blocks until every pass started so far has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) passContext(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d)
}

func (c *Controller) run(ctx context.Context, trigger string, v theme.Variant) {
	outcome, err := c.applier.Apply(ctx, v)

	c.mu.RLock()
	observers := c.onPass
	c.mu.RUnlock()
	defer func() {
		p := Pass{Trigger: trigger, Variant: v, Outcome: outcome, Err: err}
		for _, fn := range observers {
			fn(p)
		}
	}()

	if err != nil {
		c.log.Error("Theme pass failed", err, "trigger", trigger, "variant", v.String())
		return
	}
	if outcome.HasFailures() {
		c.log.Warn("Theme pass finished with failures",
			"trigger", trigger,
			"batch", outcome.ID,
			"variant", v.String(),
			"windows", len(outcome.Handles),
			"failures", len(outcome.Failures),
			"error", outcome.Err().Error())
		return
	}
	c.log.Info("Theme pass finished",
		"trigger", trigger,
		"batch", outcome.ID,
		"variant", v.String(),
		"windows", len(outcome.Handles))
}
