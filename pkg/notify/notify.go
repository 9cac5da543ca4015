package notify

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"themehint/internal/runner"
	"themehint/pkg/core"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	Error NotificationType = iota
	Info
)

const title = "themehint"

// DefaultCooldown limits how often repeated notifications are shown.
const DefaultCooldown = time.Minute

type notificationTool struct {
	name      string
	buildArgs func(message string, nType NotificationType) []string
}

var notificationTools = []notificationTool{
	{
		name: "dunstify",
		buildArgs: func(message string, nType NotificationType) []string {
			urgency, summary := urgencyFor(nType)
			return []string{"-u", urgency, "-t", "5000", summary, message}
		},
	},
	{
		name: "notify-send",
		buildArgs: func(message string, nType NotificationType) []string {
			urgency, summary := urgencyFor(nType)
			return []string{"-u", urgency, summary, message}
		},
	},
}

func urgencyFor(nType NotificationType) (string, string) {
	if nType == Error {
		return "critical", title + " Error"
	}
	return "normal", title
}

// NotifyService shows desktop notifications through the first available
// notification tool, falling back to the log.
type NotifyService struct {
	run      runner.Runner
	log      core.Logger
	lookPath func(string) (string, error)
	cooldown time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// NewNotifyService creates a new notification service.
func NewNotifyService(run runner.Runner, log core.Logger, cooldown time.Duration) *NotifyService {
	return &NotifyService{
		run:      run,
		log:      log,
		lookPath: exec.LookPath,
		cooldown: cooldown,
		last:     make(map[string]time.Time),
	}
}

// Show displays a notification. Identical messages within the cooldown
// are dropped.
func (n *NotifyService) Show(ctx context.Context, message string, nType NotificationType) error {
	if !n.admit(message) {
		n.log.Debug("Notification suppressed by cooldown", "message", message)
		return nil
	}

	for _, tool := range notificationTools {
		if _, err := n.lookPath(tool.name); err != nil {
			continue
		}
		if _, err := n.run.Run(ctx, tool.name, tool.buildArgs(message, nType)...); err != nil {
			n.log.Warn("Notification tool failed", "tool", tool.name, "error", err.Error())
			continue
		}
		n.log.Debug("Notification sent", "tool", tool.name)
		return nil
	}

	// Last resort: log only
	n.log.Warn("No notification tool available", "message", message)
	return fmt.Errorf("no notification tool available")
}

func (n *NotifyService) admit(message string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := time.Now()
	if last, ok := n.last[message]; ok && now.Sub(last) < n.cooldown {
		return false
	}
	n.last[message] = now
	return true
}
