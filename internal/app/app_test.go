package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"themehint/internal/theme"
	"themehint/internal/wm"
	"themehint/pkg/notify"
)

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Show(ctx context.Context, message string, nType notify.NotificationType) error {
	r.messages = append(r.messages, message)
	return nil
}

func TestNotifyOnFailure(t *testing.T) {
	failed := &theme.BatchOutcome{
		Handles:  []wm.Handle{"0x1", "0x2", "0x3"},
		Failures: []theme.ApplyError{{Handle: "0x2", Err: errors.New("BadWindow")}},
	}
	clean := &theme.BatchOutcome{Handles: []wm.Handle{"0x1"}}

	tests := []struct {
		name string
		pass Pass
		want []string
	}{
		{"query failure", Pass{Trigger: "activate", Err: errors.New("xprop: not found")}, []string{"Could not list windows: xprop: not found"}},
		{"window failures", Pass{Trigger: "start", Outcome: failed}, []string{"Theme hint failed on 1 of 3 windows"}},
		{"clean pass", Pass{Trigger: "activate", Outcome: clean}, nil},
		{"stop is silent", Pass{Trigger: "stop", Outcome: failed}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}
			notifyOnFailure(n)(tt.pass)
			assert.Equal(t, tt.want, n.messages)
		})
	}
}
