package wm

import (
	"context"
	"errors"
)

var (
	// ErrQuery means the window list itself could not be obtained.
	ErrQuery = errors.New("window query failed")
	// ErrNoOwner means a window's owning process could not be determined.
	ErrNoOwner = errors.New("window has no owner pid")
)

// Handle identifies one top-level window, e.g. "0x00e00002".
type Handle string

func (h Handle) String() string {
	return string(h)
}

// Ownership pairs a window with the process that owns it.
type Ownership struct {
	Handle Handle
	PID    int
}

// Directory enumerates top-level windows and resolves their owners.
type Directory interface {
	// ListWindows returns every managed top-level window
	ListWindows(ctx context.Context) ([]Handle, error)
	// OwnerOf returns the PID that owns the window
	OwnerOf(ctx context.Context, h Handle) (int, error)
	// Name returns the backend name for logging
	Name() string
}

// PropertyWriter sets or removes the theme variant property on a window.
type PropertyWriter interface {
	SetVariant(ctx context.Context, h Handle, name string) error
	ClearVariant(ctx context.Context, h Handle) error
}
