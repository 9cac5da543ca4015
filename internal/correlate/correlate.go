// Package correlate matches open windows to the processes of the themed
// application.
package correlate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"themehint/internal/process"
	"themehint/internal/wm"
)

// Correlator computes which windows belong to the application.
type Correlator struct {
	dir   wm.Directory
	ids   process.Identity
	limit int
}

// New creates a Correlator. A positive limit caps concurrent owner
// lookups; zero leaves them unbounded.
func New(dir wm.Directory, ids process.Identity, limit int) *Correlator {
	return &Correlator{dir: dir, ids: ids, limit: limit}
}

// Correlate returns the handles, in enumeration order, whose owner PID
// belongs to the application. Owner lookups that fail exclude their
// window and nothing else.
func (c *Correlator) Correlate(ctx context.Context) ([]wm.Handle, error) {
	var (
		owners []lookup
		pids   process.Set
	)

	var g errgroup.Group
	g.Go(func() error {
		handles, err := c.dir.ListWindows(ctx)
		if err != nil {
			return err
		}
		owners = c.resolveOwners(ctx, handles)
		return nil
	})
	g.Go(func() error {
		set, err := c.ids.ProcessIDs(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve application pids: %w", err)
		}
		pids = set
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matched := make([]wm.Handle, 0, len(owners))
	for _, o := range owners {
		if o.ok && pids.Contains(o.PID) {
			matched = append(matched, o.Handle)
		}
	}
	return matched, nil
}

type lookup struct {
	wm.Ownership
	ok bool
}

func (c *Correlator) resolveOwners(ctx context.Context, handles []wm.Handle) []lookup {
	out := make([]lookup, len(handles))

	var g errgroup.Group
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}
	for i, h := range handles {
		i, h := i, h
		g.Go(func() error {
			pid, err := c.dir.OwnerOf(ctx, h)
			out[i] = lookup{Ownership: wm.Ownership{Handle: h, PID: pid}, ok: err == nil}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
