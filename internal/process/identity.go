// Package process reports which process IDs belong to the themed
// application.
package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	psproc "github.com/shirou/gopsutil/v4/process"

	"themehint/pkg/core"
)

// ErrNoProcess means the target process does not exist.
var ErrNoProcess = errors.New("target process not found")

// Set is a set of process IDs.
type Set map[int]struct{}

// NewSet builds a Set from pids.
func NewSet(pids ...int) Set {
	s := make(Set, len(pids))
	for _, pid := range pids {
		s[pid] = struct{}{}
	}
	return s
}

func (s Set) Contains(pid int) bool {
	_, ok := s[pid]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for pid := range s {
		out = append(out, pid)
	}
	sort.Ints(out)
	return out
}

// Identity reports the PIDs of the application whose windows are themed.
type Identity interface {
	ProcessIDs(ctx context.Context) (Set, error)
}

// Self identifies the running process only.
type Self struct{}

func (Self) ProcessIDs(ctx context.Context) (Set, error) {
	return NewSet(os.Getpid()), nil
}

// Tree identifies a root process and, optionally, all of its descendants.
type Tree struct {
	root     int
	children bool
	log      core.Logger
}

// NewTree creates a Tree rooted at pid.
func NewTree(pid int, includeChildren bool, log core.Logger) *Tree {
	return &Tree{root: pid, children: includeChildren, log: log}
}

func (t *Tree) ProcessIDs(ctx context.Context) (Set, error) {
	root, err := psproc.NewProcessWithContext(ctx, int32(t.root))
	if err != nil {
		return nil, fmt.Errorf("%w: pid %d: %v", ErrNoProcess, t.root, err)
	}

	set := NewSet(t.root)
	if !t.children {
		return set, nil
	}

	queue := []*psproc.Process{root}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		children, err := p.ChildrenWithContext(ctx)
		if err != nil {
			// ErrorNoChildren, or the process exited while walking
			continue
		}
		for _, c := range children {
			pid := int(c.Pid)
			if set.Contains(pid) {
				continue
			}
			set[pid] = struct{}{}
			queue = append(queue, c)
		}
	}

	t.log.Debug("Resolved process tree", "root", t.root, "pids", set.Sorted())
	return set, nil
}

// New returns Self when pid is zero or the current process, otherwise a Tree.
func New(pid int, includeChildren bool, log core.Logger) Identity {
	if (pid == 0 || pid == os.Getpid()) && !includeChildren {
		return Self{}
	}
	if pid == 0 {
		pid = os.Getpid()
	}
	return NewTree(pid, includeChildren, log)
}
