package wm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"themehint/pkg/core"
)

// XGB reads _NET_CLIENT_LIST and _NET_WM_PID over a native X connection.
// The connection is opened on first use and shared by concurrent lookups.
type XGB struct {
	display string
	log     core.Logger

	once    sync.Once
	conn    *xgb.Conn
	root    xproto.Window
	connErr error

	atomMu sync.Mutex
	atoms  map[string]xproto.Atom
}

func NewXGB(display string, log core.Logger) *XGB {
	return &XGB{display: display, log: log, atoms: make(map[string]xproto.Atom)}
}

func (x *XGB) Name() string {
	return "xgb"
}

func (x *XGB) connect() error {
	x.once.Do(func() {
		conn, err := xgb.NewConnDisplay(x.display)
		if err != nil {
			x.connErr = fmt.Errorf("failed to connect to X display %q: %w", x.display, err)
			return
		}
		x.conn = conn
		x.root = xproto.Setup(conn).DefaultScreen(conn).Root
		x.log.Debug("Connected to X server", "display", x.display)
	})
	return x.connErr
}

// Close releases the X connection.
func (x *XGB) Close() error {
	if x.conn != nil {
		x.conn.Close()
	}
	return nil
}

func (x *XGB) atom(name string) (xproto.Atom, error) {
	x.atomMu.Lock()
	defer x.atomMu.Unlock()

	if a, ok := x.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(x.conn, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("interning %s: %w", name, err)
	}
	x.atoms[name] = reply.Atom
	return reply.Atom, nil
}

func (x *XGB) ListWindows(ctx context.Context) ([]Handle, error) {
	if err := x.connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	atom, err := x.atom(clientListAtom)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if atom == xproto.AtomNone {
		return nil, fmt.Errorf("%w: %s not supported by window manager", ErrQuery, clientListAtom)
	}

	prop, err := xproto.GetProperty(x.conn, false, x.root, atom, xproto.AtomWindow, 0, 1<<16).Reply()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrQuery, clientListAtom, err)
	}
	if prop.Format != 32 && prop.ValueLen > 0 {
		return nil, fmt.Errorf("%w: unexpected %s format %d", ErrQuery, clientListAtom, prop.Format)
	}

	handles := make([]Handle, 0, prop.ValueLen)
	for i := 0; i+4 <= len(prop.Value); i += 4 {
		handles = append(handles, FormatHandle(xgb.Get32(prop.Value[i:])))
	}
	x.log.Debug("Listed windows", "backend", x.Name(), "count", len(handles))
	return handles, nil
}

func (x *XGB) OwnerOf(ctx context.Context, h Handle) (int, error) {
	if err := x.connect(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoOwner, err)
	}
	id, err := ParseHandle(h)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoOwner, err)
	}
	atom, err := x.atom(pidAtom)
	if err != nil || atom == xproto.AtomNone {
		return 0, ErrNoOwner
	}

	prop, err := xproto.GetProperty(x.conn, false, xproto.Window(id), atom, xproto.AtomCardinal, 0, 1).Reply()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoOwner, err)
	}
	if prop == nil || prop.ValueLen == 0 || len(prop.Value) < 4 {
		return 0, ErrNoOwner
	}
	return int(xgb.Get32(prop.Value)), nil
}

// FormatHandle renders a window id the way xprop prints it.
func FormatHandle(id uint32) Handle {
	return Handle(fmt.Sprintf("0x%x", id))
}

// ParseHandle converts a "0x..." handle back into a window id.
func ParseHandle(h Handle) (uint32, error) {
	s := strings.ToLower(string(h))
	if !strings.HasPrefix(s, "0x") {
		return 0, fmt.Errorf("invalid window handle %q", h)
	}
	id, err := strconv.ParseUint(s[2:], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window handle %q: %w", h, err)
	}
	return uint32(id), nil
}
