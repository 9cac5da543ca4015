package wm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"themehint/internal/runner"
	"themehint/pkg/core"
)

const (
	clientListAtom   = "_NET_CLIENT_LIST"
	clientListMarker = "_NET_CLIENT_LIST(WINDOW)"
	pidAtom          = "_NET_WM_PID"
	pidMarker        = "_NET_WM_PID(CARDINAL)"

	// VariantAtom is the property GTK reads the theme variant from.
	VariantAtom = "_GTK_THEME_VARIANT"
)

var (
	handlePattern = regexp.MustCompile(`(?i)0x[0-9a-f]+`)
	pidPattern    = regexp.MustCompile(`\d+`)
)

// XProp talks to the X server through the xprop binary.
type XProp struct {
	run runner.Runner
	log core.Logger
}

func NewXProp(run runner.Runner, log core.Logger) *XProp {
	return &XProp{run: run, log: log}
}

func (x *XProp) Name() string {
	return "xprop"
}

func (x *XProp) ListWindows(ctx context.Context) ([]Handle, error) {
	res, err := x.run.Run(ctx, "xprop", "-root", clientListAtom)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	idx := strings.Index(res.Stdout, clientListMarker)
	if idx < 0 {
		return nil, fmt.Errorf("%w: unexpected xprop output %q", ErrQuery, strings.TrimSpace(res.Stdout))
	}

	handles := ParseClientList(res.Stdout[idx+len(clientListMarker):])
	x.log.Debug("Listed windows", "backend", x.Name(), "count", len(handles))
	return handles, nil
}

func (x *XProp) OwnerOf(ctx context.Context, h Handle) (int, error) {
	res, err := x.run.Run(ctx, "xprop", "-id", string(h), pidAtom)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoOwner, err)
	}
	return ParseWMPID(res.Stdout)
}

func (x *XProp) SetVariant(ctx context.Context, h Handle, name string) error {
	_, err := x.run.Run(ctx, "xprop", SetVariantArgs(h, name)...)
	return err
}

func (x *XProp) ClearVariant(ctx context.Context, h Handle) error {
	_, err := x.run.Run(ctx, "xprop", ClearVariantArgs(h)...)
	return err
}

// SetVariantArgs builds the xprop arguments that set the variant as an
// 8-bit UTF-8 string.
func SetVariantArgs(h Handle, name string) []string {
	return []string{"-id", string(h), "-f", VariantAtom, "8u", "-set", VariantAtom, name}
}

// ClearVariantArgs builds the xprop arguments that remove the variant.
func ClearVariantArgs(h Handle) []string {
	return []string{"-id", string(h), "-f", VariantAtom, "8u", "-remove", VariantAtom}
}

// ParseClientList extracts window handles from xprop output. Separators
// and trailing punctuation around the tokens are ignored.
func ParseClientList(out string) []Handle {
	tokens := handlePattern.FindAllString(out, -1)
	handles := make([]Handle, 0, len(tokens))
	for _, tok := range tokens {
		handles = append(handles, Handle(tok))
	}
	return handles
}

// ParseWMPID returns the first integer after the _NET_WM_PID(CARDINAL)
// marker.
func ParseWMPID(out string) (int, error) {
	idx := strings.Index(out, pidMarker)
	if idx < 0 {
		return 0, ErrNoOwner
	}
	tok := pidPattern.FindString(out[idx+len(pidMarker):])
	if tok == "" {
		return 0, fmt.Errorf("%w: no pid after %s", ErrNoOwner, pidMarker)
	}
	pid, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoOwner, err)
	}
	return pid, nil
}
