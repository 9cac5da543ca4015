// Package appearance reads the desktop's dark-style preference from the
// freedesktop settings portal.
package appearance

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"themehint/internal/theme"
	"themehint/pkg/core"
)

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	settingsIface   = "org.freedesktop.portal.Settings"
	appearanceNS    = "org.freedesktop.appearance"
	colorSchemeKey  = "color-scheme"
	settingsRead    = settingsIface + ".Read"
	settingsChanged = "SettingChanged"
)

// Scheme is the portal's color-scheme value.
type Scheme uint32

const (
	NoPreference Scheme = iota
	PreferDark
	PreferLight
)

func (s Scheme) String() string {
	switch s {
	case PreferDark:
		return "prefer-dark"
	case PreferLight:
		return "prefer-light"
	default:
		return "no-preference"
	}
}

// Variant maps the preference onto a theme variant: dark when dark is
// preferred, otherwise the hint is removed.
func (s Scheme) Variant() theme.Variant {
	if s == PreferDark {
		return theme.Named("dark")
	}
	return theme.None
}

// Portal is a session bus connection to the settings portal.
type Portal struct {
	conn *dbus.Conn
	log  core.Logger
}

// ConnectPortal opens a private session bus connection.
func ConnectPortal(log core.Logger) (*Portal, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Portal{conn: conn, log: log}, nil
}

func (p *Portal) Close() error {
	return p.conn.Close()
}

// ColorScheme reads the current preference.
func (p *Portal) ColorScheme(ctx context.Context) (Scheme, error) {
	obj := p.conn.Object(portalDest, portalPath)
	var v dbus.Variant
	if err := obj.CallWithContext(ctx, settingsRead, 0, appearanceNS, colorSchemeKey).Store(&v); err != nil {
		return NoPreference, fmt.Errorf("failed to read %s.%s: %w", appearanceNS, colorSchemeKey, err)
	}
	return DecodeScheme(v)
}

// Watch calls fn for every color-scheme change until ctx is done.
func (p *Portal) Watch(ctx context.Context, fn func(Scheme)) error {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(portalPath),
		dbus.WithMatchInterface(settingsIface),
		dbus.WithMatchMember(settingsChanged),
		dbus.WithMatchArg(0, appearanceNS),
	}
	if err := p.conn.AddMatchSignal(opts...); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", settingsChanged, err)
	}

	signals := make(chan *dbus.Signal, 8)
	p.conn.Signal(signals)
	defer p.conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			scheme, matched := parseChange(sig)
			if !matched {
				continue
			}
			p.log.Debug("Color scheme changed", "scheme", scheme.String())
			fn(scheme)
		}
	}
}

func parseChange(sig *dbus.Signal) (Scheme, bool) {
	if sig == nil || sig.Name != settingsIface+"."+settingsChanged || len(sig.Body) != 3 {
		return NoPreference, false
	}
	ns, _ := sig.Body[0].(string)
	key, _ := sig.Body[1].(string)
	if ns != appearanceNS || key != colorSchemeKey {
		return NoPreference, false
	}
	v, ok := sig.Body[2].(dbus.Variant)
	if !ok {
		return NoPreference, false
	}
	scheme, err := DecodeScheme(v)
	return scheme, err == nil
}

// DecodeScheme unwraps the (possibly nested) variant returned by the
// portal. Settings.Read wraps the value in an extra variant.
func DecodeScheme(v dbus.Variant) (Scheme, error) {
	for {
		inner, ok := v.Value().(dbus.Variant)
		if !ok {
			break
		}
		v = inner
	}
	switch n := v.Value().(type) {
	case uint32:
		if n > uint32(PreferLight) {
			return NoPreference, nil
		}
		return Scheme(n), nil
	default:
		return NoPreference, fmt.Errorf("unexpected color-scheme value %v (%s)", v.Value(), v.Signature())
	}
}
