package appearance

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"themehint/internal/theme"
)

func TestDecodeScheme(t *testing.T) {
	tests := []struct {
		name string
		in   dbus.Variant
		want Scheme
	}{
		{"plain", dbus.MakeVariant(uint32(1)), PreferDark},
		{"nested", dbus.MakeVariant(dbus.MakeVariant(uint32(2))), PreferLight},
		{"no preference", dbus.MakeVariant(uint32(0)), NoPreference},
		{"unknown value", dbus.MakeVariant(uint32(9)), NoPreference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeScheme(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeScheme(dbus.MakeVariant("dark"))
	assert.Error(t, err)
}

func TestSchemeVariant(t *testing.T) {
	assert.Equal(t, theme.Named("dark"), PreferDark.Variant())
	assert.Equal(t, theme.None, PreferLight.Variant())
	assert.Equal(t, theme.None, NoPreference.Variant())
}

func TestParseChange(t *testing.T) {
	sig := &dbus.Signal{
		Name: "org.freedesktop.portal.Settings.SettingChanged",
		Body: []interface{}{"org.freedesktop.appearance", "color-scheme", dbus.MakeVariant(uint32(1))},
	}
	scheme, ok := parseChange(sig)
	require.True(t, ok)
	assert.Equal(t, PreferDark, scheme)

	other := &dbus.Signal{
		Name: "org.freedesktop.portal.Settings.SettingChanged",
		Body: []interface{}{"org.gnome.desktop.interface", "gtk-theme", dbus.MakeVariant("Adwaita")},
	}
	_, ok = parseChange(other)
	assert.False(t, ok)

	_, ok = parseChange(nil)
	assert.False(t, ok)
}
