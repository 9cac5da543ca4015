package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"themehint/internal/appearance"
	"themehint/internal/theme"
	"themehint/pkg/logger"
)

type fixedScheme struct {
	scheme appearance.Scheme
	err    error
}

func (f fixedScheme) ColorScheme(ctx context.Context) (appearance.Scheme, error) {
	return f.scheme, f.err
}

func TestPortalVariant(t *testing.T) {
	tests := []struct {
		name   string
		reader fixedScheme
		want   theme.Variant
	}{
		{"prefer dark", fixedScheme{scheme: appearance.PreferDark}, theme.Named("dark")},
		{"prefer light", fixedScheme{scheme: appearance.PreferLight}, theme.None},
		{"no preference", fixedScheme{scheme: appearance.NoPreference}, theme.None},
		{"portal error falls back", fixedScheme{err: errors.New("no portal")}, theme.Named("dark")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPortalVariant(tt.reader, theme.Named("dark"), logger.Nop())
			got, err := p.Variant(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaticVariant(t *testing.T) {
	got, err := StaticVariant{V: theme.None}.Variant(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsNone())
}
