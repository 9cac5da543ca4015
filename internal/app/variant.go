package app

import (
	"context"

	"themehint/internal/appearance"
	"themehint/internal/theme"
	"themehint/pkg/core"
)

// StaticVariant always yields the same variant.
type StaticVariant struct {
	V theme.Variant
}

func (s StaticVariant) Variant(ctx context.Context) (theme.Variant, error) {
	return s.V, nil
}

// SchemeReader reads the desktop color-scheme preference.
type SchemeReader interface {
	ColorScheme(ctx context.Context) (appearance.Scheme, error)
}

// PortalVariant follows the desktop dark-style preference. When the
// portal cannot be read it falls back to the given variant.
type PortalVariant struct {
	reader   SchemeReader
	fallback theme.Variant
	log      core.Logger
}

func NewPortalVariant(reader SchemeReader, fallback theme.Variant, log core.Logger) *PortalVariant {
	return &PortalVariant{reader: reader, fallback: fallback, log: log}
}

func (p *PortalVariant) Variant(ctx context.Context) (theme.Variant, error) {
	scheme, err := p.reader.ColorScheme(ctx)
	if err != nil {
		p.log.Warn("Falling back to default variant", "error", err.Error(), "fallback", p.fallback.String())
		return p.fallback, nil
	}
	return scheme.Variant(), nil
}
