package theme

import "strings"

// Variant is an optional GTK theme variant name. The zero value means
// "no variant": the property is removed.
type Variant struct {
	name string
}

// None clears the variant.
var None = Variant{}

// Named returns a variant that sets name. An empty name is None.
func Named(name string) Variant {
	return Variant{name: strings.TrimSpace(name)}
}

// Name returns the variant name and whether one is set.
func (v Variant) Name() (string, bool) {
	return v.name, v.name != ""
}

func (v Variant) IsNone() bool {
	return v.name == ""
}

func (v Variant) String() string {
	if v.IsNone() {
		return "none"
	}
	return v.name
}

// ParseVariant reads a configured variant. "", "none" and "default"
// clear the property.
func ParseVariant(s string) Variant {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "default":
		return None
	}
	return Named(s)
}
