package config

import (
	"strings"

	"github.com/spf13/viper"
)

// PropertyStore is a flat key lookup over loaded configuration. Keys use
// dotted names such as "httpAccess.proxyHost".
type PropertyStore interface {
	// GetProperty returns the raw value for key, or "" when absent.
	GetProperty(key string) string
	// GetPropertyBool returns true when the value equals "true" (any case),
	// false for any other present value, and def when the key is absent or blank.
	GetPropertyBool(key string, def bool) bool
}

// ViperProperties adapts a viper instance to PropertyStore. Lookups are
// case-insensitive, as viper keys are.
type ViperProperties struct {
	v *viper.Viper
}

var _ PropertyStore = (*ViperProperties)(nil)

// NewViperProperties wraps an existing viper instance.
func NewViperProperties(v *viper.Viper) *ViperProperties {
	return &ViperProperties{v: v}
}

// GetProperty implements PropertyStore.
func (p *ViperProperties) GetProperty(key string) string {
	if !p.v.IsSet(key) {
		return ""
	}
	return p.v.GetString(key)
}

// GetPropertyBool implements PropertyStore.
func (p *ViperProperties) GetPropertyBool(key string, def bool) bool {
	return parseBool(p.GetProperty(key), def)
}

// MapProperties is a static PropertyStore, handy for tests and embedding.
type MapProperties map[string]string

var _ PropertyStore = MapProperties(nil)

// GetProperty implements PropertyStore.
func (m MapProperties) GetProperty(key string) string {
	return m[key]
}

// GetPropertyBool implements PropertyStore.
func (m MapProperties) GetPropertyBool(key string, def bool) bool {
	return parseBool(m[key], def)
}

func parseBool(raw string, def bool) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	return strings.EqualFold(raw, "true")
}
