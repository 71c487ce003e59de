// Package normalization turns loosely written configuration strings into typed enum values.
package normalization

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// Normalizer maps case- and whitespace-insensitive strings onto values of T.
type Normalizer[T comparable] struct {
	name         string
	values       map[string]T
	defaultValue T
	keys         []string
}

// NewNormalizer builds a normalizer for the enum called name. Keys are cleaned the
// same way input is, so "JSON" and "json" are equivalent.
func NewNormalizer[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	n := &Normalizer[T]{
		name:         name,
		values:       make(map[string]T, len(values)),
		defaultValue: defaultValue,
		keys:         make([]string, 0, len(values)),
	}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	slices.Sort(n.keys)
	return n
}

// Normalize returns the value for raw, or the default when raw is unknown or empty.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// NormalizeWithError is Normalize for validation: an empty string yields the default,
// an unknown one a validation error listing the accepted keys.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	cleaned := clean(raw)
	if cleaned == "" {
		return n.defaultValue, nil
	}
	if v, ok := n.values[cleaned]; ok {
		return v, nil
	}
	var zero T
	return zero, errors.ValidationError("invalid "+n.name).
		WithContext("value", raw).
		WithContext("valid", strings.Join(n.keys, ", ")).
		Build()
}

// IsValid reports whether raw names a known value.
func (n *Normalizer[T]) IsValid(raw string) bool {
	_, ok := n.values[clean(raw)]
	return ok
}

// ValidKeys returns the accepted keys in sorted order.
func (n *Normalizer[T]) ValidKeys() []string {
	return slices.Clone(n.keys)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
