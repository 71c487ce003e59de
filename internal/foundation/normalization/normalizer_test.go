package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

type testEnum string

const (
	testAlpha testEnum = "alpha"
	testBeta  testEnum = "beta"
	testGamma testEnum = "gamma"
)

func newTestNormalizer() *Normalizer[testEnum] {
	return NewNormalizer("test enum", map[string]testEnum{
		"alpha": testAlpha,
		"Beta":  testBeta,
		"gamma": testGamma,
	}, testAlpha)
}

func TestNormalize(t *testing.T) {
	n := newTestNormalizer()
	tests := []struct {
		name  string
		input string
		want  testEnum
	}{
		{"exact match", "alpha", testAlpha},
		{"case insensitive", "ALPHA", testAlpha},
		{"mixed case key", "beta", testBeta},
		{"with spaces", "  gamma  ", testGamma},
		{"unknown falls back", "delta", testAlpha},
		{"empty falls back", "", testAlpha},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestNormalizeWithError(t *testing.T) {
	n := newTestNormalizer()

	v, err := n.NormalizeWithError(" GAMMA")
	require.NoError(t, err)
	assert.Equal(t, testGamma, v)

	v, err = n.NormalizeWithError("")
	require.NoError(t, err)
	assert.Equal(t, testAlpha, v)

	_, err = n.NormalizeWithError("delta")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	valid, _ := ce.Context().GetString("valid")
	assert.Equal(t, "alpha, beta, gamma", valid)
	assert.Contains(t, err.Error(), "invalid test enum")
}

func TestValidKeys(t *testing.T) {
	n := newTestNormalizer()
	keys := n.ValidKeys()
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, keys)

	keys[0] = "mutated"
	assert.Equal(t, "alpha", n.ValidKeys()[0])

	assert.True(t, n.IsValid("Beta "))
	assert.False(t, n.IsValid("delta"))
}
