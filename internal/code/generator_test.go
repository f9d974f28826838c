package code

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate_Format(t *testing.T) {
	gen := NewDefaultGenerator()

	code, err := gen.Generate()
	require.NoError(t, err)

	assert.Len(t, code, len(DefaultPrefix)+DefaultSuffixLength)
	assert.True(t, strings.HasPrefix(code, DefaultPrefix))

	for _, c := range code[len(DefaultPrefix):] {
		assert.Contains(t, alphabet, string(c))
	}
}

func TestGenerator_Generate_CustomPrefixAndLength(t *testing.T) {
	tests := []struct {
		name         string
		prefix       string
		suffixLength int
	}{
		{
			name:         "Short suffix",
			prefix:       "XX",
			suffixLength: 4,
		},
		{
			name:         "Long suffix",
			prefix:       "PROMO",
			suffixLength: 16,
		},
		{
			name:         "Empty prefix",
			prefix:       "",
			suffixLength: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(tt.prefix, tt.suffixLength)

			code, err := gen.Generate()
			require.NoError(t, err)
			assert.Len(t, code, len(tt.prefix)+tt.suffixLength)
			assert.True(t, strings.HasPrefix(code, tt.prefix))
		})
	}
}

func TestGenerator_Generate_NoAmbiguousCharacters(t *testing.T) {
	gen := NewDefaultGenerator()

	for i := 0; i < 100; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)

		assert.NotContains(t, code[len(DefaultPrefix):], "0")
		assert.NotContains(t, code[len(DefaultPrefix):], "O")
		assert.NotContains(t, code[len(DefaultPrefix):], "1")
		assert.NotContains(t, code[len(DefaultPrefix):], "I")
	}
}

func TestGenerator_Generate_Distinct(t *testing.T) {
	gen := NewDefaultGenerator()

	// Not a uniqueness guarantee, but 1000 draws from a ~1.1e12 space
	// colliding would indicate a broken random source.
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)

		_, dup := seen[code]
		assert.False(t, dup, "duplicate code generated: %s", code)
		seen[code] = struct{}{}
	}
}
