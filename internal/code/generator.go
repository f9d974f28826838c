package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Generator defines the interface for voucher code generation.
type Generator interface {
	// Generate produces a new voucher code. Codes are high-entropy
	// identifiers, not security tokens; global uniqueness is enforced by
	// the store's unique constraint, and callers retry on collision.
	Generate() (string, error)
}

const (
	// DefaultPrefix is prepended to every generated code.
	DefaultPrefix = "VP"

	// DefaultSuffixLength is the number of random characters after the prefix.
	DefaultSuffixLength = 8

	// alphabet excludes 0/O and 1/I so codes stay readable over the phone.
	alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// randomGenerator produces codes from crypto/rand over a fixed alphabet.
type randomGenerator struct {
	prefix       string
	suffixLength int
}

// NewGenerator creates a code generator with the given prefix and suffix
// length. With the default 8-character suffix over a 32-character alphabet
// the code space is 32^8 (~1.1e12), so collisions across any realistic
// issuance volume are negligible.
func NewGenerator(prefix string, suffixLength int) Generator {
	return &randomGenerator{
		prefix:       prefix,
		suffixLength: suffixLength,
	}
}

// NewDefaultGenerator creates a generator with the standard VP prefix.
func NewDefaultGenerator() Generator {
	return NewGenerator(DefaultPrefix, DefaultSuffixLength)
}

// Generate returns a code of the form prefix + fixed-length random suffix.
func (g *randomGenerator) Generate() (string, error) {
	var sb strings.Builder
	sb.Grow(len(g.prefix) + g.suffixLength)
	sb.WriteString(g.prefix)

	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < g.suffixLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		sb.WriteByte(alphabet[n.Int64()])
	}

	return sb.String(), nil
}
