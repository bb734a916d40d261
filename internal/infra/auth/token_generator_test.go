package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenGenerator_LengthAndAlphabet(t *testing.T) {
	gen := NewTokenGenerator()

	for range 200 {
		id := gen.GenerateID()
		require.Len(t, id, TokenLength)

		for _, r := range id {
			assert.True(t, strings.ContainsRune(tokenAlphabet, r),
				"character %q outside the token alphabet in %q", r, id)
		}
	}
}

func TestTokenGenerator_ExcludesConfusableCharacters(t *testing.T) {
	assert.Len(t, tokenAlphabet, 32)

	for _, banned := range "lo01" {
		assert.NotContains(t, tokenAlphabet, string(banned))
	}
}

func TestTokenGenerator_Uniqueness(t *testing.T) {
	gen := NewTokenGenerator()

	seen := make(map[string]struct{}, 10000)
	for range 10000 {
		id := gen.GenerateID()
		_, dup := seen[id]
		require.False(t, dup, "generator produced duplicate id %q", id)
		seen[id] = struct{}{}
	}
}
