// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"

	"github.com/mhtoin/movieclub-start-sub000/internal/domain/service"
)

// tokenAlphabet is the 32-symbol set used for session ids, session secrets
// and reset-token values: lowercase letters and digits minus the visually
// confusable l, o, 0 and 1. 32 symbols means exactly 5 bits per character.
const tokenAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"

const (
	// tokenEntropyBytes is the raw randomness drawn per identifier.
	// 15 bytes = 120 bits, which divides evenly into 5-bit chunks.
	tokenEntropyBytes = 15

	// TokenLength is the resulting identifier length: 120 / 5 symbols.
	TokenLength = 24
)

type tokenGenerator struct{}

// NewTokenGenerator is the constructor for the session-alphabet generator.
// It returns the implementation as a service.TokenGenerator interface.
func NewTokenGenerator() service.TokenGenerator {
	return tokenGenerator{}
}

// GenerateID draws 15 bytes from crypto/rand and maps the bitstream,
// top-to-bottom in 5-bit chunks, onto the token alphabet.
func (tokenGenerator) GenerateID() string {
	var raw [tokenEntropyBytes]byte
	if _, err := rand.Read(raw[:]); err != nil {
		// The secure random source is assumed always available; there is no
		// sane way to continue minting credentials without it.
		panic(err)
	}

	var out [TokenLength]byte
	for i := range out {
		bit := i * 5
		// A 16-bit window guarantees the 5-bit chunk is fully covered even
		// when it straddles a byte boundary.
		window := int(raw[bit/8]) << 8
		if bit/8+1 < tokenEntropyBytes {
			window |= int(raw[bit/8+1])
		}
		out[i] = tokenAlphabet[(window>>(11-bit%8))&31]
	}

	return string(out[:])
}
