package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a freshly minted session stays valid.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Session represents one authenticated browser session.
//
// The bearer token handed to the client is "{ID}.{secret}". Only the public
// ID half and a SHA-256 hash of the secret half are ever persisted; the
// plaintext secret exists exactly once, in the CreateSession return value.
type Session struct {
	ID         string    // Public lookup half of the token, 24 chars from the session alphabet.
	UserID     uuid.UUID // Owning user; the row is cascade-deleted with the user.
	SecretHash string    // Hex-encoded SHA-256 digest of the secret half. Never the secret itself.
	CreatedAt  time.Time // When the session was minted.
	ExpiresAt  time.Time // The session is invalid from this instant on.
}

// Expired reports whether the session is no longer valid at the given time.
// Validity is judged by wall clock at validation time; there is no background
// sweep, expired rows stay inert until the next validation touches them.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
