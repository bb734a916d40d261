package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultResetTokenTTL is how long a password-reset link stays usable.
const DefaultResetTokenTTL = time.Hour

// PasswordResetToken is a short-lived, single-use token mailed to the user
// as part of a reset link. Unlike sessions the value is stored in plaintext:
// it is delivered once over an out-of-band channel and expires quickly.
// At most one live token exists per user; issuing a new one deletes all
// prior tokens for that user first.
type PasswordResetToken struct {
	ID        uuid.UUID // Surrogate primary key.
	UserID    uuid.UUID // The user whose password this token may change.
	Token     string    // Opaque random value, 24 chars from the session alphabet.
	ExpiresAt time.Time // The token is unusable from this instant on.
	CreatedAt time.Time // When the token was issued.
}

// Expired reports whether the token is no longer usable at the given time.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
