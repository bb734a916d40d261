package repository

import (
	"context"
	"errors"

	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
)

// ErrSessionNotFound is returned when no session row exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines the store operations the session manager needs.
// The session id is the lookup key; the secret never reaches this layer in
// plaintext.
type SessionRepository interface {
	// Create persists a new session row.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session row by its public id.
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// Delete removes a session row by id. Deleting a missing row is not an error;
	// lazy expiry cleanup and logout may race with each other.
	Delete(ctx context.Context, id string) error
}
