package repository

import (
	"context"
	"errors"

	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrResetTokenNotFound is returned when no reset token matches a value.
var ErrResetTokenNotFound = errors.New("password reset token not found")

// ResetTokenRepository defines the operations for password-reset tokens.
type ResetTokenRepository interface {
	// Create persists a new reset token.
	Create(ctx context.Context, token *entity.PasswordResetToken) error

	// FindByValue retrieves a reset token by its opaque value.
	FindByValue(ctx context.Context, value string) (*entity.PasswordResetToken, error)

	// Delete removes a single reset token by its id.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByUserID removes all reset tokens belonging to a user, keeping the
	// at-most-one-live-token invariant when a new token is issued.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
