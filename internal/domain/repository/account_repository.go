package repository

import (
	"context"
	"errors"

	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
)

// ErrAccountNotFound is returned when no OAuth account link matches.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository defines the operations for linked OAuth identities.
type AccountRepository interface {
	// Create persists a new account link. A duplicate (provider,
	// providerAccountID) pair violates the storage unique constraint.
	Create(ctx context.Context, account *entity.Account) error

	// FindByProvider retrieves the link for a provider identity, if any.
	FindByProvider(ctx context.Context, provider entity.Provider, providerAccountID string) (*entity.Account, error)
}
