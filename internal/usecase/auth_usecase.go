// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"time"

	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"

	"github.com/google/uuid"
)

// RegisterInput carries the credentials for a new email/password account.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// LoginInput carries the credentials for an email/password login.
type LoginInput struct {
	Email    string
	Password string
}

// GoogleCallbackInput carries the tokens returned by Google's OAuth flow.
type GoogleCallbackInput struct {
	IDToken        string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt *time.Time
}

// LinkAccountInput links an external provider identity to an existing user.
type LinkAccountInput struct {
	UserID         uuid.UUID
	IDToken        string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt *time.Time
}

// AuthOutput is the result of any flow that establishes a session. The
// SessionToken is the only place the full bearer token ever appears; the
// stored session keeps just the hash of its secret half.
type AuthOutput struct {
	User         *entity.User
	Session      *entity.Session
	SessionToken string
}

// AuthUsecase defines the credential flows that establish or extend identity.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	GoogleCallback(ctx context.Context, input *GoogleCallbackInput) (*AuthOutput, error)
	LinkAccount(ctx context.Context, input *LinkAccountInput) error
}
