package usecase

import (
	"context"

	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
)

// RequestPasswordResetOutput carries the freshly issued reset token. The
// token value is handed to the mail delivery path by the caller; it is nil
// when the email did not match any account, so callers can stay silent
// about which addresses exist.
type RequestPasswordResetOutput struct {
	Token *entity.PasswordResetToken
}

// ResetPasswordInput redeems a reset token for a new password.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// PasswordResetUsecase issues and redeems single-use password reset tokens.
type PasswordResetUsecase interface {
	RequestPasswordReset(ctx context.Context, email string) (*RequestPasswordResetOutput, error)
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error
}
