package impl

import (
	"context"
	"log/slog"
	"time"

	"github.com/mhtoin/movieclub-start-sub000/config"
	deliverycontext "github.com/mhtoin/movieclub-start-sub000/internal/delivery/context"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
	domainerrors "github.com/mhtoin/movieclub-start-sub000/internal/domain/errors"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/repository"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/service"
	"github.com/mhtoin/movieclub-start-sub000/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// passwordResetService implements the PasswordResetUsecase interface.
type passwordResetService struct {
	txManager     repository.TransactionManager
	userRepo      repository.UserRepository
	hasher        service.PasswordHasher
	tokenGen      service.TokenGenerator
	resetTokenTTL time.Duration
	logger        *slog.Logger
}

// PasswordResetServiceParams holds dependencies for passwordResetService, injected by Fx.
type PasswordResetServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Hasher    service.PasswordHasher
	TokenGen  service.TokenGenerator
	Config    *config.Config
	Logger    *slog.Logger
}

// NewPasswordResetService is the constructor for passwordResetService.
func NewPasswordResetService(params PasswordResetServiceParams) usecase.PasswordResetUsecase {
	resetTokenTTL := entity.DefaultResetTokenTTL
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.ResetTokenTTL > 0 {
		resetTokenTTL = params.Config.Auth.ResetTokenTTL
	}

	return &passwordResetService{
		txManager:     params.TxManager,
		userRepo:      params.UserRepo,
		hasher:        params.Hasher,
		tokenGen:      params.TokenGen,
		resetTokenTTL: resetTokenTTL,
		logger:        params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *passwordResetService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RequestPasswordReset issues a fresh reset token for the account behind the
// email. Prior tokens for the user are deleted in the same transaction, so at
// most one token is ever live. An unknown email yields an empty output, never
// an error, so callers cannot probe which addresses exist.
func (srv *passwordResetService) RequestPasswordReset(ctx context.Context, email string) (*usecase.RequestPasswordResetOutput, error) {
	srv.log(ctx).Info("Password reset requested", slog.String("email", email))

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Debug("Password reset for unknown email", slog.String("email", email))

			return &usecase.RequestPasswordResetOutput{}, nil
		}

		return nil, errors.Wrap(err, "failed to look up user for password reset")
	}

	now := time.Now()
	token := &entity.PasswordResetToken{
		UserID:    user.ID,
		Token:     srv.tokenGen.GenerateID(),
		CreatedAt: now,
		ExpiresAt: now.Add(srv.resetTokenTTL),
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		resetRepo := repoFactory.ResetTokenRepo()

		if err := resetRepo.DeleteByUserID(ctx, user.ID); err != nil {
			return errors.Wrap(err, "failed to delete prior reset tokens")
		}

		return resetRepo.Create(ctx, token)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute reset token transaction", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute reset token transaction")
	}

	srv.log(ctx).Debug("Reset token issued", slog.Any("userID", user.ID))

	return &usecase.RequestPasswordResetOutput{Token: token}, nil
}

// ResetPassword redeems a reset token for a new password. The token lookup,
// password update and token deletion run in one transaction; a token is
// consumed exactly once.
func (srv *passwordResetService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	srv.log(ctx).Info("Attempting password reset")

	// Hash before the transaction; bcrypt is CPU-bound.
	passwordHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during reset", slog.Any("error", err))

		return domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during reset")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		resetRepo := repoFactory.ResetTokenRepo()
		userRepo := repoFactory.UserRepo()

		token, findErr := resetRepo.FindByValue(ctx, input.Token)
		if findErr != nil {
			if errors.Is(findErr, repository.ErrResetTokenNotFound) {
				return domainerrors.ErrResetTokenInvalid.WrapMessage("reset token not found")
			}

			return errors.Wrap(findErr, "failed to find reset token")
		}

		if token.Expired(time.Now()) {
			return domainerrors.ErrResetTokenInvalid.WrapMessage("reset token expired")
		}

		user, loadErr := userRepo.FindByID(ctx, token.UserID)
		if loadErr != nil {
			return errors.Wrap(loadErr, "failed to load user for password reset")
		}

		user.PasswordHash = passwordHash
		if updateErr := userRepo.Update(ctx, user); updateErr != nil {
			return errors.Wrap(updateErr, "failed to update password")
		}

		return resetRepo.Delete(ctx, token.ID)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrResetTokenInvalid) {
			srv.log(ctx).Warn("Password reset rejected", slog.Any("error", err))

			return err
		}
		srv.log(ctx).Error("Failed to execute password reset transaction", slog.Any("error", err))

		return errors.Wrap(err, "failed to execute password reset transaction")
	}

	srv.log(ctx).Info("Password reset completed")

	return nil
}
