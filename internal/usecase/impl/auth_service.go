package impl

import (
	"context"
	"log/slog"

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

// authService implements the AuthUsecase interface.
type authService struct {
	txManager      repository.TransactionManager
	userRepo       repository.UserRepository
	accountRepo    repository.AccountRepository
	hasher         service.PasswordHasher
	googleVerifier service.OAuthVerifier
	sessions       usecase.SessionUsecase
	logger         *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	UserRepo       repository.UserRepository
	AccountRepo    repository.AccountRepository
	Hasher         service.PasswordHasher
	GoogleVerifier service.OAuthVerifier
	Sessions       usecase.SessionUsecase
	Config         *config.Config
	Logger         *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:      params.TxManager,
		userRepo:       params.UserRepo,
		accountRepo:    params.AccountRepo,
		hasher:         params.Hasher,
		googleVerifier: params.GoogleVerifier,
		sessions:       params.Sessions,
		logger:         params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new email/password account and opens its first session.
// An already-taken email is a recoverable outcome, not an infrastructure
// failure; the storage unique constraint backstops the lookup so a
// registration race loser sees the same result.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	// Hash before the transaction; bcrypt is CPU-bound.
	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during registration")
	}

	newUser := &entity.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: passwordHash,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, findErr := userRepo.FindByEmail(ctx, input.Email)
		if findErr == nil {
			return domainerrors.ErrEmailTaken.WrapMessage("email already registered")
		}
		if !errors.Is(findErr, repository.ErrUserNotFound) {
			return errors.Wrap(findErr, "failed to look up email during registration")
		}

		return userRepo.Create(ctx, newUser)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrEmailTaken) {
			srv.log(ctx).Warn("Registration rejected, email taken", slog.String("email", input.Email))

			return nil, err
		}
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", newUser.ID))

	return srv.openSession(ctx, newUser)
}

// Login authenticates an email/password pair. Unknown email, OAuth-only
// account and wrong password all collapse into the same generic failure.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to look up user during login")
	}

	if !user.HasPassword() || !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	srv.log(ctx).Debug("Login succeeded", slog.Any("userID", user.ID))

	return srv.openSession(ctx, user)
}

// GoogleCallback signs a user in via a verified Google ID token, creating
// the user and account rows atomically on first sight of the identity.
func (srv *authService) GoogleCallback(ctx context.Context, input *usecase.GoogleCallbackInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Info("Handling Google callback")

	identity, err := srv.googleVerifier.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		srv.log(ctx).Warn("Google ID token rejected", slog.Any("error", err))

		return nil, domainerrors.ErrOAuthTokenInvalid.WrapMessage("failed to verify Google ID token")
	}

	user, err := srv.findOrCreateOAuthUser(ctx, identity, input)
	if err != nil {
		return nil, err
	}

	return srv.openSession(ctx, user)
}

// findOrCreateOAuthUser resolves a provider identity to a user, creating
// user and account together in one transaction when the identity is new.
// Partial creation must never be observable.
func (srv *authService) findOrCreateOAuthUser(ctx context.Context, identity *service.OAuthIdentity, input *usecase.GoogleCallbackInput) (*entity.User, error) {
	var user *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()
		userRepo := repoFactory.UserRepo()

		account, findErr := accountRepo.FindByProvider(ctx, identity.Provider, identity.Subject)
		if findErr == nil {
			existing, loadErr := userRepo.FindByID(ctx, account.UserID)
			if loadErr != nil {
				return errors.Wrap(loadErr, "failed to load user for existing account")
			}
			user = existing

			return nil
		}
		if !errors.Is(findErr, repository.ErrAccountNotFound) {
			return errors.Wrap(findErr, "failed to look up provider account")
		}

		srv.log(ctx).Info("Provider identity not seen before, creating user", slog.String("provider", string(identity.Provider)))

		newUser := &entity.User{
			Email: identity.Email,
			Name:  identity.Name,
			Image: identity.Picture,
		}
		if createErr := userRepo.Create(ctx, newUser); createErr != nil {
			return errors.Wrap(createErr, "failed to create user for provider identity")
		}

		newAccount := &entity.Account{
			UserID:            newUser.ID,
			Provider:          identity.Provider,
			ProviderAccountID: identity.Subject,
			AccessToken:       input.AccessToken,
			RefreshToken:      input.RefreshToken,
			TokenExpiresAt:    input.TokenExpiresAt,
		}
		if createErr := accountRepo.Create(ctx, newAccount); createErr != nil {
			return errors.Wrap(createErr, "failed to create provider account")
		}

		user = newUser

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute OAuth sign-in transaction", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute OAuth sign-in transaction")
	}

	return user, nil
}

// LinkAccount attaches a verified provider identity to an existing,
// already-authenticated user. Only the account row is inserted; the unique
// (provider, providerAccountId) index rejects identities linked elsewhere.
func (srv *authService) LinkAccount(ctx context.Context, input *usecase.LinkAccountInput) error {
	srv.log(ctx).Info("Linking provider account", slog.Any("userID", input.UserID))

	identity, err := srv.googleVerifier.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		srv.log(ctx).Warn("Google ID token rejected during link", slog.Any("error", err))

		return domainerrors.ErrOAuthTokenInvalid.WrapMessage("failed to verify Google ID token")
	}

	account := &entity.Account{
		UserID:            input.UserID,
		Provider:          identity.Provider,
		ProviderAccountID: identity.Subject,
		AccessToken:       input.AccessToken,
		RefreshToken:      input.RefreshToken,
		TokenExpiresAt:    input.TokenExpiresAt,
	}

	// Single insert, no transaction needed.
	if err := srv.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, domainerrors.ErrAccountAlreadyLinked) {
			srv.log(ctx).Warn("Provider account already linked", slog.Any("userID", input.UserID))

			return err
		}
		srv.log(ctx).Error("Failed to link provider account", slog.Any("userID", input.UserID), slog.Any("error", err))

		return errors.Wrap(err, "failed to link provider account")
	}

	srv.log(ctx).Info("Provider account linked", slog.Any("userID", input.UserID))

	return nil
}

// openSession mints a session for an authenticated user and packages the
// full auth result.
func (srv *authService) openSession(ctx context.Context, user *entity.User) (*usecase.AuthOutput, error) {
	created, err := srv.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	return &usecase.AuthOutput{
		User:         user,
		Session:      created.Session,
		SessionToken: created.Token,
	}, nil
}
