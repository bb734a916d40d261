// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/mhtoin/movieclub-start-sub000/config"
	deliverycontext "github.com/mhtoin/movieclub-start-sub000/internal/delivery/context"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/repository"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/service"
	"github.com/mhtoin/movieclub-start-sub000/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// tokenPartLength is the length of each half of a bearer token. The token
// wire format is "{id}.{secret}" with both halves produced by the same
// generator.
const tokenPartLength = 24

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	tokenGen    service.TokenGenerator
	sessionTTL  time.Duration
	logger      *slog.Logger
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	SessionRepo repository.SessionRepository
	UserRepo    repository.UserRepository
	TokenGen    service.TokenGenerator
	Config      *config.Config
	Logger      *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	sessionTTL := entity.DefaultSessionTTL
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.SessionTTL > 0 {
		sessionTTL = params.Config.Auth.SessionTTL
	}

	return &sessionService{
		sessionRepo: params.SessionRepo,
		userRepo:    params.UserRepo,
		tokenGen:    params.TokenGen,
		sessionTTL:  sessionTTL,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateSession issues a new session for the user. The returned token is the
// only copy of the full secret; the database keeps a one-way hash.
func (srv *sessionService) CreateSession(ctx context.Context, userID uuid.UUID) (*usecase.SessionWithToken, error) {
	id := srv.tokenGen.GenerateID()
	secret := srv.tokenGen.GenerateID()

	now := time.Now()
	session := &entity.Session{
		ID:         id,
		UserID:     userID,
		SecretHash: hashSecret(secret),
		CreatedAt:  now,
		ExpiresAt:  now.Add(srv.sessionTTL),
	}

	if err := srv.sessionRepo.Create(ctx, session); err != nil {
		srv.log(ctx).Error("Failed to create session", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create session")
	}

	srv.log(ctx).Debug("Session created", slog.Any("userID", userID), slog.String("sessionID", session.ID))

	return &usecase.SessionWithToken{
		Session: session,
		Token:   id + "." + secret,
	}, nil
}

// ValidateSessionToken resolves a bearer token to its live session. Any form
// of invalidity returns (nil, nil); errors only surface store failures.
// Expired sessions are deleted on sight.
func (srv *sessionService) ValidateSessionToken(ctx context.Context, token string) (*entity.Session, error) {
	id, secret, ok := splitSessionToken(token)
	if !ok {
		// Malformed tokens never reach the store.
		return nil, nil
	}

	session, err := srv.sessionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to find session by id")
	}

	if session.Expired(time.Now()) {
		if err := srv.sessionRepo.Delete(ctx, session.ID); err != nil {
			srv.log(ctx).Error("Failed to delete expired session", slog.String("sessionID", session.ID), slog.Any("error", err))

			return nil, errors.Wrap(err, "failed to delete expired session")
		}

		return nil, nil
	}

	if !secretHashEqual(hashSecret(secret), session.SecretHash) {
		srv.log(ctx).Warn("Session secret mismatch", slog.String("sessionID", session.ID))

		return nil, nil
	}

	return session, nil
}

// GetSessionUser resolves a bearer token to the session and its owning user.
// It shares ValidateSessionToken's absence semantics.
func (srv *sessionService) GetSessionUser(ctx context.Context, token string) (*usecase.UserSession, error) {
	session, err := srv.ValidateSessionToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	user, err := srv.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// The owning user is gone; the session is worthless.
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to find session user")
	}

	return &usecase.UserSession{User: user, Session: session}, nil
}

// Logout removes the session row so the token can never validate again.
func (srv *sessionService) Logout(ctx context.Context, sessionID string) error {
	if err := srv.sessionRepo.Delete(ctx, sessionID); err != nil {
		srv.log(ctx).Error("Failed to delete session", slog.String("sessionID", sessionID), slog.Any("error", err))

		return errors.Wrap(err, "failed to delete session")
	}

	srv.log(ctx).Info("Session revoked", slog.String("sessionID", sessionID))

	return nil
}

// splitSessionToken parses the "{id}.{secret}" wire format. Both halves must
// be exactly tokenPartLength characters.
func splitSessionToken(token string) (id, secret string, ok bool) {
	id, secret, found := strings.Cut(token, ".")
	if !found || len(id) != tokenPartLength || len(secret) != tokenPartLength {
		return "", "", false
	}

	return id, secret, true
}

// hashSecret derives the stored form of a session secret.
func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))

	return hex.EncodeToString(sum[:])
}

// secretHashEqual compares two secret hashes in constant time.
func secretHashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
