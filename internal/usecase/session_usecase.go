package usecase

import (
	"context"

	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionWithToken pairs a freshly created session with its bearer token.
type SessionWithToken struct {
	Session *entity.Session
	Token   string
}

// UserSession is the resolved identity behind a validated session token.
type UserSession struct {
	User    *entity.User
	Session *entity.Session
}

// SessionUsecase manages opaque session tokens over their whole lifecycle.
//
// ValidateSessionToken treats invalidity as an absence value: a malformed,
// unknown, tampered or expired token yields (nil, nil). Errors are reserved
// for infrastructure failures.
type SessionUsecase interface {
	CreateSession(ctx context.Context, userID uuid.UUID) (*SessionWithToken, error)
	ValidateSessionToken(ctx context.Context, token string) (*entity.Session, error)
	GetSessionUser(ctx context.Context, token string) (*UserSession, error)
	Logout(ctx context.Context, sessionID string) error
}
