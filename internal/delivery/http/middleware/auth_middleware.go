package middleware

import (
	"strings"

	"github.com/mhtoin/movieclub-start-sub000/config"
	"github.com/mhtoin/movieclub-start-sub000/internal/delivery/http/response"
	"github.com/mhtoin/movieclub-start-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUser      = "user"
	ContextKeySession   = "session"
	ContextKeyUserID    = "userID"
	ContextKeySessionID = "sessionID"
)

// AuthMiddleware authenticates requests by resolving the opaque session
// token carried in the session cookie, or an Authorization bearer header
// for non-browser clients.
type AuthMiddleware struct {
	sessions   usecase.SessionUsecase
	cookieName string
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(sessions usecase.SessionUsecase, cfg *config.Config) *AuthMiddleware {
	cookieName := config.DefaultSessionCookieName
	if cfg != nil && cfg.Auth != nil && cfg.Auth.CookieName != "" {
		cookieName = cfg.Auth.CookieName
	}

	return &AuthMiddleware{sessions: sessions, cookieName: cookieName}
}

// Authenticate validates the session token and stores the resolved user and
// session on the request context. Missing, malformed, expired and forged
// tokens all produce the same 401.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := m.extractToken(c)
		if token == "" {
			return response.Unauthorized(c, "SESSION_INVALID", "authentication required")
		}

		result, err := m.sessions.GetSessionUser(c.Request().Context(), token)
		if err != nil {
			return err
		}
		if result == nil {
			return response.Unauthorized(c, "SESSION_INVALID", "invalid or expired session")
		}

		c.Set(ContextKeyUser, result.User)
		c.Set(ContextKeySession, result.Session)
		c.Set(ContextKeyUserID, result.User.ID)
		c.Set(ContextKeySessionID, result.Session.ID)

		return next(c)
	}
}

// extractToken prefers the session cookie and falls back to a bearer header.
func (m *AuthMiddleware) extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader {
		return token
	}

	return ""
}
