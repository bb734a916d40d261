// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mhtoin/movieclub-start-sub000/config"
	"github.com/mhtoin/movieclub-start-sub000/internal/delivery/http/middleware"
	"github.com/mhtoin/movieclub-start-sub000/internal/delivery/http/response"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
	"github.com/mhtoin/movieclub-start-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for the credential-flow handlers.
type AuthHandler struct {
	authUC   usecase.AuthUsecase
	resetUC  usecase.PasswordResetUsecase
	sessions usecase.SessionUsecase
	cfg      *config.Config
	logger   *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(
	authUC usecase.AuthUsecase,
	resetUC usecase.PasswordResetUsecase,
	sessions usecase.SessionUsecase,
	cfg *config.Config,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUC:   authUC,
		resetUC:  resetUC,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleCallbackRequest struct {
	IDToken        string     `json:"idToken" validate:"required"`
	AccessToken    string     `json:"accessToken"`
	RefreshToken   string     `json:"refreshToken"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt"`
}

type linkAccountRequest struct {
	IDToken        string     `json:"idToken" validate:"required"`
	AccessToken    string     `json:"accessToken"`
	RefreshToken   string     `json:"refreshToken"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// userView is the public shape of a user; the password hash never leaves
// the server.
type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

func toUserView(user *entity.User) userView {
	return userView{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
		Image: user.Image,
	}
}

// Register handles new account creation with email and password.
func (h *AuthHandler) Register(c echo.Context) error {
	var input registerRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	output, err := h.authUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:    input.Email,
		Name:     input.Name,
		Password: input.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookie(c, output.SessionToken, output.Session.ExpiresAt)

	return response.Success(c, http.StatusCreated, toUserView(output.User), "User registered successfully")
}

// Login handles the email/password login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var input loginRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	output, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookie(c, output.SessionToken, output.Session.ExpiresAt)

	return response.Success(c, http.StatusOK, toUserView(output.User), "Login successful")
}

// Logout revokes the current session and clears the cookie. The response is
// the same whether or not a live session was attached, so the endpoint leaks
// nothing about token validity.
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := h.readSessionCookie(c); token != "" {
		session, err := h.sessions.ValidateSessionToken(c.Request().Context(), token)
		if err != nil {
			return errors.WithStack(err)
		}
		if session != nil {
			if err := h.sessions.Logout(c.Request().Context(), session.ID); err != nil {
				return errors.WithStack(err)
			}
		}
	}

	h.clearSessionCookie(c)

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// GoogleCallback signs a user in with a Google ID token, creating the user
// on first sight.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	var input googleCallbackRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid callback input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	output, err := h.authUC.GoogleCallback(c.Request().Context(), &usecase.GoogleCallbackInput{
		IDToken:        input.IDToken,
		AccessToken:    input.AccessToken,
		RefreshToken:   input.RefreshToken,
		TokenExpiresAt: input.TokenExpiresAt,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookie(c, output.SessionToken, output.Session.ExpiresAt)

	return response.Success(c, http.StatusOK, toUserView(output.User), "Login successful")
}

// LinkAccount attaches a Google identity to the authenticated user.
func (h *AuthHandler) LinkAccount(c echo.Context) error {
	var input linkAccountRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid link input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	user, ok := c.Get(middleware.ContextKeyUser).(*entity.User)
	if !ok {
		return response.Unauthorized(c, "SESSION_INVALID", "authentication required")
	}

	err := h.authUC.LinkAccount(c.Request().Context(), &usecase.LinkAccountInput{
		UserID:         user.ID,
		IDToken:        input.IDToken,
		AccessToken:    input.AccessToken,
		RefreshToken:   input.RefreshToken,
		TokenExpiresAt: input.TokenExpiresAt,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Account linked successfully")
}

// RequestPasswordReset issues a reset token for the given email. The reply
// is identical for known and unknown addresses.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var input passwordResetRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reset request input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	// TODO: hand the issued token to the mail sender once the notification
	// service lands. Issuance is never logged so requests cannot be tied
	// to an address.
	if _, err := h.resetUC.RequestPasswordReset(c.Request().Context(), input.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "If the email exists, a reset link has been sent")
}

// ConfirmPasswordReset redeems a reset token for a new password.
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var input passwordResetConfirmRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reset input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	err := h.resetUC.ResetPassword(c.Request().Context(), &usecase.ResetPasswordInput{
		Token:       input.Token,
		NewPassword: input.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password updated successfully")
}

func (h *AuthHandler) cookieName() string {
	if h.cfg != nil && h.cfg.Auth != nil && h.cfg.Auth.CookieName != "" {
		return h.cfg.Auth.CookieName
	}

	return config.DefaultSessionCookieName
}

func (h *AuthHandler) secureCookie() bool {
	return h.cfg != nil && h.cfg.Auth != nil && h.cfg.Auth.SecureCookie
}

func (h *AuthHandler) readSessionCookie(c echo.Context) string {
	cookie, err := c.Cookie(h.cookieName())
	if err != nil {
		return ""
	}

	return cookie.Value
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName(),
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie(),
		SameSite: http.SameSiteLaxMode,
	})
}
