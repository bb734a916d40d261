package handler

import (
	"net/http"

	"github.com/mhtoin/movieclub-start-sub000/internal/delivery/http/middleware"
	"github.com/mhtoin/movieclub-start-sub000/internal/delivery/http/response"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// UserHandler holds dependencies for user-related handlers.
type UserHandler struct{}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me returns the authenticated user's profile. The auth middleware has
// already resolved the session.
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := c.Get(middleware.ContextKeyUser).(*entity.User)
	if !ok {
		return response.Unauthorized(c, "SESSION_INVALID", "authentication required")
	}

	return response.Success(c, http.StatusOK, toUserView(user), "")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
