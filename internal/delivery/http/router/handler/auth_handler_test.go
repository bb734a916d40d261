package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mhtoin/movieclub-start-sub000/internal/delivery/http/validator"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
	"github.com/mhtoin/movieclub-start-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResetUsecase issues a token for known addresses and stays silent for
// the rest, like the real service.
type fakeResetUsecase struct {
	known map[string]bool
}

func (f *fakeResetUsecase) RequestPasswordReset(_ context.Context, email string) (*usecase.RequestPasswordResetOutput, error) {
	if !f.known[email] {
		return &usecase.RequestPasswordResetOutput{}, nil
	}

	return &usecase.RequestPasswordResetOutput{
		Token: &entity.PasswordResetToken{
			Token:     strings.Repeat("t", 24),
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}, nil
}

func (f *fakeResetUsecase) ResetPassword(_ context.Context, _ *usecase.ResetPasswordInput) error {
	return nil
}

func doResetRequest(t *testing.T, h *AuthHandler, email string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()

	req := httptest.NewRequest(http.MethodPost, "/auth/password-reset/request", strings.NewReader(`{"email":"`+email+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.RequestPasswordReset(e.NewContext(req, rec)))

	return rec
}

// Known and unknown addresses must produce byte-identical replies, so the
// endpoint cannot be used to probe which emails are registered.
func TestAuthHandler_RequestPasswordReset_UniformResponse(t *testing.T) {
	resetUC := &fakeResetUsecase{known: map[string]bool{"member@example.com": true}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewAuthHandler(nil, resetUC, nil, nil, logger)

	knownRec := doResetRequest(t, h, "member@example.com")
	unknownRec := doResetRequest(t, h, "stranger@example.com")

	assert.Equal(t, http.StatusOK, knownRec.Code)
	assert.Equal(t, knownRec.Code, unknownRec.Code)
	assert.Equal(t, knownRec.Body.String(), unknownRec.Body.String())
}
