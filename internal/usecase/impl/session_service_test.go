package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
	"github.com/mhtoin/movieclub-start-sub000/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionServiceForTest(t *testing.T) (usecase.SessionUsecase, *fakeSessionRepo, *fakeUserRepo) {
	t.Helper()

	sessionRepo := newFakeSessionRepo()
	userRepo := newFakeUserRepo()
	svc := NewSessionService(SessionServiceParams{
		SessionRepo: sessionRepo,
		UserRepo:    userRepo,
		TokenGen:    &fakeTokenGen{},
		Logger:      discardLogger(),
	})

	return svc, sessionRepo, userRepo
}

func TestSessionService_CreateSession_ValidateRoundtrip(t *testing.T) {
	svc, _, _ := newSessionServiceForTest(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.CreateSession(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, created.Session)

	id, secret, found := strings.Cut(created.Token, ".")
	require.True(t, found)
	assert.Len(t, id, 24)
	assert.Len(t, secret, 24)
	assert.Equal(t, id, created.Session.ID)
	// Only the hash is stored, never the secret itself.
	assert.NotEqual(t, secret, created.Session.SecretHash)
	assert.Len(t, created.Session.SecretHash, 64)

	session, err := svc.ValidateSessionToken(ctx, created.Token)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, created.Session.ID, session.ID)
}

func TestSessionService_ValidateSessionToken_TamperedSecret(t *testing.T) {
	svc, sessionRepo, _ := newSessionServiceForTest(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, uuid.New())
	require.NoError(t, err)

	// Flip a single character in the secret half. The id half still resolves
	// a real row.
	tampered := []byte(created.Token)
	last := len(tampered) - 1
	if tampered[last] == 'a' {
		tampered[last] = 'b'
	} else {
		tampered[last] = 'a'
	}

	session, err := svc.ValidateSessionToken(ctx, string(tampered))
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.True(t, sessionRepo.has(created.Session.ID), "tampered token must not delete the session")
}

func TestSessionService_ValidateSessionToken_ExpiredLazyDelete(t *testing.T) {
	svc, sessionRepo, _ := newSessionServiceForTest(t)
	ctx := context.Background()

	secret := strings.Repeat("x", 24)
	expired := &entity.Session{
		ID:         strings.Repeat("k", 24),
		UserID:     uuid.New(),
		SecretHash: hashSecret(secret),
		CreatedAt:  time.Now().Add(-31 * 24 * time.Hour),
		ExpiresAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, sessionRepo.Create(ctx, expired))

	session, err := svc.ValidateSessionToken(ctx, expired.ID+"."+secret)
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.False(t, sessionRepo.has(expired.ID), "expired session should be deleted on validation")
}

func TestSessionService_ValidateSessionToken_ExpiredDeleteFailure(t *testing.T) {
	svc, sessionRepo, _ := newSessionServiceForTest(t)
	ctx := context.Background()

	secret := strings.Repeat("x", 24)
	expired := &entity.Session{
		ID:         strings.Repeat("k", 24),
		UserID:     uuid.New(),
		SecretHash: hashSecret(secret),
		CreatedAt:  time.Now().Add(-31 * 24 * time.Hour),
		ExpiresAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, sessionRepo.Create(ctx, expired))
	sessionRepo.deleteErr = errors.New("connection refused")

	session, err := svc.ValidateSessionToken(ctx, expired.ID+"."+secret)
	require.Error(t, err, "a failed lazy delete is a store failure, not an invalid token")
	assert.Nil(t, session)
}

func TestSessionService_ValidateSessionToken_Malformed(t *testing.T) {
	svc, sessionRepo, _ := newSessionServiceForTest(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", strings.Repeat("a", 48)},
		{"empty id half", "." + strings.Repeat("a", 24)},
		{"empty secret half", strings.Repeat("a", 24) + "."},
		{"short halves", "abc.def"},
		{"only separator", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.ValidateSessionToken(ctx, tt.token)
			require.NoError(t, err)
			assert.Nil(t, session)
		})
	}

	assert.Zero(t, sessionRepo.lookupCount(), "malformed tokens must not reach the store")
}

func TestSessionService_ValidateSessionToken_UnknownID(t *testing.T) {
	svc, _, _ := newSessionServiceForTest(t)
	ctx := context.Background()

	token := strings.Repeat("q", 24) + "." + strings.Repeat("r", 24)
	session, err := svc.ValidateSessionToken(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionService_ValidateSessionToken_StoreFailure(t *testing.T) {
	svc, sessionRepo, _ := newSessionServiceForTest(t)
	ctx := context.Background()

	sessionRepo.findErr = errors.New("connection refused")

	token := strings.Repeat("q", 24) + "." + strings.Repeat("r", 24)
	session, err := svc.ValidateSessionToken(ctx, token)
	require.Error(t, err)
	assert.Nil(t, session)
}

func TestSessionService_GetSessionUser(t *testing.T) {
	svc, _, userRepo := newSessionServiceForTest(t)
	ctx := context.Background()

	user := &entity.User{ID: uuid.New(), Email: "ada@example.com", Name: "Ada"}
	require.NoError(t, userRepo.Create(ctx, user))

	created, err := svc.CreateSession(ctx, user.ID)
	require.NoError(t, err)

	result, err := svc.GetSessionUser(ctx, created.Token)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, created.Session.ID, result.Session.ID)
}

func TestSessionService_GetSessionUser_DanglingUser(t *testing.T) {
	svc, _, _ := newSessionServiceForTest(t)
	ctx := context.Background()

	// Session exists but its user does not. Must yield absence, not an error.
	created, err := svc.CreateSession(ctx, uuid.New())
	require.NoError(t, err)

	result, err := svc.GetSessionUser(ctx, created.Token)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestSessionService_Logout_RevokesToken(t *testing.T) {
	svc, sessionRepo, _ := newSessionServiceForTest(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, created.Session.ID))
	assert.False(t, sessionRepo.has(created.Session.ID))

	session, err := svc.ValidateSessionToken(ctx, created.Token)
	require.NoError(t, err)
	assert.Nil(t, session, "a revoked token must never validate again")
}

func TestSessionService_MultipleSessionsPerUser(t *testing.T) {
	svc, _, _ := newSessionServiceForTest(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.CreateSession(ctx, userID)
	require.NoError(t, err)
	second, err := svc.CreateSession(ctx, userID)
	require.NoError(t, err)

	assert.NotEqual(t, first.Session.ID, second.Session.ID)

	// Revoking one session leaves the other intact.
	require.NoError(t, svc.Logout(ctx, first.Session.ID))

	session, err := svc.ValidateSessionToken(ctx, second.Token)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, userID, session.UserID)
}

func TestSplitSessionToken(t *testing.T) {
	id, secret, ok := splitSessionToken(strings.Repeat("a", 24) + "." + strings.Repeat("b", 24))
	require.True(t, ok)
	assert.Equal(t, strings.Repeat("a", 24), id)
	assert.Equal(t, strings.Repeat("b", 24), secret)

	_, _, ok = splitSessionToken(strings.Repeat("a", 24) + strings.Repeat("b", 24))
	assert.False(t, ok)
}

func TestHashSecret_Deterministic(t *testing.T) {
	assert.Equal(t, hashSecret("abc"), hashSecret("abc"))
	assert.NotEqual(t, hashSecret("abc"), hashSecret("abd"))
	assert.Len(t, hashSecret("anything"), 64)
}

func TestSecretHashEqual(t *testing.T) {
	assert.True(t, secretHashEqual("deadbeef", "deadbeef"))
	assert.False(t, secretHashEqual("deadbeef", "deadbeee"))
	assert.False(t, secretHashEqual("deadbeef", "deadbee"))
	assert.True(t, secretHashEqual("", ""))
}
