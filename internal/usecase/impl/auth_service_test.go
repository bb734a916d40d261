package impl

import (
	"context"
	"testing"

	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
	domainerrors "github.com/mhtoin/movieclub-start-sub000/internal/domain/errors"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/service"
	"github.com/mhtoin/movieclub-start-sub000/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authServiceEnv struct {
	svc         usecase.AuthUsecase
	sessions    usecase.SessionUsecase
	userRepo    *fakeUserRepo
	sessionRepo *fakeSessionRepo
	accountRepo *fakeAccountRepo
	verifier    *fakeOAuthVerifier
}

func newAuthServiceForTest(t *testing.T) *authServiceEnv {
	t.Helper()

	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	accountRepo := newFakeAccountRepo()
	resetRepo := newFakeResetTokenRepo()
	factory := &fakeRepoFactory{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		accountRepo: accountRepo,
		resetRepo:   resetRepo,
	}
	verifier := &fakeOAuthVerifier{}

	sessions := NewSessionService(SessionServiceParams{
		SessionRepo: sessionRepo,
		UserRepo:    userRepo,
		TokenGen:    &fakeTokenGen{},
		Logger:      discardLogger(),
	})

	svc := NewAuthService(AuthServiceParams{
		TxManager:      &fakeTxManager{factory: factory},
		UserRepo:       userRepo,
		AccountRepo:    accountRepo,
		Hasher:         fakeHasher{},
		GoogleVerifier: verifier,
		Sessions:       sessions,
		Logger:         discardLogger(),
	})

	return &authServiceEnv{
		svc:         svc,
		sessions:    sessions,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		accountRepo: accountRepo,
		verifier:    verifier,
	}
}

func (env *authServiceEnv) seedUser(t *testing.T, email, password string) *entity.User {
	t.Helper()

	user := &entity.User{ID: uuid.New(), Email: email, Name: "Seeded"}
	if password != "" {
		hash, err := fakeHasher{}.Hash(password)
		require.NoError(t, err)
		user.PasswordHash = hash
	}
	require.NoError(t, env.userRepo.Create(context.Background(), user))

	return user
}

func TestAuthService_Register_Success(t *testing.T) {
	env := newAuthServiceForTest(t)
	ctx := context.Background()

	out, err := env.svc.Register(ctx, &usecase.RegisterInput{
		Email:    "new@example.com",
		Name:     "New User",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotNil(t, out.User)
	assert.NotEqual(t, uuid.Nil, out.User.ID)

	// The stored password is the hash, never the plaintext.
	stored, err := env.userRepo.FindByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
	assert.True(t, fakeHasher{}.Check("hunter22", stored.PasswordHash))

	// Registration ends with a live session.
	session, err := env.sessions.ValidateSessionToken(ctx, out.SessionToken)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, out.User.ID, session.UserID)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	env := newAuthServiceForTest(t)
	ctx := context.Background()
	env.seedUser(t, "taken@example.com", "whatever")

	out, err := env.svc.Register(ctx, &usecase.RegisterInput{
		Email:    "taken@example.com",
		Name:     "Imposter",
		Password: "password",
	})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailTaken))
}

func TestAuthService_Login_Success(t *testing.T) {
	env := newAuthServiceForTest(t)
	ctx := context.Background()
	user := env.seedUser(t, "ada@example.com", "correct horse")

	out, err := env.svc.Login(ctx, &usecase.LoginInput{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)

	session, err := env.sessions.ValidateSessionToken(ctx, out.SessionToken)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, user.ID, session.UserID)
}

func TestAuthService_Login_FailuresIndistinguishable(t *testing.T) {
	env := newAuthServiceForTest(t)
	ctx := context.Background()
	env.seedUser(t, "ada@example.com", "correct horse")
	env.seedUser(t, "oauth-only@example.com", "")

	tests := []struct {
		name  string
		input *usecase.LoginInput
	}{
		{"unknown email", &usecase.LoginInput{Email: "nobody@example.com", Password: "correct horse"}},
		{"wrong password", &usecase.LoginInput{Email: "ada@example.com", Password: "wrong"}},
		{"account without password", &usecase.LoginInput{Email: "oauth-only@example.com", Password: "anything"}},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.svc.Login(ctx, tt.input)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
			messages = append(messages, domainerrors.ErrInvalidCredentials.Message())
		})
	}

	// One generic message for every failure mode.
	for _, msg := range messages {
		assert.Equal(t, "invalid email or password", msg)
	}
}

func TestAuthService_GoogleCallback_NewUser(t *testing.T) {
	env := newAuthServiceForTest(t)
	ctx := context.Background()
	env.verifier.identity = &service.OAuthIdentity{
		Provider:      entity.ProviderGoogle,
		Subject:       "google-sub-1",
		Email:         "g@example.com",
		EmailVerified: true,
		Name:          "G User",
		Picture:       "https://example.com/avatar.png",
	}

	out, err := env.svc.GoogleCallback(ctx, &usecase.GoogleCallbackInput{IDToken: "raw-id-token"})
	require.NoError(t, err)
	require.NotNil(t, out.User)
	assert.Equal(t, "g@example.com", out.User.Email)
	assert.False(t, out.User.HasPassword())

	// Both rows exist: the user and its provider account.
	account, err := env.accountRepo.FindByProvider(ctx, entity.ProviderGoogle, "google-sub-1")
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, account.UserID)

	session, err := env.sessions.ValidateSessionToken(ctx, out.SessionToken)
	require.NoError(t, err)
	require.NotNil(t, session)
}

func TestAuthService_GoogleCallback_ExistingAccount(t *testing.T) {
	env := newAuthServiceForTest(t)
	ctx := context.Background()
	user := env.seedUser(t, "g@example.com", "")
	require.NoError(t, env.accountRepo.Create(ctx, &entity.Account{
		UserID:            user.ID,
		Provider:          entity.ProviderGoogle,
		ProviderAccountID: "google-sub-1",
	}))
	env.verifier.identity = &service.OAuthIdentity{
		Provider: entity.ProviderGoogle,
		Subject:  "google-sub-1",
		Email:    "g@example.com",
	}

	out, err := env.svc.GoogleCallback(ctx, &usecase.GoogleCallbackInput{IDToken: "raw-id-token"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)
}

func TestAuthService_GoogleCallback_InvalidToken(t *testing.T) {
	env := newAuthServiceForTest(t)
	env.verifier.err = errors.New("audience mismatch")

	out, err := env.svc.GoogleCallback(context.Background(), &usecase.GoogleCallbackInput{IDToken: "bogus"})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthTokenInvalid))
}

func TestAuthService_LinkAccount(t *testing.T) {
	env := newAuthServiceForTest(t)
	ctx := context.Background()
	user := env.seedUser(t, "ada@example.com", "correct horse")
	env.verifier.identity = &service.OAuthIdentity{
		Provider: entity.ProviderGoogle,
		Subject:  "google-sub-2",
		Email:    "ada@example.com",
	}

	err := env.svc.LinkAccount(ctx, &usecase.LinkAccountInput{
		UserID:  user.ID,
		IDToken: "raw-id-token",
	})
	require.NoError(t, err)

	account, err := env.accountRepo.FindByProvider(ctx, entity.ProviderGoogle, "google-sub-2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, account.UserID)
}

func TestAuthService_LinkAccount_AlreadyLinked(t *testing.T) {
	env := newAuthServiceForTest(t)
	ctx := context.Background()
	first := env.seedUser(t, "first@example.com", "pw")
	second := env.seedUser(t, "second@example.com", "pw")
	env.verifier.identity = &service.OAuthIdentity{
		Provider: entity.ProviderGoogle,
		Subject:  "google-sub-3",
	}

	require.NoError(t, env.svc.LinkAccount(ctx, &usecase.LinkAccountInput{UserID: first.ID, IDToken: "t"}))

	err := env.svc.LinkAccount(ctx, &usecase.LinkAccountInput{UserID: second.ID, IDToken: "t"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountAlreadyLinked))
}
