package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
	domainerrors "github.com/mhtoin/movieclub-start-sub000/internal/domain/errors"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/repository"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/service"

	"github.com/google/uuid"
)

// In-memory fakes standing in for the persistence layer. They enforce the
// same uniqueness rules as the real store so constraint-violation paths are
// exercised too.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user

	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domainerrors.ErrEmailTaken.WrapMessage("email already registered")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied

	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session

	findCalls int
	findErr   error
	deleteErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *session
	r.sessions[session.ID] = &copied

	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.findCalls++
	if r.findErr != nil {
		return nil, r.findErr
	}

	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	copied := *session

	return &copied, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.sessions, id)

	return nil
}

func (r *fakeSessionRepo) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[id]

	return ok
}

func (r *fakeSessionRepo) lookupCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.findCalls
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*entity.Account)}
}

func accountKey(provider entity.Provider, providerAccountID string) string {
	return string(provider) + "/" + providerAccountID
}

func (r *fakeAccountRepo) Create(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := accountKey(account.Provider, account.ProviderAccountID)
	if _, ok := r.accounts[key]; ok {
		return domainerrors.ErrAccountAlreadyLinked.WrapMessage("provider account already exists")
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	copied := *account
	r.accounts[key] = &copied

	return nil
}

func (r *fakeAccountRepo) FindByProvider(_ context.Context, provider entity.Provider, providerAccountID string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountKey(provider, providerAccountID)]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	copied := *account

	return &copied, nil
}

type fakeResetTokenRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*entity.PasswordResetToken
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{tokens: make(map[uuid.UUID]*entity.PasswordResetToken)}
}

func (r *fakeResetTokenRepo) Create(_ context.Context, token *entity.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	copied := *token
	r.tokens[token.ID] = &copied

	return nil
}

func (r *fakeResetTokenRepo) FindByValue(_ context.Context, value string) (*entity.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		if token.Token == value {
			copied := *token

			return &copied, nil
		}
	}

	return nil, repository.ErrResetTokenNotFound
}

func (r *fakeResetTokenRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, id)

	return nil
}

func (r *fakeResetTokenRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, token := range r.tokens {
		if token.UserID == userID {
			delete(r.tokens, id)
		}
	}

	return nil
}

func (r *fakeResetTokenRepo) liveTokensFor(userID uuid.UUID) []*entity.PasswordResetToken {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.PasswordResetToken
	for _, token := range r.tokens {
		if token.UserID == userID {
			copied := *token
			out = append(out, &copied)
		}
	}

	return out
}

// fakeRepoFactory hands out the shared in-memory repos; fakeTxManager runs
// the callback directly since the fakes have no transactions to manage.
type fakeRepoFactory struct {
	userRepo    *fakeUserRepo
	sessionRepo *fakeSessionRepo
	accountRepo *fakeAccountRepo
	resetRepo   *fakeResetTokenRepo
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository { return f.userRepo }

func (f *fakeRepoFactory) SessionRepo() repository.SessionRepository { return f.sessionRepo }

func (f *fakeRepoFactory) AccountRepo() repository.AccountRepository { return f.accountRepo }

func (f *fakeRepoFactory) ResetTokenRepo() repository.ResetTokenRepository { return f.resetRepo }

type fakeTxManager struct {
	factory *fakeRepoFactory
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

// fakeTokenGen yields deterministic 24-character values so the token wire
// format keeps its "{id}.{secret}" shape without touching crypto/rand.
type fakeTokenGen struct {
	mu      sync.Mutex
	counter int
}

func (g *fakeTokenGen) GenerateID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++

	return fmt.Sprintf("tok%021d", g.counter)
}

// fakeHasher is a transparent stand-in for bcrypt, fast enough for tests.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// fakeOAuthVerifier returns a canned identity or a canned failure.
type fakeOAuthVerifier struct {
	identity *service.OAuthIdentity
	err      error
}

func (v *fakeOAuthVerifier) VerifyIDToken(_ context.Context, _ string) (*service.OAuthIdentity, error) {
	if v.err != nil {
		return nil, v.err
	}

	return v.identity, nil
}
