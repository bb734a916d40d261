package postgres

import (
	"context"

	"github.com/mhtoin/movieclub-start-sub000/internal/domain/entity"
	domainerrors "github.com/mhtoin/movieclub-start-sub000/internal/domain/errors"
	"github.com/mhtoin/movieclub-start-sub000/internal/domain/repository"
	"github.com/mhtoin/movieclub-start-sub000/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// accountRepository implements the repository.AccountRepository interface.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// Create persists a new OAuth account link.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountM := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrAccountAlreadyLinked.WrapMessage("account link failed")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("account references a missing user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	account.ID = accountM.ID
	account.CreatedAt = accountM.CreatedAt

	return nil
}

// FindByProvider retrieves an account link by its provider identity pair.
func (repo *accountRepository) FindByProvider(ctx context.Context, provider entity.Provider, providerAccountID string) (*entity.Account, error) {
	var accountM model.AccountModel
	err := repo.db.WithContext(ctx).
		First(&accountM, "provider = ? AND provider_account_id = ?", string(provider), providerAccountID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toAccountDomain(&accountM), nil
}

// --- Mapper Functions ---

func toAccountDomain(data *model.AccountModel) *entity.Account {
	if data == nil {
		return nil
	}

	return &entity.Account{
		ID:                data.ID,
		UserID:            data.UserID,
		Provider:          entity.Provider(data.Provider),
		ProviderAccountID: data.ProviderAccountID,
		AccessToken:       data.AccessToken,
		RefreshToken:      data.RefreshToken,
		TokenExpiresAt:    data.TokenExpiresAt,
		CreatedAt:         data.CreatedAt,
	}
}

func fromAccountDomain(data *entity.Account) *model.AccountModel {
	if data == nil {
		return nil
	}

	return &model.AccountModel{
		ID:                data.ID,
		UserID:            data.UserID,
		Provider:          string(data.Provider),
		ProviderAccountID: data.ProviderAccountID,
		AccessToken:       data.AccessToken,
		RefreshToken:      data.RefreshToken,
		TokenExpiresAt:    data.TokenExpiresAt,
	}
}
