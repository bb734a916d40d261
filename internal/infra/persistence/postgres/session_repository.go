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

// sessionRepository implements the repository.SessionRepository interface.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session row.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}
	session.CreatedAt = sessionM.CreatedAt

	return nil
}

// FindByID retrieves a session row by its public id.
func (repo *sessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var sessionM model.SessionModel
	if err := repo.db.WithContext(ctx).First(&sessionM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toSessionDomain(&sessionM), nil
}

// Delete removes a session row by id. Deleting an already-gone row is fine;
// lazy expiry cleanup and explicit logout may both target the same session.
func (repo *sessionRepository) Delete(ctx context.Context, id string) error {
	if err := repo.db.WithContext(ctx).Delete(&model.SessionModel{}, "id = ?", id).Error; err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// --- Mapper Functions ---

func toSessionDomain(data *model.SessionModel) *entity.Session {
	if data == nil {
		return nil
	}

	return &entity.Session{
		ID:         data.ID,
		UserID:     data.UserID,
		SecretHash: data.SecretHash,
		CreatedAt:  data.CreatedAt,
		ExpiresAt:  data.ExpiresAt,
	}
}

func fromSessionDomain(data *entity.Session) *model.SessionModel {
	if data == nil {
		return nil
	}

	return &model.SessionModel{
		ID:         data.ID,
		UserID:     data.UserID,
		SecretHash: data.SecretHash,
		ExpiresAt:  data.ExpiresAt,
	}
}
