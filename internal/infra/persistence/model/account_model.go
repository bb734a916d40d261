package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountModel mirrors the 'accounts' table of linked OAuth identities.
// The (provider, provider_account_id) pair is unique.
type AccountModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	Provider          string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_accounts_provider_account"`
	ProviderAccountID string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_accounts_provider_account"`
	AccessToken       string     `gorm:"type:text"`
	RefreshToken      string     `gorm:"type:text"`
	TokenExpiresAt    *time.Time
	CreatedAt         time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}
