package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel mirrors the 'sessions' table. The public token half is the
// primary key; only the digest of the secret half is stored.
type SessionModel struct {
	ID         string    `gorm:"type:varchar(24);primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	SecretHash string    `gorm:"type:varchar(64);not null"`
	CreatedAt  time.Time
	ExpiresAt  time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}
