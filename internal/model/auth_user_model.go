package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthUser backs the local identity provider only; the hosted provider keeps its own users.
type AuthUser struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email             string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash      string    `gorm:"type:varchar(255);not null"`
	EmailConfirmedAt  *time.Time
	ConfirmationToken *string   `gorm:"type:varchar(255);index"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (AuthUser) TableName() string {
	return "auth_users"
}

func (u *AuthUser) BeforeCreate(tx *gorm.DB) error {
	if u.Id == uuid.Nil {
		u.Id = uuid.New()
	}
	return nil
}

// AllModels lists every table owned by this service, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&ChatSession{},
		&Message{},
		&AuthUser{},
	}
}
