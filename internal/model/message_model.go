package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Message struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Content   string         `gorm:"type:text;not null"`
	Role      string         `gorm:"type:varchar(16);not null"`
	Degraded  bool           `gorm:"not null;default:false"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`

	Session *ChatSession `gorm:"foreignKey:SessionId;references:Id;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	return nil
}
