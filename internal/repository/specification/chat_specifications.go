package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// NewestFirst orders sessions for the sidebar.
func NewestFirst() Specification {
	return OrderBy{Field: "created_at", Desc: true}
}

// Chronological orders a message thread.
func Chronological() Specification {
	return OrderBy{Field: "created_at", Desc: false}
}
