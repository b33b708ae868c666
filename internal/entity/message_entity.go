package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

func (r MessageRole) Valid() bool {
	return r == MessageRoleUser || r == MessageRoleAssistant
}

type Message struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Content   string
	Role      MessageRole
	// Degraded marks an assistant reply produced by the fallback text instead of the model.
	Degraded  bool
	Metadata  map[string]interface{}
	CreatedAt time.Time
}
