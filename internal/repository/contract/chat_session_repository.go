package contract

import (
	"context"

	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/repository/specification"
)

type ChatSessionRepository interface {
	// Create inserts the session and refreshes it with the stored row (id, created_at).
	Create(ctx context.Context, session *entity.ChatSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
}
