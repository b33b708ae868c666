package contract

import (
	"context"

	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/repository/specification"
)

type MessageRepository interface {
	// Create inserts the message and refreshes it with the stored row (id, created_at).
	Create(ctx context.Context, message *entity.Message) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
}
