package unitofwork

import (
	"context"

	"oracle-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	MessageRepository() contract.MessageRepository
	AuthUserRepository() contract.AuthUserRepository
}
