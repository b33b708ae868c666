package database_test

import (
	"context"
	"log"
	"os"
	"testing"

	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/model"
	"oracle-assistant-be/internal/repository/specification"
	"oracle-assistant-be/internal/repository/unitofwork"
	"oracle-assistant-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real Postgres when DB_CONNECTION_STRING is set; everything is
// done inside a transaction that is rolled back.
func TestGormConnection(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(model.AllModels()...))

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(gormDB).NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	owner := uuid.New()
	session := &entity.ChatSession{UserId: owner, Title: entity.DefaultChatSessionTitle}
	require.NoError(t, uow.ChatSessionRepository().Create(ctx, session))
	assert.NotEqual(t, uuid.Nil, session.Id)
	assert.False(t, session.CreatedAt.IsZero())

	for _, role := range []entity.MessageRole{entity.MessageRoleUser, entity.MessageRoleAssistant} {
		require.NoError(t, uow.MessageRepository().Create(ctx, &entity.Message{
			SessionId: session.Id,
			Content:   "integration " + string(role),
			Role:      role,
			Metadata:  map[string]interface{}{"model": "integration"},
		}))
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: session.Id},
		specification.Chronological(),
	)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.False(t, messages[1].CreatedAt.Before(messages[0].CreatedAt))

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specification.UserOwnedBy{UserID: owner})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
