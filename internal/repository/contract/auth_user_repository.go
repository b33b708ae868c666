package contract

import (
	"context"

	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/repository/specification"
)

type AuthUserRepository interface {
	Create(ctx context.Context, user *entity.LocalUser) error
	Update(ctx context.Context, user *entity.LocalUser) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LocalUser, error)
}
