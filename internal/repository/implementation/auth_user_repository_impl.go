package implementation

import (
	"context"
	"errors"

	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/mapper"
	"oracle-assistant-be/internal/model"
	"oracle-assistant-be/internal/repository/contract"
	"oracle-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AuthUserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewAuthUserRepository(db *gorm.DB) contract.AuthUserRepository {
	return &AuthUserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *AuthUserRepositoryImpl) Create(ctx context.Context, user *entity.LocalUser) error {
	m := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(m)
	return nil
}

func (r *AuthUserRepositoryImpl) Update(ctx context.Context, user *entity.LocalUser) error {
	m := r.mapper.ToModel(user)
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *AuthUserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LocalUser, error) {
	var m model.AuthUser
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
