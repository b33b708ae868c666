package mapper

import (
	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.AuthUser) *entity.LocalUser {
	if u == nil {
		return nil
	}
	return &entity.LocalUser{
		Id:                u.Id,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		EmailConfirmedAt:  u.EmailConfirmedAt,
		ConfirmationToken: u.ConfirmationToken,
		CreatedAt:         u.CreatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.LocalUser) *model.AuthUser {
	if u == nil {
		return nil
	}
	return &model.AuthUser{
		Id:                u.Id,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		EmailConfirmedAt:  u.EmailConfirmedAt,
		ConfirmationToken: u.ConfirmationToken,
		CreatedAt:         u.CreatedAt,
	}
}
