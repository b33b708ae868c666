package dto

import (
	"time"

	"github.com/google/uuid"
)

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UserView struct {
	Id    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type SessionTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthResponse struct {
	Session   *SessionTokens `json:"session,omitempty"`
	User      UserView       `json:"user"`
	Workspace *WorkspaceView `json:"workspace,omitempty"`
}

// SignUpResponse carries a session only when the provider confirmed the address immediately.
type SignUpResponse struct {
	Message              string        `json:"message"`
	ConfirmationRequired bool          `json:"confirmation_required"`
	Auth                 *AuthResponse `json:"auth,omitempty"`
}
