// Package identity talks to the service that owns user credentials.
// The app never stores or inspects passwords itself unless the local
// provider is selected.
package identity

import (
	"context"
	"errors"
	"fmt"

	"oracle-assistant-be/internal/entity"
)

// SignUpResult carries a session only when the provider confirms the address immediately.
type SignUpResult struct {
	User                 entity.AuthUser
	Session              *entity.AuthSession
	ConfirmationRequired bool
}

type Gateway interface {
	SignUp(ctx context.Context, email, password, redirectTo string) (*SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*entity.AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
	// GetUser resolves the user behind an access token (get-current-session).
	GetUser(ctx context.Context, accessToken string) (*entity.AuthUser, error)
	Refresh(ctx context.Context, refreshToken string) (*entity.AuthSession, error)
}

// Confirmer is implemented by providers that handle the confirmation link themselves.
type Confirmer interface {
	Confirm(ctx context.Context, token string) (*entity.AuthSession, error)
}

// Error is a rejection reported by the provider. Message is shown to the user as is.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity: %s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("identity: %s (%d)", e.Message, e.Status)
}

// AsError unwraps a provider rejection.
func AsError(err error) (*Error, bool) {
	var idErr *Error
	if errors.As(err, &idErr) {
		return idErr, true
	}
	return nil, false
}
