package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuthUser is the identity supplied by the identity gateway. Credentials never pass through it.
type AuthUser struct {
	Id    uuid.UUID
	Email string
}

// AuthSession is a signed-in session issued by the identity gateway.
type AuthSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         AuthUser
}

// LocalUser is the credential record kept by the local identity provider.
type LocalUser struct {
	Id                uuid.UUID
	Email             string
	PasswordHash      string
	EmailConfirmedAt  *time.Time
	ConfirmationToken *string
	CreatedAt         time.Time
}

func (u *LocalUser) Confirmed() bool {
	return u.EmailConfirmedAt != nil
}
