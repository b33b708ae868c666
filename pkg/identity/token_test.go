package identity

import (
	"testing"
	"time"

	"oracle-assistant-be/internal/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("secret")
	user := entity.AuthUser{Id: uuid.New(), Email: "dba@example.com"}

	session, err := svc.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, user, session.User)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	got, err := svc.Verify(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user, *got)

	got, err = svc.VerifyRefresh(session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.Id, got.Id)
}

func TestTokenService_TokensAreNotInterchangeable(t *testing.T) {
	svc := NewTokenService("secret")
	session, err := svc.Issue(entity.AuthUser{Id: uuid.New(), Email: "a@b.co"})
	require.NoError(t, err)

	_, err = svc.Verify(session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyRefresh(session.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsWrongSecretAndExpiry(t *testing.T) {
	session, err := NewTokenService("secret").Issue(entity.AuthUser{Id: uuid.New()})
	require.NoError(t, err)

	_, err = NewTokenService("other").Verify(session.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := NewTokenService("secret")
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Verify(session.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_VerifiesGoTrueShapedToken(t *testing.T) {
	id := uuid.New()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   id.String(),
		"email": "dba@example.com",
		"role":  "authenticated",
		"aud":   "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("project-secret"))
	require.NoError(t, err)

	user, err := NewTokenService("project-secret").Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, id, user.Id)
	assert.Equal(t, "dba@example.com", user.Email)
}

func TestTokenService_RejectsNonUUIDSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "service_role"})
	signed, err := token.SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewTokenService("s").Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
