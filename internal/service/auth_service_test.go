package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignIn_FetchesSessionsExactlyOnce(t *testing.T) {
	h := newHarness(t)
	user := h.gateway.addUser("dba@example.com")
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	h.seedSession(t, user.Id, "older", base)
	newest := h.seedSession(t, user.Id, "newest", base.Add(time.Hour))

	res, err := h.auth.SignIn(context.Background(), &dto.SignInRequest{Email: "dba@example.com", Password: testPassword})
	require.NoError(t, err)

	assert.Equal(t, int64(1), h.sessionQueries())
	require.NotNil(t, res.Session)
	assert.NotEmpty(t, res.Session.AccessToken)

	view := res.Workspace
	require.NotNil(t, view)
	assert.True(t, view.Authenticated)
	assert.Equal(t, "dba@example.com", view.User.Email)
	require.Len(t, view.Sessions, 2)
	assert.Equal(t, "newest", view.Sessions[0].Title)
	require.NotNil(t, view.ActiveSessionId)
	assert.Equal(t, newest.Id.String(), *view.ActiveSessionId)

	// Reading the workspace afterwards does not fetch again.
	_, err = h.workspace.View(context.Background(), toAuthUser(res))
	require.NoError(t, err)
	assert.Equal(t, int64(1), h.sessionQueries())
}

func TestSignIn_ProviderErrorIsVerbatim(t *testing.T) {
	h := newHarness(t)
	h.gateway.addUser("dba@example.com")

	_, err := h.auth.SignIn(context.Background(), &dto.SignInRequest{Email: "dba@example.com", Password: "wrong-password"})

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "Invalid login credentials", authErr.Message)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Zero(t, h.sessionQueries())
}

func TestSignIn_UnexpectedErrorIsGeneric(t *testing.T) {
	h := newHarness(t)
	h.gateway.broken = true

	_, err := h.auth.SignIn(context.Background(), &dto.SignInRequest{Email: "dba@example.com", Password: testPassword})

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, MessageUnexpectedAuth, authErr.Message)
	assert.Equal(t, http.StatusBadGateway, authErr.Status)
}

func TestSignUp_ReturnsInstructionWithoutSession(t *testing.T) {
	h := newHarness(t)

	res, err := h.auth.SignUp(context.Background(), &dto.SignUpRequest{Email: "new@example.com", Password: testPassword})
	require.NoError(t, err)

	assert.Equal(t, "Check your email for the confirmation link.", res.Message)
	assert.True(t, res.ConfirmationRequired)
	assert.Nil(t, res.Auth)
	assert.Zero(t, h.sessionQueries())
}

func TestSignOut_ClearsWorkspace(t *testing.T) {
	h := newHarness(t)
	user := h.gateway.addUser("dba@example.com")
	h.seedSession(t, user.Id, "kept in store", time.Now())

	res, authUser := h.signIn(t, "dba@example.com")
	require.NoError(t, h.auth.SignOut(context.Background(), authUser, res.Session.AccessToken))

	_, found := h.workspaces.Get(user.Id)
	assert.False(t, found)
	assert.Equal(t, 1, h.gateway.signOuts)
	assert.Contains(t, h.notifier.authEvents, "SIGNED_OUT")
}

func TestCurrentSession_ReentersOnce(t *testing.T) {
	h := newHarness(t)
	user := h.gateway.addUser("dba@example.com")
	h.seedSession(t, user.Id, "only", time.Now())

	res, authUser := h.signIn(t, "dba@example.com")
	require.Equal(t, int64(1), h.sessionQueries())

	// Simulate a restart: the workspace is gone but the token is still valid.
	h.workspaces.Delete(authUser.Id)

	current, err := h.auth.CurrentSession(context.Background(), res.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(2), h.sessionQueries())
	assert.Len(t, current.Workspace.Sessions, 1)

	_, err = h.auth.CurrentSession(context.Background(), res.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(2), h.sessionQueries())
}

func TestCurrentSession_InvalidToken(t *testing.T) {
	h := newHarness(t)

	_, err := h.auth.CurrentSession(context.Background(), "nope")
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "invalid JWT", authErr.Message)
}

func TestRefresh_RefetchesSessions(t *testing.T) {
	h := newHarness(t)
	h.gateway.addUser("dba@example.com")

	res, _ := h.signIn(t, "dba@example.com")
	refreshed, err := h.auth.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: res.Session.RefreshToken})
	require.NoError(t, err)

	assert.NotEqual(t, res.Session.AccessToken, refreshed.Session.AccessToken)
	assert.Equal(t, int64(2), h.sessionQueries())
}

func TestConfirm_NotSupportedByHostedProvider(t *testing.T) {
	h := newHarness(t)

	_, err := h.auth.Confirm(context.Background(), "token")
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusNotFound, authErr.Status)
}

func toAuthUser(res *dto.AuthResponse) entity.AuthUser {
	return entity.AuthUser{Id: res.User.Id, Email: res.User.Email}
}
