package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"oracle-assistant-be/pkg/identity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userID = uuid.MustParse("6f1c2a8e-3b1d-4c55-9a0e-2f6f1f3d9b10")

func sessionJSON() string {
	return `{
		"access_token": "access-1",
		"token_type": "bearer",
		"expires_in": 3600,
		"expires_at": 1893456000,
		"refresh_token": "refresh-1",
		"user": {"id": "` + userID.String() + `", "email": "dba@example.com"}
	}`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "anon-key", 5*time.Second)
}

func TestSignIn(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dba@example.com", body.Email)
		assert.Equal(t, "secret1", body.Password)

		_, _ = w.Write([]byte(sessionJSON()))
	})

	session, err := c.SignIn(context.Background(), "dba@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", session.AccessToken)
	assert.Equal(t, "refresh-1", session.RefreshToken)
	assert.Equal(t, userID, session.User.Id)
	assert.Equal(t, int64(1893456000), session.ExpiresAt.Unix())
}

func TestSignIn_ErrorTextIsVerbatim(t *testing.T) {
	cases := map[string]string{
		`{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`: "Invalid login credentials",
		`{"error":"invalid_grant","error_description":"Email not confirmed"}`:               "Email not confirmed",
		`{"message":"Request rate limit reached"}`:                                          "Request rate limit reached",
		`upstream exploded`: "upstream exploded",
	}

	for body, want := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(body))
		})

		_, err := c.SignIn(context.Background(), "dba@example.com", "wrong-pass")
		require.Error(t, err)

		idErr, ok := identity.AsError(err)
		require.True(t, ok, body)
		assert.Equal(t, want, idErr.Message)
		assert.Equal(t, http.StatusBadRequest, idErr.Status)
	}
}

func TestSignUp_ConfirmationRequired(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		assert.Equal(t, "http://localhost:5173", r.URL.Query().Get("redirect_to"))
		_, _ = w.Write([]byte(`{"id":"` + userID.String() + `","email":"dba@example.com","confirmation_sent_at":"2024-01-01T00:00:00Z"}`))
	})

	res, err := c.SignUp(context.Background(), "dba@example.com", "secret1", "http://localhost:5173")
	require.NoError(t, err)
	assert.True(t, res.ConfirmationRequired)
	assert.Nil(t, res.Session)
	assert.Equal(t, userID, res.User.Id)
}

func TestSignUp_AutoConfirmed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sessionJSON()))
	})

	res, err := c.SignUp(context.Background(), "dba@example.com", "secret1", "")
	require.NoError(t, err)
	assert.False(t, res.ConfirmationRequired)
	require.NotNil(t, res.Session)
	assert.Equal(t, "access-1", res.Session.AccessToken)
}

func TestRefresh(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-0", body["refresh_token"])
		_, _ = w.Write([]byte(sessionJSON()))
	})

	session, err := c.Refresh(context.Background(), "refresh-0")
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", session.RefreshToken)
}

func TestSignOutAndGetUser_SendBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/auth/v1/logout":
			w.WriteHeader(http.StatusNoContent)
		case "/auth/v1/user":
			_, _ = w.Write([]byte(`{"id":"` + userID.String() + `","email":"dba@example.com"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	require.NoError(t, c.SignOut(context.Background(), "access-1"))

	user, err := c.GetUser(context.Background(), "access-1")
	require.NoError(t, err)
	assert.Equal(t, "dba@example.com", user.Email)
}
