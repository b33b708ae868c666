package serverutils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/service"
	"oracle-assistant-be/pkg/identity"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	wrapped := fmt.Errorf("send: %w", service.ErrSendInProgress)

	cases := []struct {
		err     error
		status  int
		message string
	}{
		{&service.AuthError{Status: 400, Message: "User already registered"}, 400, "User already registered"},
		{&service.PersistenceError{Op: "list chat sessions", Err: errors.New("dial tcp")}, 503, service.MessageStoreUnavailable},
		{service.ErrEmptyMessage, 400, service.ErrEmptyMessage.Error()},
		{wrapped, 409, wrapped.Error()},
		{service.ErrSessionNotFound, 404, service.ErrSessionNotFound.Error()},
		{service.ErrUnauthenticated, 401, service.ErrUnauthenticated.Error()},
		{fiber.ErrUpgradeRequired, 426, fiber.ErrUpgradeRequired.Message},
		{errors.New("pq: password authentication failed"), 500, messageInternal},
	}

	for _, tc := range cases {
		status, message := StatusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.message, message)
	}
}

func TestValidateRequest(t *testing.T) {
	err := ValidateRequest(dto.SignUpRequest{Email: "not-an-email", Password: "123"})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{
		"email must be a valid email address",
		"password must be at least 6 characters",
	}, validationErr.Fields)

	assert.NoError(t, ValidateRequest(dto.SignUpRequest{Email: "dba@example.com", Password: "secret1"}))
}

func TestJwtMiddleware(t *testing.T) {
	tokens := identity.NewTokenService("test-secret")
	user := entity.AuthUser{Id: uuid.New(), Email: "dba@example.com"}
	issued, err := tokens.Issue(user)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", JwtMiddleware(tokens), func(ctx *fiber.Ctx) error {
		current, err := CurrentUser(ctx)
		if err != nil {
			return err
		}
		return ctx.SendString(current.Email + "|" + AccessToken(ctx))
	})

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer header", "Bearer " + issued.AccessToken, "", http.StatusOK},
		{"query token", "", issued.AccessToken, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"refresh token is not an access token", "Bearer " + issued.RefreshToken, "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/me"
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
