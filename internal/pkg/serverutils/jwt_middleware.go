package serverutils

import (
	"strings"

	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/service"
	"oracle-assistant-be/pkg/identity"

	"github.com/gofiber/fiber/v2"
)

const (
	localsUserID      = "user_id"
	localsUser        = "user"
	localsAccessToken = "access_token"
)

// JwtMiddleware verifies the bearer token locally. Browsers cannot set headers on a
// websocket upgrade, so a token query parameter is accepted as well.
func JwtMiddleware(tokens *identity.TokenService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := BearerToken(ctx)
		if tokenStr == "" {
			tokenStr = ctx.Query("token")
		}
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		user, err := tokens.Verify(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		ctx.Locals(localsUserID, user.Id.String())
		ctx.Locals(localsUser, *user)
		ctx.Locals(localsAccessToken, tokenStr)
		return ctx.Next()
	}
}

// BearerToken returns the token from the Authorization header, or "".
func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

func CurrentUser(ctx *fiber.Ctx) (entity.AuthUser, error) {
	user, ok := ctx.Locals(localsUser).(entity.AuthUser)
	if !ok {
		return entity.AuthUser{}, service.ErrUnauthenticated
	}
	return user, nil
}

func AccessToken(ctx *fiber.Ctx) string {
	token, _ := ctx.Locals(localsAccessToken).(string)
	return token
}
