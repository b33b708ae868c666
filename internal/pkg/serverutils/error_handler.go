package serverutils

import (
	"errors"

	"oracle-assistant-be/internal/pkg/logger"
	"oracle-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const messageInternal = "Something went wrong. Please try again."

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON envelope.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := StatusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": code,
				"error":  err.Error(),
			})
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// StatusFor maps an error to its HTTP status and the message safe to show the user.
func StatusFor(err error) (int, string) {
	var (
		authErr       *service.AuthError
		persistErr    *service.PersistenceError
		validationErr *ValidationError
		fiberErr      *fiber.Error
	)

	switch {
	case errors.As(err, &authErr):
		return authErr.Status, authErr.Message
	case errors.As(err, &persistErr):
		return fiber.StatusServiceUnavailable, service.MessageStoreUnavailable
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.Is(err, service.ErrEmptyMessage):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNoActiveSession), errors.Is(err, service.ErrSendInProgress):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrUnauthenticated):
		return fiber.StatusUnauthorized, err.Error()
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	default:
		return fiber.StatusInternalServerError, messageInternal
	}
}
