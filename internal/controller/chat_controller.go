package controller

import (
	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/pkg/serverutils"
	"oracle-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	ListSessions(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	SelectSession(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
}

type chatController struct {
	sessionService service.ISessionService
	chatService    service.IChatService
}

func NewChatController(sessionService service.ISessionService, chatService service.IChatService) IChatController {
	return &chatController{
		sessionService: sessionService,
		chatService:    chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	h := r.Group("/chat/v1")
	h.Use(jwt)
	h.Get("/sessions", c.ListSessions)
	h.Post("/sessions", c.CreateSession)
	h.Put("/sessions/:id/select", c.SelectSession)
	h.Get("/sessions/:id/messages", c.ListMessages)
	h.Post("/messages", c.SendMessage)
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	user, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.ListSessions(ctx.Context(), user)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	user, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.CreateSession(ctx.Context(), user)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *chatController) SelectSession(ctx *fiber.Ctx) error {
	user, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}
	sessionID, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.SelectSession(ctx.Context(), user, sessionID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session selected", res))
}

func (c *chatController) ListMessages(ctx *fiber.Ctx) error {
	user, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}
	sessionID, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.LoadMessages(ctx.Context(), user, sessionID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get messages", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	user, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.chatService.SendMessage(ctx.Context(), user, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Message sent", res))
}

func sessionParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}
	return id, nil
}
