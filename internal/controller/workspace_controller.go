package controller

import (
	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/pkg/serverutils"
	"oracle-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWorkspaceController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	Show(ctx *fiber.Ctx) error
	UpdateDraft(ctx *fiber.Ctx) error
	DismissBanner(ctx *fiber.Ctx) error
}

type workspaceController struct {
	service service.IWorkspaceService
}

func NewWorkspaceController(service service.IWorkspaceService) IWorkspaceController {
	return &workspaceController{service: service}
}

func (c *workspaceController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	h := r.Group("/workspace")
	h.Use(jwt)
	h.Get("", c.Show)
	h.Put("/draft", c.UpdateDraft)
	h.Delete("/banner", c.DismissBanner)
}

func (c *workspaceController) Show(ctx *fiber.Ctx) error {
	user, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.View(ctx.Context(), user)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workspace", res))
}

func (c *workspaceController) UpdateDraft(ctx *fiber.Ctx) error {
	user, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateDraftRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SetDraft(ctx.Context(), user, req.Draft)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Draft saved", res))
}

func (c *workspaceController) DismissBanner(ctx *fiber.Ctx) error {
	user, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.DismissBanner(ctx.Context(), user)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Banner dismissed", res))
}
