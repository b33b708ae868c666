package controller

import (
	"net/url"

	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/pkg/serverutils"
	"oracle-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	SignUp(ctx *fiber.Ctx) error
	SignIn(ctx *fiber.Ctx) error
	SignOut(ctx *fiber.Ctx) error
	Refresh(ctx *fiber.Ctx) error
	Session(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	h := r.Group("/auth")
	h.Post("/sign-up", c.SignUp)
	h.Post("/sign-in", c.SignIn)
	h.Post("/refresh", c.Refresh)
	h.Get("/session", c.Session)
	h.Get("/callback", c.Callback)
	h.Post("/sign-out", jwt, c.SignOut)
}

func (c *authController) SignUp(ctx *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SignUp(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *authController) SignIn(ctx *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SignIn(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Signed in", res))
}

func (c *authController) SignOut(ctx *fiber.Ctx) error {
	user, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}

	if err := c.service.SignOut(ctx.Context(), user, serverutils.AccessToken(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Signed out", nil))
}

func (c *authController) Refresh(ctx *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Refresh(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session refreshed", res))
}

// Session asks the identity provider who owns the token, so a revoked token is
// rejected even while its signature is still valid.
func (c *authController) Session(ctx *fiber.Ctx) error {
	token := serverutils.BearerToken(ctx)
	if token == "" {
		return service.ErrUnauthenticated
	}

	res, err := c.service.CurrentSession(ctx.Context(), token)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Current session", res))
}

// Callback is the target of the confirmation email. With redirect_to set the browser is
// sent back to the client carrying the tokens in the fragment, the way hosted providers do.
func (c *authController) Callback(ctx *fiber.Ctx) error {
	token := ctx.Query("token")
	if token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing confirmation token")
	}

	res, err := c.service.Confirm(ctx.Context(), token)
	if err != nil {
		return err
	}

	redirectTo := ctx.Query("redirect_to")
	if redirectTo == "" {
		return ctx.JSON(serverutils.SuccessResponse("Email confirmed", res))
	}

	fragment := url.Values{}
	fragment.Set("access_token", res.Session.AccessToken)
	fragment.Set("refresh_token", res.Session.RefreshToken)
	fragment.Set("type", "signup")
	return ctx.Redirect(redirectTo+"#"+fragment.Encode(), fiber.StatusSeeOther)
}
