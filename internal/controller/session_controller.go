package controller

import (
	"vegan-agent-be/internal/dto"
	"vegan-agent-be/internal/pkg/serverutils"
	"vegan-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	History(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
	SetAPIKey(ctx *fiber.Ctx) error
	ClearAPIKey(ctx *fiber.Ctx) error
	CredentialStatus(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	r.Get("/history", c.History)
	r.Delete("/history", c.ClearHistory)

	s := r.Group("/session")
	s.Post("/key", c.SetAPIKey)
	s.Delete("/key", c.ClearAPIKey)

	r.Get("/credential/status", c.CredentialStatus)
}

func (c *sessionController) History(ctx *fiber.Ctx) error {
	res, err := c.sessionService.History(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *sessionController) ClearHistory(ctx *fiber.Ctx) error {
	if err := c.sessionService.ClearHistory(ctx.UserContext(), serverutils.SessionID(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("History cleared", nil))
}

func (c *sessionController) SetAPIKey(ctx *fiber.Ctx) error {
	var req dto.SetAPIKeyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.SetAPIKey(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Key saved for this session", res))
}

func (c *sessionController) ClearAPIKey(ctx *fiber.Ctx) error {
	if err := c.sessionService.ClearAPIKey(ctx.UserContext(), serverutils.SessionID(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Key removed", nil))
}

func (c *sessionController) CredentialStatus(ctx *fiber.Ctx) error {
	res, err := c.sessionService.CredentialStatus(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get credential status", res))
}
