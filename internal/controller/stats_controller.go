package controller

import (
	"vegan-agent-be/internal/pkg/serverutils"
	"vegan-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IStatsController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
}

type statsController struct {
	statsService service.IStatsService
}

func NewStatsController(statsService service.IStatsService) IStatsController {
	return &statsController{statsService: statsService}
}

func (c *statsController) RegisterRoutes(r fiber.Router) {
	r.Get("/stats", c.Show)
}

func (c *statsController) Show(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get stats", c.statsService.Snapshot()))
}
