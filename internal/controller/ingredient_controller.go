package controller

import (
	"vegan-agent-be/internal/dto"
	"vegan-agent-be/internal/pkg/serverutils"
	"vegan-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIngredientController interface {
	RegisterRoutes(r fiber.Router)
	Lookup(ctx *fiber.Ctx) error
	Table(ctx *fiber.Ctx) error
	ToolDeclaration(ctx *fiber.Ctx) error
}

type ingredientController struct {
	ingredientService service.IIngredientService
}

func NewIngredientController(ingredientService service.IIngredientService) IIngredientController {
	return &ingredientController{
		ingredientService: ingredientService,
	}
}

func (c *ingredientController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ingredients")
	h.Get("", c.Table)
	h.Get("tool", c.ToolDeclaration)
	h.Post("lookup", c.Lookup)
}

func (c *ingredientController) Lookup(ctx *fiber.Ctx) error {
	var req dto.LookupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingredientService.Lookup(&req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("Success lookup ingredients", res))
}

func (c *ingredientController) Table(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get ingredient table", c.ingredientService.Table()))
}

func (c *ingredientController) ToolDeclaration(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get tool declaration", c.ingredientService.ToolDeclaration()))
}
