package controller

import (
	"io"
	"mime/multipart"

	"vegan-agent-be/internal/dto"
	"vegan-agent-be/internal/pkg/serverutils"
	"vegan-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IScanController interface {
	RegisterRoutes(r fiber.Router)
	Scan(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type scanController struct {
	scanService service.IScanService
}

func NewScanController(scanService service.IScanService) IScanController {
	return &scanController{
		scanService: scanService,
	}
}

func (c *scanController) RegisterRoutes(r fiber.Router) {
	r.Post("/scan", c.Scan)
	r.Post("/search", c.Search)
}

// Scan takes a multipart upload in the "image" field. A missing file is
// passed on as an empty image so the service reports it like any other
// invalid input.
func (c *scanController) Scan(ctx *fiber.Ctx) error {
	var req dto.ScanRequest
	if fh, err := ctx.FormFile("image"); err == nil {
		data, err := readUpload(fh)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not read upload")
		}
		req.Image = data
		req.Filename = fh.Filename
		req.MIMEType = fh.Header.Get("Content-Type")
	}

	res := c.scanService.Scan(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	return ctx.Status(scanStatusCode(res.Status)).JSON(res)
}

// Search accepts JSON {"query": ...} or a multipart form with a "query"
// field and an optional "image".
func (c *scanController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fh, err := ctx.FormFile("image"); err == nil {
		data, err := readUpload(fh)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not read upload")
		}
		req.Image = data
		req.Filename = fh.Filename
		req.MIMEType = fh.Header.Get("Content-Type")
	}

	res := c.scanService.Search(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	return ctx.Status(scanStatusCode(res.Status)).JSON(res)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func scanStatusCode(status dto.ScanStatus) int {
	switch status {
	case dto.ScanStatusOK:
		return fiber.StatusOK
	case dto.ScanStatusCredentialError:
		return fiber.StatusUnauthorized
	case dto.ScanStatusInvalidInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusBadGateway
	}
}
