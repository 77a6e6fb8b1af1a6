package server

import (
	"embed"
	"io/fs"
	"log"
	"net/http"

	"vegan-agent-be/internal/bootstrap"
	"vegan-agent-be/internal/config"
	"vegan-agent-be/internal/metrics"
	"vegan-agent-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

//go:embed web
var webFS embed.FS

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	// Multipart overhead on top of the largest accepted image
	bodyLimit := (cfg.App.MaxUploadMB + 1) * 1024 * 1024

	app := fiber.New(fiber.Config{
		BodyLimit: bodyLimit,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: cfg.App.CorsAllowedOrigins != "*",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"provider": cfg.Ai.LLMProvider}))
	})
	app.Get("/metrics", metrics.MetricsHandler())

	app.Use(serverutils.SessionMiddleware(cfg.IsProduction()))

	registerRoutes(app, container)

	web, err := fs.Sub(webFS, "web")
	if err != nil {
		log.Panicf("embedded UI missing: %v", err)
	}
	app.Use("/", filesystem.New(filesystem.Config{
		Root:  http.FS(web),
		Index: "index.html",
	}))

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.ScanController.RegisterRoutes(api)
	c.SessionController.RegisterRoutes(api)
	c.IngredientController.RegisterRoutes(api)
	c.StatsController.RegisterRoutes(api)
}
