// Package server assembles the Fiber application.
package server

import (
	"errors"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/songlesson/api/internal/auth"
	"github.com/songlesson/api/internal/config"
	"github.com/songlesson/api/internal/handler"
	"github.com/songlesson/api/internal/logging"
	"github.com/songlesson/api/internal/middleware"
	"github.com/songlesson/api/internal/service"
	ws "github.com/songlesson/api/internal/websocket"
	"github.com/songlesson/api/pkg/response"
)

// Deps are the collaborators the routes are wired to
type Deps struct {
	Config    *config.Config
	Songs     *service.SongService
	Audio     *service.AudioService
	Documents *service.DocumentService
	Hub       *ws.Hub
	Verifier  auth.Verifier // required when Config.Auth.Enabled
	Limiter   *middleware.RateLimiter
	Health    func() fiber.Map
	// AccessLog toggles the request logger
	AccessLog bool
}

// New builds the app with all routes registered
func New(d Deps) *fiber.App {
	cfg := d.Config

	bodyLimit := 4 * 1024 * 1024
	if limit := int(cfg.Upload.MaxSize) + 1024*1024; limit > bodyLimit {
		bodyLimit = limit
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if d.AccessLog {
		logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
		if logging.IsDebug() {
			logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
		}
		app.Use(logger.New(logger.Config{Format: logFormat}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	validate := handler.NewValidator()
	songHandler := handler.NewSongHandler(d.Songs, d.Audio, validate)
	documentHandler := handler.NewDocumentHandler(d.Documents, validate, cfg.Upload.MaxSize)

	limiter := d.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{"status": "ok"}
		if d.Health != nil {
			for k, v := range d.Health() {
				body[k] = v
			}
		}
		return c.JSON(body)
	})

	// The provider webhook is public and never rate limited
	app.Post("/api/songs/callback", songHandler.Callback)

	var api fiber.Router = app.Group("/api")
	if cfg.Auth.Enabled {
		api = app.Group("/api", middleware.NewAuthMiddleware(d.Verifier).Authenticate())
	}

	songs := api.Group("/songs")
	songs.Post("/generate", limiter.SongsLimit(cfg.RateLimit.SongsPerHour), songHandler.Generate)
	songs.Get("/", songHandler.List)
	songs.Get("/:id/status", songHandler.Status)
	songs.Get("/:id", songHandler.Get)
	songs.Delete("/:id", songHandler.Delete)

	documents := api.Group("/documents")
	documents.Post("/upload", limiter.UploadsLimit(cfg.RateLimit.UploadsPerHour), documentHandler.Upload)
	documents.Post("/", documentHandler.Create)
	documents.Get("/", documentHandler.List)
	documents.Get("/:id", documentHandler.Get)
	documents.Delete("/:id", documentHandler.Delete)

	if d.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})

		app.Get("/ws/songs/:id", websocket.New(func(c *websocket.Conn) {
			d.Hub.HandleConnection(c, c.Params("id"))
		}))
	}

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	errCode := response.CodeServiceError
	switch code {
	case fiber.StatusNotFound:
		errCode = response.CodeNotFound
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
		errCode = response.CodeValidationError
	}

	return response.Error(c, code, errCode, message, nil)
}
