package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JulioFS/zforum/internal/config"
	"github.com/JulioFS/zforum/internal/handler"
	"github.com/JulioFS/zforum/internal/middleware"
	"github.com/JulioFS/zforum/internal/observability"
	"github.com/JulioFS/zforum/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ChannelHandler *handler.ChannelHandler
	TopicHandler   *handler.TopicHandler
	SettingHandler *handler.SettingHandler
	JWTRequired    fiber.Handler
	JWTOptional    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Banner assets are served straight off disk; the fan-out directory
	// layout keeps any single directory small.
	if cfg.BannerRoot != "" {
		app.Static("/static/banners", cfg.BannerRoot)
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Mutations are throttled per user (per IP for anonymous callers);
	// reads stay unmetered.
	writeLimiter := middleware.RateLimit("forum-write", 60, time.Minute)
	api.Use(func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		return writeLimiter(c)
	})

	authRequired := deps.JWTRequired
	if authRequired == nil {
		authRequired = func(c *fiber.Ctx) error { return c.Next() }
	}
	authOptional := deps.JWTOptional
	if authOptional == nil {
		authOptional = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ChannelHandler != nil {
		channels := api.Group("/channels")
		deps.ChannelHandler.Register(channels, authRequired, authOptional)

		if deps.TopicHandler != nil {
			topics := api.Group("/topics")
			deps.TopicHandler.Register(channels, topics, authRequired, authOptional)
		}
	}

	if deps.SettingHandler != nil {
		settings := api.Group("/admin/settings", authRequired, middleware.RequireRole(service.RoleSystemAdmin))
		deps.SettingHandler.Register(settings)
	}
}
