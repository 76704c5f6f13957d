package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flightdeck/flight-auth/internal/api/http/handlers"
	"github.com/flightdeck/flight-auth/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Session *handlers.SessionHandler
	Gate    *auth.Gate

	// RateLimit guards the auth endpoints when set.
	RateLimit fiber.Handler

	// Login is mounted when the user-registration collaborator supplies its
	// credential-checking handler; this service never sees passwords.
	Login fiber.Handler
}

// RegisterRoutes wires HTTP routes. The gate runs app-wide so every route,
// including the externally owned business handlers mounted after this call,
// sits behind route classification.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gate.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	if cfg.RateLimit != nil {
		authGroup.Use(cfg.RateLimit)
	}
	if cfg.Login != nil {
		authGroup.Post("/login", cfg.Login)
	}
	authGroup.Post("/refresh", cfg.Session.Refresh)
	authGroup.Post("/logout", cfg.Session.Logout)
	authGroup.Get("/session", cfg.Session.Session)
}
