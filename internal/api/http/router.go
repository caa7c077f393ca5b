package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Users.SignUp)
	authGroup.Post("/signin", cfg.Users.SignIn)

	account := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireIdentity())
	account.Post("/signout", cfg.Users.SignOut)
	account.Get("/me", cfg.Users.Me)
	account.Post("/password", auth.RequirePasswordProvider(), cfg.Users.ChangePassword)
	account.Patch("/profile", cfg.Users.UpdateProfile)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireIdentity())
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/critical", cfg.Tickets.ListCritical)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
}
