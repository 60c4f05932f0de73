package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Files          *handlers.FilesHandler
	Sounds         *handlers.SoundsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	Realtime       *handlers.RealtimeHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/auth/login", cfg.Auth.Login)
	api.Get("/admins", cfg.Auth.ListAdmins)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/users", cfg.Auth.ListUsers)

	protected.Post("/tickets", cfg.Tickets.Create)
	protected.Post("/tickets/log-solved", cfg.Tickets.LogSolved)
	protected.Get("/user/tickets", cfg.Tickets.ListMine)
	protected.Post("/tickets/:id/rate", cfg.Tickets.Rate)
	protected.Post("/log/interaction", cfg.Tickets.LogInteraction)

	protected.Post("/tickets/:id/upload", cfg.Files.Upload)
	protected.Get("/tickets/:id/files", cfg.Files.List)
	protected.Get("/files/:id/download", cfg.Files.Download)
	protected.Get("/files/:id/view", cfg.Files.View)
	protected.Delete("/files/:id", cfg.Files.Delete)

	protected.Post("/upload-notification-sound", cfg.Sounds.Upload)
	protected.Post("/delete-notification-sound", cfg.Sounds.Delete)
	protected.Get("/get-notification-sound", cfg.Sounds.Get)
	app.Get("/static/notification_sounds/:filename", cfg.Sounds.Serve)

	adminGroup := protected.Group("/admin", auth.RequireAdmin())
	adminGroup.Get("/tickets", cfg.AdminTickets.ListAll)
	adminGroup.Put("/tickets/:id", cfg.AdminTickets.UpdateStatus)
	adminGroup.Post("/tickets/:id/assign", cfg.AdminTickets.Assign)
	adminGroup.Post("/tickets/:id/reassign", cfg.AdminTickets.Reassign)
	adminGroup.Get("/online", cfg.AdminTickets.Online)

	app.Get("/ws/admin",
		cfg.AuthMiddleware.Handle,
		auth.RequireAdmin(),
		cfg.Realtime.Upgrade,
		cfg.Realtime.Serve(),
	)
}
