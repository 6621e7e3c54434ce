package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/spec-kit/helper-marketplace/internal/api/http/handlers"
	"github.com/spec-kit/helper-marketplace/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Helpers        *handlers.HelpersHandler
	Bookings       *handlers.BookingsHandler
	Users          *handlers.UsersHandler
	Contacts       *handlers.ContactsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
	// AuthRateLimit caps requests per client IP per minute on /auth. Zero
	// disables the limiter.
	AuthRateLimit int
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	if cfg.AuthRateLimit > 0 {
		authGroup.Use(limiter.New(limiter.Config{
			Max:        cfg.AuthRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "too many requests, slow down")
			},
		}))
	}
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/strength", cfg.Auth.PasswordStrength)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Get("/:provider/start", cfg.Auth.FederatedStart)
	authGroup.Get("/:provider/callback", cfg.Auth.FederatedCallback)

	authed := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authed.Get("/me", cfg.Auth.Me)
	authed.Post("/password/change", cfg.Auth.ChangePassword)

	app.Post("/contact", cfg.Contacts.Submit)

	app.Get("/helpers/services", cfg.Helpers.Catalogue)
	helpers := app.Group("/helpers", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	helpers.Get("/directory", cfg.Helpers.Directory)

	bookings := app.Group("/bookings", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	bookings.Post("/", cfg.Bookings.Create)
	bookings.Get("/", cfg.Bookings.ListMine)
	bookings.Get("/:id", cfg.Bookings.Get)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/dashboard", cfg.Dashboard.Stats)

	admin.Get("/helpers", cfg.Helpers.List)
	admin.Post("/helpers", cfg.Helpers.Create)
	admin.Get("/helpers/:id", cfg.Helpers.Get)
	admin.Put("/helpers/:id", cfg.Helpers.Update)
	admin.Patch("/helpers/:id/availability", cfg.Helpers.SetAvailability)
	admin.Delete("/helpers/:id", cfg.Helpers.Delete)

	admin.Get("/users", cfg.Users.List)
	admin.Post("/users", cfg.Users.Create)
	admin.Get("/users/:id", cfg.Users.Get)
	admin.Put("/users/:id", cfg.Users.Update)
	admin.Post("/users/:id/admin", cfg.Users.MakeAdmin)
	admin.Delete("/users/:id/admin", cfg.Users.RemoveAdmin)
	admin.Post("/users/:id/block", cfg.Users.Block)
	admin.Delete("/users/:id/block", cfg.Users.Unblock)
	admin.Delete("/users/:id", cfg.Users.Delete)

	admin.Get("/bookings", cfg.Bookings.ListAll)
	admin.Patch("/bookings/:id/status", cfg.Bookings.Advance)
	admin.Post("/bookings/:id/cancel", cfg.Bookings.Cancel)

	admin.Get("/contacts", cfg.Contacts.List)
	admin.Post("/contacts/:id/read", cfg.Contacts.MarkRead)
	admin.Delete("/contacts/:id", cfg.Contacts.Delete)
}
