package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pass-service/internal/api/http/handlers"
	"github.com/spec-kit/pass-service/internal/auth"
	"github.com/spec-kit/pass-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Upload         *handlers.UploadHandler
	Pass           *handlers.PassHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register/:token", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/verify-invite/:token", cfg.Auth.VerifyInvite)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Get("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Post("/invite", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Auth.Invite)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id/status", cfg.Users.UpdateStatus)
	users.Delete("/:id", cfg.Users.Delete)

	upload := api.Group("/upload", cfg.AuthMiddleware.Handle)
	upload.Put("/users/:id/photo", cfg.Upload.UploadPhoto)
	upload.Put("/users/:id/documents/:type", auth.RequireRole(domain.RoleAdmin), cfg.Upload.ReplaceDocument)
	upload.Delete("/:key", auth.RequireRole(domain.RoleAdmin), cfg.Upload.DeleteFile)

	api.Get("/pass/:email", cfg.AuthMiddleware.Handle, cfg.Pass.Get)
}
