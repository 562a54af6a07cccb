package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/crm-service/internal/api/http/handlers"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Employees      *handlers.EmployeesHandler
	Leads          *handlers.LeadsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Role sets are explicit per subtree: the
// admin group does not admit employees and the employee group does not admit
// admins.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Get("/verify", cfg.Auth.Verify)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	adminGroup := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	adminGroup.Get("/employees", cfg.Employees.List)
	adminGroup.Post("/employees", cfg.Employees.Provision)
	adminGroup.Patch("/employees/:id/role", cfg.Employees.ChangeRole)

	employeeGroup := app.Group("/employee", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleEmployee))
	employeeGroup.Get("/leads", cfg.Leads.List)
	employeeGroup.Post("/leads", cfg.Leads.Create)
}
