package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/visitordesk/visitor-service/internal/api/http/handlers"
	"github.com/visitordesk/visitor-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Gate     *auth.Gate
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Users    *handlers.UsersHandler
	Visitors *handlers.VisitorsHandler
	Staff    *handlers.StaffHandler
	Uploads  *handlers.UploadsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	gate := cfg.Gate

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/internal/metrics", gate.StaticSecret(), cfg.Health.Metrics)

	v1 := app.Group("/api/v1")

	v1.Get("/auth/validate", cfg.Auth.Validate)

	users := v1.Group("/users")
	users.Post("/create/superadmin", cfg.Users.CreateSuperAdmin)
	users.Post("/create/admin", gate.SuperAdmin(), cfg.Users.CreateAdmin)
	users.Post("/login", cfg.Users.Login)
	users.Get("/self", gate.AdminOrSuperAdmin(), cfg.Users.Self)
	users.Get("/all", gate.AdminOrSuperAdmin(), cfg.Users.ListActive)
	users.Get("/all/inactive", gate.SuperAdmin(), cfg.Users.ListAll)
	users.Post("/reset-password", gate.AdminOrSuperAdmin(), cfg.Users.ChangeOwnPassword)
	users.Post("/reset-password/:userId", gate.SuperAdmin(), cfg.Users.ResetPassword)
	users.Put("/profile", gate.AdminOrSuperAdmin(), cfg.Users.UpdateOwnProfile)
	users.Put("/profile/:userId", gate.SuperAdmin(), cfg.Users.UpdateProfile)
	users.Delete("/:userId", gate.SuperAdmin(), cfg.Users.Delete)
	users.Post("/restore/:userId", gate.SuperAdmin(), cfg.Users.Restore)

	visitors := v1.Group("/visitors")
	visitors.Get("/stats", gate.Optional(), cfg.Visitors.Stats)
	visitors.Post("/create", gate.Any(), cfg.Visitors.Create)
	visitors.Get("/all", gate.Any(), cfg.Visitors.List)
	visitors.Get("/export", gate.Any(), cfg.Visitors.Export)
	visitors.Get("/search", gate.Any(), cfg.Visitors.Search)
	visitors.Get("/phone", gate.Any(), cfg.Visitors.ByPhone)
	visitors.Get("/recent-active", gate.Any(), cfg.Visitors.RecentActive)
	visitors.Get("/:id", gate.Any(), cfg.Visitors.Get)
	visitors.Put("/:id", gate.Any(), cfg.Visitors.Update)
	visitors.Post("/:id/checkout", gate.Any(), cfg.Visitors.CheckOut)
	visitors.Delete("/:id", gate.Any(), cfg.Visitors.Delete)

	staff := v1.Group("/staff")
	staff.Get("/active", gate.Any(), cfg.Staff.Active)
	staff.Get("/validate", gate.Any(), cfg.Staff.Validate)
	staff.Get("/", gate.AdminOrSuperAdmin(), cfg.Staff.List)
	staff.Post("/", gate.AdminOrSuperAdmin(), cfg.Staff.Create)
	staff.Get("/:id", gate.AdminOrSuperAdmin(), cfg.Staff.Get)
	staff.Put("/:id", gate.AdminOrSuperAdmin(), cfg.Staff.Update)
	staff.Delete("/:id", gate.AdminOrSuperAdmin(), cfg.Staff.Delete)

	upload := v1.Group("/upload")
	upload.Post("/public/file", gate.Optional(), cfg.Uploads.File)
	upload.Post("/public/image", gate.Optional(), cfg.Uploads.Image)
	upload.Post("/public/3dfile", gate.Admin(), cfg.Uploads.File)
	upload.Post("/download", gate.Any(), cfg.Uploads.Download)
	upload.Get("/objects", gate.AdminOrSuperAdmin(), cfg.Uploads.List)
}
