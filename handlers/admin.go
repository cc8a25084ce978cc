// handlers/admin.go
package handlers

import (
	"campus-event-system/middleware"
	"campus-event-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, adminService *services.AdminService) {
	// 🔐 Admin-only routes
	admin := app.Group("/api/admin", middleware.Protected("admin"))

	admin.Post("/organizers", adminService.CreateOrganizer)
	admin.Get("/organizers", adminService.GetOrganizers)
	admin.Delete("/organizers/:id", adminService.DeleteOrganizer)
	admin.Put("/organizers/:id/status", adminService.ArchiveOrganizer)

	admin.Get("/password-resets", adminService.GetPasswordResets)
	admin.Put("/password-resets/:id", adminService.ResolvePasswordReset)
}
