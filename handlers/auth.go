// handlers/auth.go
package handlers

import (
	"campus-event-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService) {
	// 🔓 Public routes — CAPTCHA-gated where state is created
	auth := app.Group("/api/auth")

	auth.Post("/register", authService.Register)
	auth.Post("/login", authService.Login)
	auth.Post("/admin-login", authService.AdminLogin)
	auth.Post("/reset-password-request", authService.RequestPasswordReset)
}
