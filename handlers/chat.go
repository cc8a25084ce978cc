// handlers/chat.go
package handlers

import (
	"campus-event-system/middleware"
	"campus-event-system/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// SetupChatRoutes mounts the websocket chat relay. Browsers cannot set an
// Authorization header on a websocket upgrade, so the access token travels
// as a query parameter and is verified before the upgrade completes.
func SetupChatRoutes(app *fiber.App, chatService *services.ChatService) {
	app.Use("/ws/chat", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		claims, err := middleware.ParseAccessToken(c.Query("token"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid or expired token"})
		}
		userID, _ := claims["userId"].(string)
		username, _ := claims["username"].(string)
		c.Locals("user_id", userID)
		c.Locals("username", username)
		return c.Next()
	})

	app.Get("/ws/chat", websocket.New(chatService.HandleConnection))
}
