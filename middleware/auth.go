package middleware

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// ParticipantRoles are the role tags a participant account may carry.
var ParticipantRoles = []string{"iiit", "non-iiit"}

// Protected verifies the Bearer access token and gates the route on the
// caller's role tag. With no roles listed, any valid token passes.
// Claims land in c.Locals: user_id, username, user_type, filled.
func Protected(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
		}

		claims, err := ParseAccessToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid or expired token"})
		}

		userType, _ := claims["userType"].(string)
		if len(roles) > 0 && !contains(roles, userType) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Access denied."})
		}

		userID, _ := claims["userId"].(string)
		username, _ := claims["username"].(string)
		filled, _ := claims["filled"].(bool)
		c.Locals("user_id", userID)
		c.Locals("username", username)
		c.Locals("user_type", userType)
		c.Locals("filled", filled)

		return c.Next()
	}
}

// ParseAccessToken validates a raw access token and returns its claims. The
// websocket upgrade path uses this directly since it authenticates via a
// query parameter rather than the Authorization header.
func ParseAccessToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func extractBearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("No token provided")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader || token == "" {
		return "", fmt.Errorf("Malformed Authorization header")
	}
	return token, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
