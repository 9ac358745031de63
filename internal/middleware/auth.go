// Package middleware provides authentication, logging, metrics, and rate
// limiting middleware for the application.
package middleware

import (
	"strings"

	"storyforge/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys set by SessionAuth for downstream handlers.
const (
	LocalsUserID      = "userID"
	LocalsSessionID   = "sessionID"
	LocalsEmail       = "userEmail"
	LocalsDisplayName = "userDisplayName"
)

// SessionAuth enforces authentication for protected routes. The bearer token
// is a JWT carrying the session ID; the session registry stays authoritative
// so logout takes effect immediately even for unexpired tokens.
func SessionAuth(sessions *session.Manager, jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims",
			})
		}

		sid, ok := claims["sid"].(string)
		if !ok || sid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token structure - missing session",
			})
		}

		ident, ok := sessions.Get(c.Context(), sid)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Session expired or logged out",
			})
		}

		c.Locals(LocalsUserID, ident.UserID)
		c.Locals(LocalsSessionID, sid)
		c.Locals(LocalsEmail, ident.Email)
		c.Locals(LocalsDisplayName, ident.DisplayName)

		return c.Next()
	}
}
