package middleware

import (
	"strings"

	"foodgram/internal/logging"
	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
)

const requesterKey = "requester"

// TokenValidator resolves a bearer token to the user it was issued to.
type TokenValidator interface {
	RequesterFromToken(token string) (services.Requester, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(auth TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		requester, err := auth.RequesterFromToken(token)
		if err != nil {
			logging.Debug().Err(err).Msg("JWT validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(requesterKey, requester)
		return c.Next()
	}
}

// OptionalAuth identifies the requester when a valid token is present and
// lets anonymous requests through otherwise.
func OptionalAuth(auth TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c.Get("Authorization")); ok {
			if requester, err := auth.RequesterFromToken(token); err == nil {
				c.Locals(requesterKey, requester)
			}
		}
		return c.Next()
	}
}

// Requester returns the identity stored by AuthRequired or OptionalAuth, or
// the anonymous requester.
func Requester(c *fiber.Ctx) services.Requester {
	if r, ok := c.Locals(requesterKey).(services.Requester); ok {
		return r
	}
	return services.Requester{}
}

// bearerToken accepts "Bearer <token>" and the "Token <token>" scheme used by
// DRF clients.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", false
	}
	if parts[0] != "Bearer" && parts[0] != "Token" {
		return "", false
	}
	return parts[1], true
}
