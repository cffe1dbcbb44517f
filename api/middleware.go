package api

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// BearerAuth returns a middleware that rejects requests whose
// Authorization header does not carry the expected bearer token.
// The comparison is constant-time.
func BearerAuth(apiKey string) fiber.Handler {
	expected := []byte(apiKey)
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "missing bearer token"})
		}
		if subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid api key"})
		}
		return ctx.Next()
	}
}
