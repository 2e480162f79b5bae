package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/nestegg/internal/session"
)

// RequireOwner sends visitors without an owner identity to redirectTo. It must
// run after the session middleware.
func RequireOwner(redirectTo string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if !session.FromCtx(c).HasOwner() {
			return c.Redirect().Status(fiber.StatusSeeOther).To(redirectTo)
		}
		return c.Next()
	}
}

// VersionHeader stamps every response with the running version.
func VersionHeader(version string) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Set("X-Nestegg-Version", version)
		return c.Next()
	}
}
