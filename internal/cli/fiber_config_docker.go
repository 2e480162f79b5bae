//go:build docker

package cli

import "github.com/gofiber/fiber/v3"

// listenConfig returns listener settings for Docker deployments. Containers
// ship structured logs only, so the startup banner is suppressed.
func listenConfig() fiber.ListenConfig {
	return fiber.ListenConfig{
		DisableStartupMessage: true,
	}
}
