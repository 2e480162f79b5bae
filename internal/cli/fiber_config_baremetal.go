//go:build !docker

package cli

import "github.com/gofiber/fiber/v3"

// listenConfig returns listener settings for bare metal deployments, where
// the startup banner is useful to whoever launched the process.
func listenConfig() fiber.ListenConfig {
	return fiber.ListenConfig{
		DisableStartupMessage: false,
	}
}
