package cli

import "github.com/gofiber/fiber/v3"

// createFiberConfig returns Fiber configuration.
func createFiberConfig(appName string, views fiber.Views, errorHandler fiber.ErrorHandler) fiber.Config {
	return fiber.Config{
		AppName:      appName,
		Views:        views,
		ErrorHandler: errorHandler,
		// Use X-Forwarded-For to get real client IP behind reverse proxy
		ProxyHeader: fiber.HeaderXForwardedFor,
	}
}
