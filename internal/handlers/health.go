// Package handlers contains the HTTP route handler functions for the ClubHub
// API. Each exported function follows the handler factory pattern: it takes
// the injected *gorm.DB and returns a fiber.Handler, so no package relies on
// a global database handle.
package handlers

import "github.com/gofiber/fiber/v2"

// HealthCheck handles GET /health. No database access, no authentication —
// load balancers and container probes hit this to verify the server is up.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
