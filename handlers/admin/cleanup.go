package admin

import (
	"lifetrack/services"

	"github.com/gofiber/fiber/v2"
)

// RunCleanup triggers the retention jobs on demand.
func RunCleanup(c *fiber.Ctx) error {
	svc := services.GetCleanupService()

	notifications, err := svc.CleanupReadNotifications()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to clean notifications"})
	}

	guests, err := svc.CleanupStaleGuests()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to clean guest accounts"})
	}

	return c.JSON(fiber.Map{
		"success":               true,
		"notifications_removed": notifications,
		"guests_removed":        guests,
	})
}
