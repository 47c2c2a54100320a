package admin

import (
	"lifetrack/database"
	"lifetrack/models"
	"lifetrack/services"

	"github.com/gofiber/fiber/v2"
)

// GetAchievements lists the full catalog, inactive and hidden entries included.
func GetAchievements(c *fiber.Ctx) error {
	db := database.GetDB()

	var achievements []models.Achievement
	if err := db.Order("category, points").Find(&achievements).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": achievements,
		"total":        len(achievements),
	})
}

// CreateAchievement adds a catalog entry. Requirements referencing an unknown
// special condition are rejected.
func CreateAchievement(c *fiber.Ctx) error {
	var achievement models.Achievement
	if err := c.BodyParser(&achievement); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if achievement.ID == "" || achievement.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "ID and name are required"})
	}
	if err := services.ValidateRequirements(achievement); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	if err := db.Create(&achievement).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create achievement"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "achievement": achievement})
}

// UpdateAchievement replaces the mutable fields of a catalog entry.
func UpdateAchievement(c *fiber.Ctx) error {
	db := database.GetDB()

	var existing models.Achievement
	if err := db.First(&existing, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Achievement not found"})
	}

	var achievement models.Achievement
	if err := c.BodyParser(&achievement); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := services.ValidateRequirements(achievement); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	achievement.ID = existing.ID
	if err := db.Model(&existing).Updates(map[string]interface{}{
		"name":         achievement.Name,
		"description":  achievement.Description,
		"category":     achievement.Category,
		"icon":         achievement.Icon,
		"difficulty":   achievement.Difficulty,
		"points":       achievement.Points,
		"requirements": achievement.Requirements,
		"is_hidden":    achievement.IsHidden,
		"is_active":    achievement.IsActive,
	}).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update achievement"})
	}

	return c.JSON(fiber.Map{"success": true, "achievement": achievement})
}

// DisableAchievement soft-deletes a catalog entry. Earned rows are kept;
// the entry just stops appearing and stops being evaluated.
func DisableAchievement(c *fiber.Ctx) error {
	db := database.GetDB()

	result := db.Model(&models.Achievement{}).
		Where("id = ?", c.Params("id")).
		Update("is_active", false)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to disable achievement"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Achievement not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}
