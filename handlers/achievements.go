// handlers/achievements.go - Achievement catalog, progress and notifications
package handlers

import (
	"lifetrack/database"
	"lifetrack/middleware"
	"lifetrack/models"
	"lifetrack/services"

	"github.com/gofiber/fiber/v2"
)

// AchievementView is an Achievement joined with the caller's state.
type AchievementView struct {
	models.Achievement
	Earned   bool     `json:"earned"`
	EarnedAt *string  `json:"earned_at,omitempty"`
	Progress *float64 `json:"progress_percent,omitempty"`
}

// GetAchievements lists the active catalog. Hidden achievements are only
// included once the caller has earned them.
func GetAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var achievements []models.Achievement
	if err := db.Where("is_active = ?", true).Order("category, points").Find(&achievements).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	var earned []models.UserAchievement
	if err := db.Where("user_id = ?", userID).Find(&earned).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch user achievements"})
	}
	earnedByID := make(map[string]models.UserAchievement, len(earned))
	for _, ua := range earned {
		earnedByID[ua.AchievementID] = ua
	}

	var progress []models.AchievementProgress
	if err := db.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch progress"})
	}
	progressByID := make(map[string]models.AchievementProgress, len(progress))
	for _, p := range progress {
		progressByID[p.AchievementID] = p
	}

	views := make([]AchievementView, 0, len(achievements))
	for _, a := range achievements {
		ua, isEarned := earnedByID[a.ID]
		p, isTracked := progressByID[a.ID]

		// Hidden achievements stay invisible until the user has earned them
		// or started making progress toward them.
		if a.IsHidden && !isEarned && !isTracked {
			continue
		}

		view := AchievementView{Achievement: a, Earned: isEarned}
		if isEarned {
			ts := ua.EarnedAt.Format("2006-01-02T15:04:05Z07:00")
			view.EarnedAt = &ts
			pct := float64(100)
			view.Progress = &pct
		} else if isTracked {
			pct := services.CalculateProgressPercentage(p.CurrentValue, p.TargetValue)
			view.Progress = &pct
		}
		views = append(views, view)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": views,
		"total":        len(views),
	})
}

// GetUserAchievements lists only what the caller has earned.
func GetUserAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var earned []models.UserAchievement
	if err := db.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&earned).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch user achievements"})
	}

	totalPoints := 0
	for _, ua := range earned {
		if ua.Achievement != nil {
			totalPoints += ua.Achievement.Points
		}
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": earned,
		"total":        len(earned),
		"total_points": totalPoints,
	})
}

// GetAchievementProgress returns the caller's tracked progress rows.
func GetAchievementProgress(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var progress []models.AchievementProgress
	if err := db.Where("user_id = ?", userID).Order("last_updated DESC").Find(&progress).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch progress"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"progress": progress,
		"total":    len(progress),
	})
}

type VisibilityRequest struct {
	IsVisible bool `json:"is_visible"`
}

// SetAchievementVisibility toggles whether an earned achievement shows on the
// caller's profile.
func SetAchievementVisibility(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req VisibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	db := database.GetDB()

	result := db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, c.Params("id")).
		Update("is_visible", req.IsVisible)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update visibility"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Achievement not earned"})
	}

	return c.JSON(fiber.Map{"success": true, "is_visible": req.IsVisible})
}

// CheckAchievements runs a full evaluation pass for the caller.
func CheckAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	newAchievements := services.GetAchievementService().PerformFullCheck(userID)

	return c.JSON(fiber.Map{
		"success":          true,
		"new_achievements": newAchievements,
		"count":            len(newAchievements),
	})
}

// GetNotifications lists the caller's achievement notifications, newest first.
func GetNotifications(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	query := db.Where("user_id = ?", userID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.AchievementNotification
	if err := query.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch notifications"})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"notifications": notifications,
		"total":         len(notifications),
	})
}

func MarkNotificationRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	result := db.Model(&models.AchievementNotification{}).
		Where("id = ? AND user_id = ?", c.Params("id"), userID).
		Update("is_read", true)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update notification"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Notification not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}

func MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	result := db.Model(&models.AchievementNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update notifications"})
	}

	return c.JSON(fiber.Map{"success": true, "updated": result.RowsAffected})
}
