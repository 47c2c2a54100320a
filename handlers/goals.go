// handlers/goals.go - Goal tracking
package handlers

import (
	"time"

	"lifetrack/database"
	"lifetrack/middleware"
	"lifetrack/models"
	"lifetrack/services"

	"github.com/gofiber/fiber/v2"
)

type CreateGoalRequest struct {
	Title       string  `json:"title"`
	Unit        string  `json:"unit"`
	TargetValue float64 `json:"target_value"`
}

type UpdateGoalProgressRequest struct {
	CurrentValue float64 `json:"current_value"`
}

func CreateGoal(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Title is required"})
	}
	if req.TargetValue <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Target value must be positive"})
	}

	goal := models.Goal{
		UserID:      userID,
		Title:       req.Title,
		Unit:        req.Unit,
		TargetValue: req.TargetValue,
	}

	db := database.GetDB()
	if err := db.Create(&goal).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create goal"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "goal": goal})
}

// UpdateGoalProgress records new progress; reaching the target completes the
// goal and runs the award pass against this goal.
func UpdateGoalProgress(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpdateGoalProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	db := database.GetDB()

	var goal models.Goal
	if err := db.Where("id = ? AND user_id = ?", c.Params("id"), userID).First(&goal).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Goal not found"})
	}

	goal.CurrentValue = req.CurrentValue

	completedNow := false
	if !goal.IsCompleted && goal.CurrentValue >= goal.TargetValue {
		goal.IsCompleted = true
		now := time.Now()
		goal.CompletedAt = &now
		completedNow = true
	}

	if err := db.Save(&goal).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update goal"})
	}

	var newAchievements []models.Achievement
	if completedNow {
		newAchievements = services.GetAchievementService().
			ProcessGoalEvent(userID, services.EventGoalCompleted, &goal)
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"goal":             goal,
		"completed":        completedNow,
		"new_achievements": newAchievements,
	})
}

func GetGoals(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var goals []models.Goal
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&goals).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch goals"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"goals":   goals,
		"total":   len(goals),
	})
}
