// handlers/stats.go - Per-user activity statistics
package handlers

import (
	"time"

	"lifetrack/database"
	"lifetrack/middleware"
	"lifetrack/models"
	"lifetrack/services"

	"github.com/gofiber/fiber/v2"
)

// GetUserStats aggregates the caller's session, task, goal and achievement
// numbers into a single summary.
func GetUserStats(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	var sessions []models.Session
	if err := db.Where("user_id = ?", userID).Order("start_time ASC").Find(&sessions).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sessions"})
	}

	completed := 0
	var totalSeconds, longestSeconds float64
	for _, s := range sessions {
		if s.EndTime == nil {
			continue
		}
		completed++
		d := s.Duration()
		totalSeconds += d
		if d > longestSeconds {
			longestSeconds = d
		}
	}

	var completedTasks, completedGoals, earnedCount int64
	db.Model(&models.Task{}).
		Where("user_id = ? AND status IN ?", userID, []string{models.TaskStatusCompleted, models.TaskStatusApproved}).
		Count(&completedTasks)
	db.Model(&models.Goal{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Count(&completedGoals)
	db.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Count(&earnedCount)

	return c.JSON(fiber.Map{
		"success": true,
		"stats": fiber.Map{
			"total_sessions":          completed,
			"total_duration_seconds":  totalSeconds,
			"longest_session_seconds": longestSeconds,
			"current_streak_days":     services.CurrentStreakDays(sessions, time.Now()),
			"longest_streak_days":     services.LongestStreakDays(sessions),
			"completed_tasks":         completedTasks,
			"completed_goals":         completedGoals,
			"achievements_earned":     earnedCount,
			"achievement_points":      user.AchievementPoints,
		},
	})
}
