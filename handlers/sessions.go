// handlers/sessions.go - Session lifecycle
package handlers

import (
	"time"

	"lifetrack/database"
	"lifetrack/middleware"
	"lifetrack/models"
	"lifetrack/services"
	"lifetrack/utils"

	"github.com/gofiber/fiber/v2"
)

type StartSessionRequest struct {
	Note string `json:"note"`
}

// StartSession opens a new session. A user has at most one active session;
// starting while one is open is rejected.
func StartSession(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req StartSessionRequest
	_ = c.BodyParser(&req)

	db := database.GetDB()

	var active models.Session
	if err := db.Where("user_id = ? AND end_time IS NULL", userID).First(&active).Error; err == nil {
		return c.Status(400).JSON(fiber.Map{
			"error":      "A session is already active",
			"session_id": active.ID,
		})
	}

	session := models.Session{
		UserID:    userID,
		StartTime: time.Now(),
		Note:      req.Note,
	}

	if err := db.Create(&session).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to start session"})
	}

	// Time-of-day and calendar achievements are judged at session start.
	newAchievements := services.GetAchievementService().
		ProcessSessionEvent(userID, services.EventSessionStart, &session)

	return c.Status(201).JSON(fiber.Map{
		"success":          true,
		"session":          session,
		"new_achievements": newAchievements,
	})
}

// EndSession closes the active session and runs the award pass.
func EndSession(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var session models.Session
	if err := db.Where("user_id = ? AND end_time IS NULL", userID).First(&session).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "No active session"})
	}

	now := time.Now()
	session.EndTime = &now
	if err := db.Save(&session).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to end session"})
	}

	newAchievements := services.GetAchievementService().
		ProcessSessionEvent(userID, services.EventSessionEnd, &session)

	return c.JSON(fiber.Map{
		"success":          true,
		"session":          session,
		"duration_seconds": session.Duration(),
		"new_achievements": newAchievements,
	})
}

// GetActiveSession returns the running session, if any.
func GetActiveSession(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var session models.Session
	if err := db.Where("user_id = ? AND end_time IS NULL", userID).First(&session).Error; err != nil {
		return c.JSON(fiber.Map{"success": true, "active": false})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"active":  true,
		"session": session,
	})
}

// GetSessions lists the user's sessions, newest first.
func GetSessions(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	limit := utils.ClampInt(c.QueryInt("limit", 50), 1, 200)
	offset := utils.MaxInt(c.QueryInt("offset", 0), 0)

	db := database.GetDB()

	var sessions []models.Session
	if err := db.Where("user_id = ?", userID).
		Order("start_time DESC").
		Limit(limit).Offset(offset).
		Find(&sessions).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sessions"})
	}

	var total int64
	db.Model(&models.Session{}).Where("user_id = ?", userID).Count(&total)

	return c.JSON(fiber.Map{
		"success":  true,
		"sessions": sessions,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}
