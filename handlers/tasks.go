// handlers/tasks.go - Task lifecycle with approval workflow
package handlers

import (
	"time"

	"lifetrack/database"
	"lifetrack/middleware"
	"lifetrack/models"
	"lifetrack/services"

	"github.com/gofiber/fiber/v2"
)

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

func CreateTask(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Title is required"})
	}

	task := models.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatusPending,
		DueDate:     req.DueDate,
	}

	db := database.GetDB()
	if err := db.Create(&task).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create task"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "task": task})
}

// CompleteTask marks a pending task completed and runs the award pass.
func CompleteTask(c *fiber.Ctx) error {
	return transitionTask(c, models.TaskStatusCompleted, services.EventTaskCompleted,
		[]string{models.TaskStatusPending})
}

// ApproveTask moves a completed task to approved (keyholder review).
func ApproveTask(c *fiber.Ctx) error {
	return transitionTask(c, models.TaskStatusApproved, services.EventTaskApproved,
		[]string{models.TaskStatusCompleted})
}

// RejectTask moves a completed task to rejected.
func RejectTask(c *fiber.Ctx) error {
	return transitionTask(c, models.TaskStatusRejected, services.EventTaskRejected,
		[]string{models.TaskStatusCompleted})
}

func transitionTask(c *fiber.Ctx, newStatus, event string, allowedFrom []string) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var task models.Task
	if err := db.Where("id = ? AND user_id = ?", c.Params("id"), userID).First(&task).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Task not found"})
	}

	allowed := false
	for _, s := range allowedFrom {
		if task.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return c.Status(400).JSON(fiber.Map{
			"error":  "Invalid task state transition",
			"status": task.Status,
		})
	}

	task.Status = newStatus
	if newStatus == models.TaskStatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	}

	if err := db.Save(&task).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update task"})
	}

	newAchievements := services.GetAchievementService().ProcessTaskEvent(userID, event)

	return c.JSON(fiber.Map{
		"success":          true,
		"task":             task,
		"new_achievements": newAchievements,
	})
}

func GetTasks(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	query := db.Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch tasks"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"tasks":   tasks,
		"total":   len(tasks),
	})
}
