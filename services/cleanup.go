package services

import (
	"log"
	"time"

	"lifetrack/database"
	"lifetrack/models"
)

// Read notifications older than this are eligible for cleanup.
const notificationRetention = 90 * 24 * time.Hour

// CleanupService handles background cleanup tasks
type CleanupService struct{}

var cleanupService *CleanupService

// InitCleanupService initializes the singleton cleanup service.
func InitCleanupService() {
	cleanupService = &CleanupService{}
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// CleanupReadNotifications removes read achievement notifications past the
// retention window. Earned awards themselves are never touched.
func (s *CleanupService) CleanupReadNotifications() (int64, error) {
	db := database.GetDB()
	if db == nil {
		return 0, nil
	}

	cutoff := time.Now().Add(-notificationRetention)
	res := db.Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.AchievementNotification{})
	if res.Error != nil {
		log.Printf("Error cleaning up notifications: %v", res.Error)
		return 0, res.Error
	}

	if res.RowsAffected > 0 {
		log.Printf("✅ Cleaned up %d read notifications", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// CleanupStaleGuests removes guest accounts with no activity for the
// retention window.
func (s *CleanupService) CleanupStaleGuests() (int64, error) {
	db := database.GetDB()
	if db == nil {
		return 0, nil
	}

	cutoff := time.Now().Add(-notificationRetention)
	res := db.Where("is_guest = ? AND last_login < ?", true, cutoff).
		Delete(&models.User{})
	if res.Error != nil {
		log.Printf("Error cleaning up guest accounts: %v", res.Error)
		return 0, res.Error
	}

	if res.RowsAffected > 0 {
		log.Printf("✅ Cleaned up %d stale guest accounts", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
