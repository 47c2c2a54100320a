// services/achievement_store.go - Storage contracts for the award engine
package services

import (
	"time"

	"lifetrack/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityHistory is the read-only activity feed the engine evaluates
// requirements against.
type ActivityHistory interface {
	GetUserSessions(userID uint) ([]models.Session, error)
	GetTasks(userID uint) ([]models.Task, error)
	GetGoals(userID uint) ([]models.Goal, error)
}

// AchievementStore owns all achievement persistence. The engine is the only
// writer of user_achievements and achievement_progress rows.
type AchievementStore interface {
	GetAllAchievements() ([]models.Achievement, error)
	CreateAchievement(a *models.Achievement) error
	GetAchievementsByCategory(category models.AchievementCategory) ([]models.Achievement, error)
	GetAchievementByID(id string) (*models.Achievement, error)
	GetUserAchievements(userID uint) ([]models.UserAchievement, error)

	// AwardAchievement is an atomic insert-if-absent keyed on the unique
	// (user_id, achievement_id) index. It reports whether a new row was
	// written; a concurrent or repeated award returns false with no error.
	// The award row, the user's points increment and the "earned"
	// notification commit in one transaction: on any failure nothing
	// persists and the next qualifying event retries the whole award.
	AwardAchievement(userID uint, achievementID string, points int) (bool, error)

	GetAchievementProgress(userID uint, achievementID string) (*models.AchievementProgress, error)
	UpdateAchievementProgress(userID uint, achievementID string, current, target float64) error
	CreateNotification(n *models.AchievementNotification) error
}

type gormActivityHistory struct {
	db *gorm.DB
}

// NewActivityHistory returns the GORM-backed activity feed.
func NewActivityHistory(db *gorm.DB) ActivityHistory {
	return &gormActivityHistory{db: db}
}

func (h *gormActivityHistory) GetUserSessions(userID uint) ([]models.Session, error) {
	var sessions []models.Session
	err := h.db.Where("user_id = ?", userID).Order("start_time ASC").Find(&sessions).Error
	return sessions, err
}

func (h *gormActivityHistory) GetTasks(userID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := h.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&tasks).Error
	return tasks, err
}

func (h *gormActivityHistory) GetGoals(userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	err := h.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&goals).Error
	return goals, err
}

type gormAchievementStore struct {
	db *gorm.DB
}

// NewAchievementStore returns the GORM-backed achievement store.
func NewAchievementStore(db *gorm.DB) AchievementStore {
	return &gormAchievementStore{db: db}
}

func (s *gormAchievementStore) GetAllAchievements() ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := s.db.Find(&achievements).Error
	return achievements, err
}

func (s *gormAchievementStore) CreateAchievement(a *models.Achievement) error {
	return s.db.Create(a).Error
}

func (s *gormAchievementStore) GetAchievementsByCategory(category models.AchievementCategory) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := s.db.Where("category = ? AND is_active = ?", category, true).Find(&achievements).Error
	return achievements, err
}

func (s *gormAchievementStore) GetAchievementByID(id string) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := s.db.First(&achievement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (s *gormAchievementStore) GetUserAchievements(userID uint) ([]models.UserAchievement, error) {
	var earned []models.UserAchievement
	err := s.db.Where("user_id = ?", userID).Order("earned_at DESC").Find(&earned).Error
	return earned, err
}

func (s *gormAchievementStore) AwardAchievement(userID uint, achievementID string, points int) (bool, error) {
	inserted := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		award := models.UserAchievement{
			UserID:        userID,
			AchievementID: achievementID,
			EarnedAt:      time.Now(),
			Progress:      100,
			IsVisible:     true,
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).Create(&award)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race or already earned; not an error.
			return nil
		}
		inserted = true

		if points > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", userID).
				Update("achievement_points", gorm.Expr("achievement_points + ?", points)).Error; err != nil {
				return err
			}
		}

		return tx.Create(&models.AchievementNotification{
			UserID:        userID,
			AchievementID: achievementID,
			Type:          models.NotificationEarned,
		}).Error
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (s *gormAchievementStore) GetAchievementProgress(userID uint, achievementID string) (*models.AchievementProgress, error) {
	var progress models.AchievementProgress
	err := s.db.Where("user_id = ? AND achievement_id = ?", userID, achievementID).First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *gormAchievementStore) UpdateAchievementProgress(userID uint, achievementID string, current, target float64) error {
	progress := models.AchievementProgress{
		UserID:        userID,
		AchievementID: achievementID,
		CurrentValue:  current,
		TargetValue:   target,
		IsCompleted:   current >= target,
		LastUpdated:   time.Now(),
	}

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_value", "target_value", "is_completed", "last_updated",
		}),
	}).Create(&progress).Error
}

func (s *gormAchievementStore) CreateNotification(n *models.AchievementNotification) error {
	return s.db.Create(n).Error
}
