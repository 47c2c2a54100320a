// database/migrate.go - Database Migration Runner
package database

import (
	"lifetrack/models"
	"log"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Task{},
		&models.Goal{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.AchievementProgress{},
		&models.AchievementNotification{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes AutoMigrate tags do not cover. The unique
// pair index on user_achievements is the at-most-once award guarantee; the
// engine's insert-if-absent write depends on it.
func createIndexes() {
	db := GetDB()

	// User indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_guest ON users(is_guest)")

	// Activity indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_user_start ON sessions(user_id, start_time DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_active ON sessions(user_id) WHERE end_time IS NULL")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_goals_user_completed ON goals(user_id, is_completed)")

	// Achievement indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_category ON achievements(category)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_user_achievement ON user_achievements(user_id, achievement_id)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_user_achievement_progress ON achievement_progress(user_id, achievement_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON achievement_notifications(user_id, is_read)")
}
