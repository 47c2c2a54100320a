package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"lifetrack/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique name per test so parallel packages never share state.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Task{},
		&models.Goal{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.AchievementProgress{},
		&models.AchievementNotification{},
	))
	return db
}

func newTestEngine(t *testing.T, db *gorm.DB) *AchievementService {
	t.Helper()
	engine := NewAchievementService(NewAchievementStore(db), NewActivityHistory(db), DefaultCatalog())
	require.NoError(t, engine.Initialize())
	return engine
}

func createTestUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Username: "tester_" + uuid.NewString()[:8], Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func addCompletedSession(t *testing.T, db *gorm.DB, userID uint, start time.Time, duration time.Duration) {
	t.Helper()
	end := start.Add(duration)
	require.NoError(t, db.Create(&models.Session{
		UserID: userID, StartTime: start, EndTime: &end,
	}).Error)
}

func TestInitializeSeedsCatalogOnce(t *testing.T) {
	db := setupTestDB(t)
	newTestEngine(t, db)

	var count int64
	require.NoError(t, db.Model(&models.Achievement{}).Count(&count).Error)
	assert.Equal(t, int64(len(DefaultCatalog())), count)

	// A second engine against the same storage must not duplicate the seed.
	newTestEngine(t, db)
	require.NoError(t, db.Model(&models.Achievement{}).Count(&count).Error)
	assert.Equal(t, int64(len(DefaultCatalog())), count)
}

func TestInitializeSkipsSeedWhenStorageNotEmpty(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Achievement{
		ID: "custom", Name: "Custom", Category: models.CategorySpecial, IsActive: true,
	}).Error)

	newTestEngine(t, db)

	var count int64
	require.NoError(t, db.Model(&models.Achievement{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInitializeRejectsUnknownCondition(t *testing.T) {
	db := setupTestDB(t)
	catalog := []models.Achievement{{
		ID: "broken", Name: "Broken", Category: models.CategorySpecial, IsActive: true,
		Requirements: []models.Requirement{
			{Type: models.RequirementSpecialCondition, Condition: "does_not_exist", Value: 1},
		},
	}}

	engine := NewAchievementService(NewAchievementStore(db), NewActivityHistory(db), catalog)
	err := engine.Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does_not_exist")
}

func TestAwardIsExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	user := createTestUser(t, db)

	addCompletedSession(t, db, user.ID, time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), time.Hour)

	awards := engine.ProcessSessionEvent(user.ID, EventSessionEnd, nil)
	require.Len(t, awards, 1)
	assert.Equal(t, "first_session", awards[0].ID)

	// Replaying the event must not award or notify again.
	awards = engine.ProcessSessionEvent(user.ID, EventSessionEnd, nil)
	assert.Empty(t, awards)

	var earnedCount, notificationCount int64
	require.NoError(t, db.Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&earnedCount).Error)
	require.NoError(t, db.Model(&models.AchievementNotification{}).Where("user_id = ?", user.ID).Count(&notificationCount).Error)
	assert.Equal(t, int64(1), earnedCount)
	assert.Equal(t, int64(1), notificationCount)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 10, fresh.AchievementPoints)
}

func TestCumulativeProgressTracksTowardMilestone(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	user := createTestUser(t, db)

	// Four sessions on one weekday, none before 8 AM, so only the first
	// milestone can trigger.
	noon := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		addCompletedSession(t, db, user.ID, noon.Add(time.Duration(i)*2*time.Hour), time.Hour)
	}

	awards := engine.ProcessSessionEvent(user.ID, EventSessionEnd, nil)
	require.Len(t, awards, 1)
	assert.Equal(t, "first_session", awards[0].ID)

	var progress models.AchievementProgress
	require.NoError(t, db.Where("user_id = ? AND achievement_id = ?", user.ID, "ten_sessions").First(&progress).Error)
	assert.Equal(t, 4.0, progress.CurrentValue)
	assert.Equal(t, 10.0, progress.TargetValue)
	assert.False(t, progress.IsCompleted)

	// Six more sessions push the counter over the line; the progress row is
	// finalized at the target.
	for i := 4; i < 10; i++ {
		addCompletedSession(t, db, user.ID, noon.Add(time.Duration(i)*2*time.Hour), time.Hour)
	}

	awards = engine.ProcessSessionEvent(user.ID, EventSessionEnd, nil)
	require.Len(t, awards, 1)
	assert.Equal(t, "ten_sessions", awards[0].ID)

	require.NoError(t, db.Where("user_id = ? AND achievement_id = ?", user.ID, "ten_sessions").First(&progress).Error)
	assert.Equal(t, 10.0, progress.CurrentValue)
	assert.True(t, progress.IsCompleted)
}

func TestStreakAwards(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	user := createTestUser(t, db)

	// Mon/Tue/Wed noon sessions: a 3-day streak without touching a weekend.
	for d := 4; d <= 6; d++ {
		addCompletedSession(t, db, user.ID, time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC), time.Hour)
	}

	awards := engine.ProcessSessionEvent(user.ID, EventSessionEnd, nil)
	ids := awardIDs(awards)
	assert.Contains(t, ids, "streak_3")
	assert.Contains(t, ids, "first_session")
	assert.NotContains(t, ids, "streak_7")
}

func TestGoalEventAwards(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	user := createTestUser(t, db)

	now := time.Now()
	goal := models.Goal{
		UserID: user.ID, Title: "Distance", Unit: "seconds",
		CurrentValue: 150000, TargetValue: 100000,
		IsCompleted: true, CompletedAt: &now,
	}
	require.NoError(t, db.Create(&goal).Error)

	awards := engine.ProcessGoalEvent(user.ID, EventGoalCompleted, &goal)
	ids := awardIDs(awards)
	assert.Contains(t, ids, "first_goal")
	assert.Contains(t, ids, "overachiever")
	// 50000 over target is far outside the exact-match tolerance.
	assert.NotContains(t, ids, "precision")
}

func TestExactGoalAward(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	user := createTestUser(t, db)

	now := time.Now()
	goal := models.Goal{
		UserID: user.ID, Title: "On the nose", Unit: "seconds",
		CurrentValue: 100500, TargetValue: 100000,
		IsCompleted: true, CompletedAt: &now,
	}
	require.NoError(t, db.Create(&goal).Error)

	awards := engine.ProcessGoalEvent(user.ID, EventGoalCompleted, &goal)
	ids := awardIDs(awards)
	assert.Contains(t, ids, "precision")
	assert.NotContains(t, ids, "overachiever")
}

func TestTaskApprovalRateAward(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	user := createTestUser(t, db)

	for i := 0; i < 9; i++ {
		require.NoError(t, db.Create(&models.Task{
			UserID: user.ID, Title: "chore", Status: models.TaskStatusApproved,
		}).Error)
	}
	require.NoError(t, db.Create(&models.Task{
		UserID: user.ID, Title: "chore", Status: models.TaskStatusRejected,
	}).Error)

	awards := engine.ProcessTaskEvent(user.ID, EventTaskApproved)
	ids := awardIDs(awards)
	assert.Contains(t, ids, "reliable")
	assert.Contains(t, ids, "first_task")
}

func TestEmptyRequirementsNeverAutoAwarded(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	user := createTestUser(t, db)

	addCompletedSession(t, db, user.ID, time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), time.Hour)

	engine.PerformFullCheck(user.ID)

	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", user.ID, "founder").
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestFullCheckIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	user := createTestUser(t, db)

	// A January 1st session also exercises the hidden calendar achievement
	// through the historical scan.
	addCompletedSession(t, db, user.ID, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), time.Hour)

	first := engine.PerformFullCheck(user.ID)
	ids := awardIDs(first)
	assert.Contains(t, ids, "first_session")
	assert.Contains(t, ids, "new_year")

	var notificationsBefore int64
	require.NoError(t, db.Model(&models.AchievementNotification{}).Where("user_id = ?", user.ID).Count(&notificationsBefore).Error)

	second := engine.PerformFullCheck(user.ID)
	assert.Empty(t, second)

	var notificationsAfter int64
	require.NoError(t, db.Model(&models.AchievementNotification{}).Where("user_id = ?", user.ID).Count(&notificationsAfter).Error)
	assert.Equal(t, notificationsBefore, notificationsAfter)
}

func TestFullCheckBackfillsGoalConditions(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	user := createTestUser(t, db)

	// Goals completed before the engine ever saw an event, as after a bulk
	// import. No goal-completed event fires; only the full check runs.
	now := time.Now()
	require.NoError(t, db.Create(&models.Goal{
		UserID: user.ID, Title: "Overshot", Unit: "seconds",
		CurrentValue: 150000, TargetValue: 100000,
		IsCompleted: true, CompletedAt: &now,
	}).Error)
	require.NoError(t, db.Create(&models.Goal{
		UserID: user.ID, Title: "On the nose", Unit: "seconds",
		CurrentValue: 100500, TargetValue: 100000,
		IsCompleted: true, CompletedAt: &now,
	}).Error)

	ids := awardIDs(engine.PerformFullCheck(user.ID))
	assert.Contains(t, ids, "first_goal")
	assert.Contains(t, ids, "overachiever")
	assert.Contains(t, ids, "precision")
}

func TestAwardRollsBackWhenNotificationWriteFails(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	user := createTestUser(t, db)

	addCompletedSession(t, db, user.ID, time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), time.Hour)

	// Break the notification write; the whole award must roll back.
	require.NoError(t, db.Migrator().DropTable(&models.AchievementNotification{}))

	awards := engine.ProcessSessionEvent(user.ID, EventSessionEnd, nil)
	assert.Empty(t, awards)

	var earnedCount int64
	require.NoError(t, db.Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&earnedCount).Error)
	assert.Equal(t, int64(0), earnedCount)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 0, fresh.AchievementPoints)

	// Storage heals; the next event genuinely retries and the notification
	// is emitted with the award.
	require.NoError(t, db.AutoMigrate(&models.AchievementNotification{}))

	awards = engine.ProcessSessionEvent(user.ID, EventSessionEnd, nil)
	require.Len(t, awards, 1)
	assert.Equal(t, "first_session", awards[0].ID)

	var notificationCount int64
	require.NoError(t, db.Model(&models.AchievementNotification{}).Where("user_id = ?", user.ID).Count(&notificationCount).Error)
	assert.Equal(t, int64(1), notificationCount)

	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 10, fresh.AchievementPoints)
}

func TestProgressTracksLeastCompleteRequirement(t *testing.T) {
	db := setupTestDB(t)

	catalog := []models.Achievement{{
		ID: "balanced", Name: "Balanced", Category: models.CategorySessionMilestones,
		Difficulty: models.DifficultyRare, Points: 50, IsActive: true,
		Requirements: []models.Requirement{
			{Type: models.RequirementSessionCount, Value: 10, Unit: "count"},
			{Type: models.RequirementTaskCompletion, Value: 4, Unit: "count"},
		},
	}}
	engine := NewAchievementService(NewAchievementStore(db), NewActivityHistory(db), catalog)
	require.NoError(t, engine.Initialize())
	user := createTestUser(t, db)

	// Sessions sit at 50%, tasks at 75%; the progress row must follow the
	// requirement furthest from done.
	noon := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		addCompletedSession(t, db, user.ID, noon.Add(time.Duration(i)*time.Hour), 30*time.Minute)
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Task{
			UserID: user.ID, Title: "chore", Status: models.TaskStatusCompleted,
		}).Error)
	}

	assert.Empty(t, engine.ProcessSessionEvent(user.ID, EventSessionEnd, nil))

	var progress models.AchievementProgress
	require.NoError(t, db.Where("user_id = ? AND achievement_id = ?", user.ID, "balanced").First(&progress).Error)
	assert.Equal(t, 5.0, progress.CurrentValue)
	assert.Equal(t, 10.0, progress.TargetValue)
	assert.False(t, progress.IsCompleted)
}

func TestDisabledAchievementsAreSkipped(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(t, db)
	user := createTestUser(t, db)

	require.NoError(t, db.Model(&models.Achievement{}).
		Where("id = ?", "first_session").
		Update("is_active", false).Error)

	addCompletedSession(t, db, user.ID, time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), time.Hour)

	awards := engine.ProcessSessionEvent(user.ID, EventSessionEnd, nil)
	assert.NotContains(t, awardIDs(awards), "first_session")
}

// failingHistory simulates storage going away mid-pass.
type failingHistory struct{}

func (failingHistory) GetUserSessions(uint) ([]models.Session, error) {
	return nil, errors.New("connection reset")
}
func (failingHistory) GetTasks(uint) ([]models.Task, error) {
	return nil, errors.New("connection reset")
}
func (failingHistory) GetGoals(uint) ([]models.Goal, error) {
	return nil, errors.New("connection reset")
}

func TestStorageFailureIsSwallowed(t *testing.T) {
	db := setupTestDB(t)
	engine := NewAchievementService(NewAchievementStore(db), failingHistory{}, DefaultCatalog())
	require.NoError(t, engine.Initialize())

	awards := engine.PerformFullCheck(1)
	assert.Empty(t, awards)

	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func awardIDs(awards []models.Achievement) []string {
	ids := make([]string, 0, len(awards))
	for _, a := range awards {
		ids = append(ids, a.ID)
	}
	return ids
}
