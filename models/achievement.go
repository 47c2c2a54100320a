// models/achievement.go
package models

import "time"

type AchievementCategory string

const (
	CategorySessionMilestones AchievementCategory = "session_milestones"
	CategoryConsistency       AchievementCategory = "consistency"
	CategoryStreaks           AchievementCategory = "streaks"
	CategoryGoalBased         AchievementCategory = "goal_based"
	CategoryTaskCompletion    AchievementCategory = "task_completion"
	CategorySpecial           AchievementCategory = "special"
)

type AchievementDifficulty string

const (
	DifficultyCommon    AchievementDifficulty = "common"
	DifficultyUncommon  AchievementDifficulty = "uncommon"
	DifficultyRare      AchievementDifficulty = "rare"
	DifficultyEpic      AchievementDifficulty = "epic"
	DifficultyLegendary AchievementDifficulty = "legendary"
)

type RequirementType string

const (
	RequirementSessionDuration  RequirementType = "session_duration"
	RequirementSessionCount     RequirementType = "session_count"
	RequirementStreakDays       RequirementType = "streak_days"
	RequirementGoalCompletion   RequirementType = "goal_completion"
	RequirementTaskCompletion   RequirementType = "task_completion"
	RequirementSpecialCondition RequirementType = "special_condition"
)

// Requirement is a single condition an achievement demands. Condition is
// only set for special_condition requirements and names a registered
// predicate (e.g. "sessions_before_8am").
type Requirement struct {
	Type      RequirementType `json:"type"`
	Value     float64         `json:"value"`
	Unit      string          `json:"unit"` // seconds, days, count, percent
	Condition string          `json:"condition,omitempty"`
}

// Achievement is a catalog entry. Rows are seeded once and treated as
// read-only by the award engine; admins may soft-disable via IsActive.
// An achievement with no requirements can never be auto-awarded.
type Achievement struct {
	ID           string                `gorm:"primaryKey;size:64" json:"id"`
	Name         string                `gorm:"not null;uniqueIndex" json:"name"`
	Description  string                `gorm:"not null" json:"description"`
	Category     AchievementCategory   `gorm:"not null;index;size:32" json:"category"`
	Icon         string                `gorm:"size:50" json:"icon"`
	Difficulty   AchievementDifficulty `gorm:"not null;size:16" json:"difficulty"`
	Points       int                   `gorm:"default:0" json:"points"`
	Requirements []Requirement         `gorm:"serializer:json" json:"requirements"`
	IsHidden     bool                  `gorm:"default:false" json:"is_hidden"`
	IsActive     bool                  `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// UserAchievement records an earned achievement. At most one row per
// (user, achievement) pair, enforced by a unique composite index. The engine
// never updates or deletes these; only IsVisible may change afterwards.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"not null;size:64;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`
	Progress      int       `gorm:"default:100" json:"progress"`
	IsVisible     bool      `gorm:"default:true" json:"is_visible"`
	Metadata      string    `gorm:"type:text" json:"metadata,omitempty"`

	User        *User        `gorm:"foreignKey:UserID" json:"-"`
	Achievement *Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

// AchievementProgress tracks partial completion of a cumulative requirement.
// One row per (user, achievement); distinct from UserAchievement, which only
// records the earned fact.
type AchievementProgress struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement_progress" json:"user_id"`
	AchievementID string    `gorm:"not null;size:64;uniqueIndex:idx_user_achievement_progress" json:"achievement_id"`
	CurrentValue  float64   `gorm:"default:0" json:"current_value"`
	TargetValue   float64   `gorm:"not null" json:"target_value"`
	IsCompleted   bool      `gorm:"default:false" json:"is_completed"`
	LastUpdated   time.Time `json:"last_updated"`
}

// Notification types
const (
	NotificationEarned    = "earned"
	NotificationProgress  = "progress"
	NotificationMilestone = "milestone"
)

// AchievementNotification is written by the engine when an award happens.
// The read/unread lifecycle belongs to the client.
type AchievementNotification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	AchievementID string    `gorm:"not null;size:64" json:"achievement_id"`
	Type          string    `gorm:"not null;size:20" json:"type"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`

	Achievement *Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

func (AchievementProgress) TableName() string {
	return "achievement_progress"
}

func (AchievementNotification) TableName() string {
	return "achievement_notifications"
}
