// services/achievement_catalog.go - Predefined achievement catalog
package services

import (
	"fmt"

	"lifetrack/models"
)

// DefaultCatalog returns the predefined achievement set. The engine seeds it
// into storage exactly once; afterwards the database copy is authoritative
// (admins may deactivate entries there).
func DefaultCatalog() []models.Achievement {
	return []models.Achievement{
		// Session milestones
		{
			ID: "first_session", Name: "First Lock", Icon: "🔒",
			Description: "Complete your first session",
			Category:    models.CategorySessionMilestones,
			Difficulty:  models.DifficultyCommon, Points: 10, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementSessionCount, Value: 1, Unit: "count"},
			},
		},
		{
			ID: "ten_sessions", Name: "Committed", Icon: "🔐",
			Description: "Complete 10 sessions",
			Category:    models.CategorySessionMilestones,
			Difficulty:  models.DifficultyUncommon, Points: 50, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementSessionCount, Value: 10, Unit: "count"},
			},
		},
		{
			ID: "fifty_sessions", Name: "Devoted", Icon: "⛓️",
			Description: "Complete 50 sessions",
			Category:    models.CategorySessionMilestones,
			Difficulty:  models.DifficultyRare, Points: 150, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementSessionCount, Value: 50, Unit: "count"},
			},
		},
		{
			ID: "hundred_sessions", Name: "Centurion", Icon: "🏛️",
			Description: "Complete 100 sessions",
			Category:    models.CategorySessionMilestones,
			Difficulty:  models.DifficultyEpic, Points: 300, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementSessionCount, Value: 100, Unit: "count"},
			},
		},
		{
			ID: "full_day_session", Name: "Around the Clock", Icon: "🕛",
			Description: "Complete a single session lasting 24 hours",
			Category:    models.CategorySessionMilestones,
			Difficulty:  models.DifficultyRare, Points: 100, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementSessionDuration, Value: 86400, Unit: "seconds"},
			},
		},
		{
			ID: "week_long_session", Name: "The Long Haul", Icon: "🗓️",
			Description: "Complete a single session lasting 7 days",
			Category:    models.CategorySessionMilestones,
			Difficulty:  models.DifficultyLegendary, Points: 500, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementSessionDuration, Value: 604800, Unit: "seconds"},
			},
		},

		// Streaks
		{
			ID: "streak_3", Name: "Warming Up", Icon: "🔥",
			Description: "Sessions on 3 consecutive days",
			Category:    models.CategoryStreaks,
			Difficulty:  models.DifficultyCommon, Points: 25, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementStreakDays, Value: 3, Unit: "days"},
			},
		},
		{
			ID: "streak_7", Name: "On Fire", Icon: "🔥",
			Description: "Sessions on 7 consecutive days",
			Category:    models.CategoryStreaks,
			Difficulty:  models.DifficultyUncommon, Points: 75, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementStreakDays, Value: 7, Unit: "days"},
			},
		},
		{
			ID: "streak_30", Name: "Unbroken", Icon: "💎",
			Description: "Sessions on 30 consecutive days",
			Category:    models.CategoryStreaks,
			Difficulty:  models.DifficultyEpic, Points: 300, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementStreakDays, Value: 30, Unit: "days"},
			},
		},

		// Consistency
		{
			ID: "early_riser", Name: "Early Riser", Icon: "🌅",
			Description: "Start 5 sessions before 8 AM",
			Category:    models.CategoryConsistency,
			Difficulty:  models.DifficultyUncommon, Points: 50, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementSpecialCondition, Value: 5, Unit: "count", Condition: "sessions_before_8am"},
			},
		},
		{
			ID: "weekend_warrior", Name: "Weekend Warrior", Icon: "🛡️",
			Description: "Sessions on 4 different weekends",
			Category:    models.CategoryConsistency,
			Difficulty:  models.DifficultyUncommon, Points: 50, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementSpecialCondition, Value: 4, Unit: "count", Condition: "weekend_sessions"},
			},
		},
		{
			ID: "reliable", Name: "Reliable", Icon: "✅",
			Description: "Keep a task approval rate of 90% or better",
			Category:    models.CategoryConsistency,
			Difficulty:  models.DifficultyRare, Points: 100, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementSpecialCondition, Value: 90, Unit: "percent", Condition: "task_approval_rate"},
			},
		},

		// Goal based
		{
			ID: "first_goal", Name: "Goal Setter", Icon: "🎯",
			Description: "Complete your first goal",
			Category:    models.CategoryGoalBased,
			Difficulty:  models.DifficultyCommon, Points: 10, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementGoalCompletion, Value: 1, Unit: "count"},
			},
		},
		{
			ID: "ten_goals", Name: "Goal Getter", Icon: "🏆",
			Description: "Complete 10 goals",
			Category:    models.CategoryGoalBased,
			Difficulty:  models.DifficultyRare, Points: 150, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementGoalCompletion, Value: 10, Unit: "count"},
			},
		},
		{
			ID: "overachiever", Name: "Overachiever", Icon: "🚀",
			Description: "Exceed a goal target by 50%",
			Category:    models.CategoryGoalBased,
			Difficulty:  models.DifficultyRare, Points: 100, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementSpecialCondition, Value: 150, Unit: "percent", Condition: "exceed_goal_by_50_percent"},
			},
		},
		{
			ID: "precision", Name: "Precision", Icon: "📏",
			Description: "Land within an hour of a goal target",
			Category:    models.CategoryGoalBased,
			Difficulty:  models.DifficultyEpic, Points: 200, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementSpecialCondition, Value: 3600, Unit: "seconds", Condition: "exact_goal_achievement"},
			},
		},

		// Task completion
		{
			ID: "first_task", Name: "Task Novice", Icon: "📋",
			Description: "Complete your first task",
			Category:    models.CategoryTaskCompletion,
			Difficulty:  models.DifficultyCommon, Points: 10, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementTaskCompletion, Value: 1, Unit: "count"},
			},
		},
		{
			ID: "task_25", Name: "Taskmaster", Icon: "🗂️",
			Description: "Complete 25 tasks",
			Category:    models.CategoryTaskCompletion,
			Difficulty:  models.DifficultyUncommon, Points: 75, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementTaskCompletion, Value: 25, Unit: "count"},
			},
		},
		{
			ID: "task_100", Name: "Workhorse", Icon: "🐎",
			Description: "Complete 100 tasks",
			Category:    models.CategoryTaskCompletion,
			Difficulty:  models.DifficultyEpic, Points: 250, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementTaskCompletion, Value: 100, Unit: "count"},
			},
		},

		// Special
		{
			ID: "new_year", Name: "New Year, New Lock", Icon: "🎆",
			Description: "Start a session on January 1st",
			Category:    models.CategorySpecial,
			Difficulty:  models.DifficultyRare, Points: 100, IsHidden: true, IsActive: true,
			Requirements: []models.Requirement{
				{Type: models.RequirementSpecialCondition, Value: 1, Unit: "count", Condition: "new_year_session"},
			},
		},
		{
			// Granted manually; an empty requirement list is never
			// auto-satisfiable.
			ID: "founder", Name: "Founder", Icon: "🌟",
			Description: "Was here from the beginning",
			Category:    models.CategorySpecial,
			Difficulty:  models.DifficultyLegendary, Points: 0, IsHidden: true, IsActive: true,
			Requirements: []models.Requirement{},
		},
	}
}

// ValidateCatalog rejects a catalog containing duplicate ids or requirements
// referencing unregistered special conditions.
func ValidateCatalog(catalog []models.Achievement) error {
	seen := map[string]bool{}
	for _, a := range catalog {
		if a.ID == "" {
			return fmt.Errorf("achievement %q has no id", a.Name)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate achievement id %q", a.ID)
		}
		seen[a.ID] = true
		if err := ValidateRequirements(a); err != nil {
			return err
		}
	}
	return nil
}
