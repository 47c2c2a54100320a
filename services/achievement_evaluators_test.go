package services

import (
	"testing"
	"time"

	"lifetrack/models"

	"github.com/stretchr/testify/assert"
)

func completedAt(start time.Time, duration time.Duration) models.Session {
	end := start.Add(duration)
	return models.Session{StartTime: start, EndTime: &end}
}

func activeAt(start time.Time) models.Session {
	return models.Session{StartTime: start}
}

func day(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestLongestStreakDays(t *testing.T) {
	tests := []struct {
		name     string
		sessions []models.Session
		want     int
	}{
		{"no sessions", nil, 0},
		{
			"single day",
			[]models.Session{completedAt(day(2024, 1, 1, 10), time.Hour)},
			1,
		},
		{
			"gap breaks the run",
			[]models.Session{
				completedAt(day(2024, 1, 1, 10), time.Hour),
				completedAt(day(2024, 1, 2, 9), time.Hour),
				completedAt(day(2024, 1, 3, 22), time.Hour),
				completedAt(day(2024, 1, 5, 10), time.Hour),
			},
			3,
		},
		{
			"two sessions same day count once",
			[]models.Session{
				completedAt(day(2024, 1, 1, 8), time.Hour),
				completedAt(day(2024, 1, 1, 20), time.Hour),
				completedAt(day(2024, 1, 2, 8), time.Hour),
			},
			2,
		},
		{
			"active sessions do not extend the streak",
			[]models.Session{
				completedAt(day(2024, 1, 1, 10), time.Hour),
				activeAt(day(2024, 1, 2, 10)),
			},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LongestStreakDays(tt.sessions))
		})
	}
}

func TestLongestStreakDaysUsesLocalCalendarDays(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	// The middle session is at 01:00 local, which is still the previous day
	// in UTC; bucketing by the session's own calendar day must keep the run
	// intact.
	sessions := []models.Session{
		completedAt(time.Date(2024, 1, 1, 12, 0, 0, 0, loc), time.Hour),
		completedAt(time.Date(2024, 1, 2, 1, 0, 0, 0, loc), time.Hour),
		completedAt(time.Date(2024, 1, 3, 12, 0, 0, 0, loc), time.Hour),
	}
	assert.Equal(t, 3, LongestStreakDays(sessions))
}

func TestCurrentStreakDays(t *testing.T) {
	now := day(2024, 3, 10, 15)

	sessions := []models.Session{
		completedAt(day(2024, 3, 8, 10), time.Hour),
		completedAt(day(2024, 3, 9, 10), time.Hour),
	}
	// No session yet today: the streak ending yesterday still counts.
	assert.Equal(t, 2, CurrentStreakDays(sessions, now))

	sessions = append(sessions, completedAt(day(2024, 3, 10, 9), time.Hour))
	assert.Equal(t, 3, CurrentStreakDays(sessions, now))

	stale := []models.Session{completedAt(day(2024, 3, 7, 10), time.Hour)}
	assert.Equal(t, 0, CurrentStreakDays(stale, now))
}

func TestEvaluateSessionCount(t *testing.T) {
	ctx := EvalContext{Sessions: []models.Session{
		completedAt(day(2024, 1, 1, 10), time.Hour),
		completedAt(day(2024, 1, 2, 10), time.Hour),
		activeAt(day(2024, 1, 3, 10)),
	}}

	result := EvaluateRequirement(models.Requirement{Type: models.RequirementSessionCount, Value: 2}, ctx)
	assert.Equal(t, 2.0, result.CurrentValue)
	assert.True(t, result.Satisfied)

	result = EvaluateRequirement(models.Requirement{Type: models.RequirementSessionCount, Value: 3}, ctx)
	assert.False(t, result.Satisfied)
}

func TestEvaluateSessionDuration(t *testing.T) {
	ctx := EvalContext{Sessions: []models.Session{
		completedAt(day(2024, 1, 1, 10), 2*time.Hour),
		completedAt(day(2024, 1, 2, 10), 26*time.Hour),
		activeAt(day(2024, 1, 5, 10)),
	}}

	result := EvaluateRequirement(models.Requirement{Type: models.RequirementSessionDuration, Value: 86400}, ctx)
	assert.Equal(t, float64(26*3600), result.CurrentValue)
	assert.True(t, result.Satisfied)

	result = EvaluateRequirement(models.Requirement{Type: models.RequirementSessionDuration, Value: 604800}, ctx)
	assert.False(t, result.Satisfied)
}

func TestEvaluateTaskCompletion(t *testing.T) {
	ctx := EvalContext{Tasks: []models.Task{
		{Status: models.TaskStatusCompleted},
		{Status: models.TaskStatusApproved},
		{Status: models.TaskStatusRejected},
		{Status: models.TaskStatusPending},
	}}

	result := EvaluateRequirement(models.Requirement{Type: models.RequirementTaskCompletion, Value: 2}, ctx)
	assert.Equal(t, 2.0, result.CurrentValue)
	assert.True(t, result.Satisfied)
}

func TestEvaluateGoalCompletion(t *testing.T) {
	ctx := EvalContext{Goals: []models.Goal{
		{IsCompleted: true},
		{IsCompleted: false},
	}}

	result := EvaluateRequirement(models.Requirement{Type: models.RequirementGoalCompletion, Value: 1}, ctx)
	assert.Equal(t, 1.0, result.CurrentValue)
	assert.True(t, result.Satisfied)
}

func TestEvaluateUnknownTypeNeverSatisfied(t *testing.T) {
	result := EvaluateRequirement(models.Requirement{Type: "mystery", Value: 0}, EvalContext{})
	assert.False(t, result.Satisfied)
	assert.Zero(t, result.CurrentValue)

	result = EvaluateRequirement(models.Requirement{
		Type: models.RequirementSpecialCondition, Condition: "mystery", Value: 0,
	}, EvalContext{})
	assert.False(t, result.Satisfied)
}

func TestSessionsBefore8AM(t *testing.T) {
	ctx := EvalContext{Sessions: []models.Session{
		completedAt(day(2024, 1, 1, 6), time.Hour),
		completedAt(day(2024, 1, 2, 7), time.Hour),
		completedAt(day(2024, 1, 3, 8), time.Hour),
	}}

	result := EvaluateRequirement(models.Requirement{
		Type: models.RequirementSpecialCondition, Condition: "sessions_before_8am", Value: 2,
	}, ctx)
	assert.Equal(t, 2.0, result.CurrentValue)
	assert.True(t, result.Satisfied)
}

func TestWeekendSessionsCountDistinctWeekends(t *testing.T) {
	// Jan 6/7 2024 are a Saturday/Sunday pair; Jan 13 is the next Saturday.
	ctx := EvalContext{Sessions: []models.Session{
		completedAt(day(2024, 1, 6, 10), time.Hour),
		completedAt(day(2024, 1, 7, 10), time.Hour),
		completedAt(day(2024, 1, 13, 10), time.Hour),
		completedAt(day(2024, 1, 10, 10), time.Hour), // Wednesday
	}}

	result := EvaluateRequirement(models.Requirement{
		Type: models.RequirementSpecialCondition, Condition: "weekend_sessions", Value: 2,
	}, ctx)
	assert.Equal(t, 2.0, result.CurrentValue)
	assert.True(t, result.Satisfied)
}

func TestExceedGoalBy50Percent(t *testing.T) {
	req := models.Requirement{Type: models.RequirementSpecialCondition, Condition: "exceed_goal_by_50_percent"}

	result := EvaluateRequirement(req, EvalContext{Goal: &models.Goal{CurrentValue: 150, TargetValue: 100}})
	assert.True(t, result.Satisfied)

	result = EvaluateRequirement(req, EvalContext{Goal: &models.Goal{CurrentValue: 149, TargetValue: 100}})
	assert.False(t, result.Satisfied)

	// No triggering goal and no history means nothing to judge.
	result = EvaluateRequirement(req, EvalContext{})
	assert.False(t, result.Satisfied)

	// Without a triggering goal the full history is scanned, so a qualifying
	// goal completed long ago still satisfies.
	result = EvaluateRequirement(req, EvalContext{Goals: []models.Goal{
		{CurrentValue: 120, TargetValue: 100, IsCompleted: true},
		{CurrentValue: 200, TargetValue: 100, IsCompleted: true},
	}})
	assert.True(t, result.Satisfied)

	// A qualifying value on a goal never completed does not count.
	result = EvaluateRequirement(req, EvalContext{Goals: []models.Goal{
		{CurrentValue: 200, TargetValue: 100},
	}})
	assert.False(t, result.Satisfied)
}

func TestExactGoalAchievementTolerance(t *testing.T) {
	req := models.Requirement{Type: models.RequirementSpecialCondition, Condition: "exact_goal_achievement"}

	within := &models.Goal{CurrentValue: 90000 + 3600, TargetValue: 90000, IsCompleted: true}
	result := EvaluateRequirement(req, EvalContext{Goal: within})
	assert.True(t, result.Satisfied)

	beyond := &models.Goal{CurrentValue: 90000 + 3601, TargetValue: 90000, IsCompleted: true}
	result = EvaluateRequirement(req, EvalContext{Goal: beyond})
	assert.False(t, result.Satisfied)

	incomplete := &models.Goal{CurrentValue: 90000, TargetValue: 90000}
	result = EvaluateRequirement(req, EvalContext{Goal: incomplete})
	assert.False(t, result.Satisfied)

	// History scan when no goal is in context.
	result = EvaluateRequirement(req, EvalContext{Goals: []models.Goal{
		{CurrentValue: 90000, TargetValue: 150000, IsCompleted: true},
		{CurrentValue: 90100, TargetValue: 90000, IsCompleted: true},
	}})
	assert.True(t, result.Satisfied)
}

func TestNewYearSession(t *testing.T) {
	req := models.Requirement{Type: models.RequirementSpecialCondition, Condition: "new_year_session", Value: 1}

	trigger := activeAt(day(2024, 1, 1, 0))
	result := EvaluateRequirement(req, EvalContext{Session: &trigger})
	assert.True(t, result.Satisfied)

	ordinary := activeAt(day(2024, 3, 1, 0))
	result = EvaluateRequirement(req, EvalContext{Session: &ordinary})
	assert.False(t, result.Satisfied)

	// Full check: no triggering session, judged against history.
	result = EvaluateRequirement(req, EvalContext{Sessions: []models.Session{
		completedAt(day(2023, 1, 1, 5), time.Hour),
	}})
	assert.True(t, result.Satisfied)
}

func TestTaskApprovalRate(t *testing.T) {
	req := models.Requirement{Type: models.RequirementSpecialCondition, Condition: "task_approval_rate", Value: 90}

	tasks := []models.Task{}
	for i := 0; i < 9; i++ {
		tasks = append(tasks, models.Task{Status: models.TaskStatusApproved})
	}
	tasks = append(tasks, models.Task{Status: models.TaskStatusRejected})

	result := EvaluateRequirement(req, EvalContext{Tasks: tasks})
	assert.Equal(t, 90.0, result.CurrentValue)
	assert.True(t, result.Satisfied)

	// No reviewed tasks yet: rate is undefined, never satisfied.
	result = EvaluateRequirement(req, EvalContext{Tasks: []models.Task{{Status: models.TaskStatusPending}}})
	assert.False(t, result.Satisfied)
	assert.Zero(t, result.CurrentValue)
}

func TestCalculateProgressPercentage(t *testing.T) {
	assert.Equal(t, 0.0, CalculateProgressPercentage(5, 0))
	assert.Equal(t, 0.0, CalculateProgressPercentage(0, 10))
	assert.Equal(t, 50.0, CalculateProgressPercentage(5, 10))
	assert.Equal(t, 100.0, CalculateProgressPercentage(15, 10))
}

func TestValidateCatalog(t *testing.T) {
	assert.NoError(t, ValidateCatalog(DefaultCatalog()))

	bad := []models.Achievement{{
		ID: "typo", Name: "Typo",
		Requirements: []models.Requirement{
			{Type: models.RequirementSpecialCondition, Condition: "sessions_befor_8am", Value: 1},
		},
	}}
	assert.Error(t, ValidateCatalog(bad))

	dup := []models.Achievement{
		{ID: "same", Name: "A"},
		{ID: "same", Name: "B"},
	}
	assert.Error(t, ValidateCatalog(dup))

	assert.Error(t, ValidateCatalog([]models.Achievement{{Name: "anonymous"}}))
}

func TestIsCumulative(t *testing.T) {
	assert.True(t, IsCumulative(models.Requirement{Type: models.RequirementSessionCount}))
	assert.True(t, IsCumulative(models.Requirement{Type: models.RequirementSpecialCondition, Condition: "weekend_sessions"}))
	assert.False(t, IsCumulative(models.Requirement{Type: models.RequirementSpecialCondition, Condition: "new_year_session"}))
	assert.False(t, IsCumulative(models.Requirement{Type: "mystery"}))
}
