// services/achievement_evaluators.go - Requirement evaluation
//
// Evaluators are pure: given a requirement and the relevant activity slice
// they produce a current value and whether the requirement is met. Special
// conditions live in a registry keyed by condition name; the catalog is
// validated against the registry at startup so a typo in a catalog entry
// fails loud instead of silently never awarding.
package services

import (
	"fmt"
	"sort"
	"time"

	"lifetrack/models"
)

// Tolerance for exact_goal_achievement, one hour expressed in seconds.
const exactGoalTolerance = 3600

// EvalContext carries the activity history relevant to one evaluation pass.
// Session is the triggering session for start-of-session conditions; Goal is
// the just-completed goal for per-event goal conditions.
type EvalContext struct {
	Sessions []models.Session
	Tasks    []models.Task
	Goals    []models.Goal
	Session  *models.Session
	Goal     *models.Goal
}

// EvalResult reports how far along a requirement is and whether it is met.
type EvalResult struct {
	CurrentValue float64
	Satisfied    bool
}

// ConditionFunc evaluates one special condition.
type ConditionFunc func(req models.Requirement, ctx EvalContext) EvalResult

var specialConditions = map[string]ConditionFunc{
	"sessions_before_8am":       evalSessionsBefore8AM,
	"weekend_sessions":          evalWeekendSessions,
	"exceed_goal_by_50_percent": evalExceedGoalBy50Percent,
	"exact_goal_achievement":    evalExactGoalAchievement,
	"new_year_session":          evalNewYearSession,
	"task_approval_rate":        evalTaskApprovalRate,
}

// ValidateRequirements checks that every special_condition requirement
// references a registered condition.
func ValidateRequirements(a models.Achievement) error {
	for _, req := range a.Requirements {
		if req.Type != models.RequirementSpecialCondition {
			continue
		}
		if _, ok := specialConditions[req.Condition]; !ok {
			return fmt.Errorf("achievement %q references unknown condition %q", a.ID, req.Condition)
		}
	}
	return nil
}

// EvaluateRequirement dispatches on the requirement type. A requirement of an
// unknown type or condition is treated as never satisfied.
func EvaluateRequirement(req models.Requirement, ctx EvalContext) EvalResult {
	switch req.Type {
	case models.RequirementSessionCount:
		count := float64(len(completedSessions(ctx.Sessions)))
		return EvalResult{CurrentValue: count, Satisfied: count >= req.Value}

	case models.RequirementSessionDuration:
		longest := longestSessionSeconds(ctx.Sessions)
		return EvalResult{CurrentValue: longest, Satisfied: longest >= req.Value}

	case models.RequirementStreakDays:
		streak := float64(LongestStreakDays(ctx.Sessions))
		return EvalResult{CurrentValue: streak, Satisfied: streak >= req.Value}

	case models.RequirementGoalCompletion:
		count := 0.0
		for _, g := range ctx.Goals {
			if g.IsCompleted {
				count++
			}
		}
		return EvalResult{CurrentValue: count, Satisfied: count >= req.Value}

	case models.RequirementTaskCompletion:
		// Approval is a forward transition from completed; counting both
		// keeps the counter monotonic across reviews.
		count := 0.0
		for _, t := range ctx.Tasks {
			if t.Status == models.TaskStatusCompleted || t.Status == models.TaskStatusApproved {
				count++
			}
		}
		return EvalResult{CurrentValue: count, Satisfied: count >= req.Value}

	case models.RequirementSpecialCondition:
		if fn, ok := specialConditions[req.Condition]; ok {
			return fn(req, ctx)
		}
		return EvalResult{}

	default:
		return EvalResult{}
	}
}

// IsCumulative reports whether a requirement accumulates across events and
// therefore gets a progress record while unearned.
func IsCumulative(req models.Requirement) bool {
	switch req.Type {
	case models.RequirementSessionCount, models.RequirementSessionDuration,
		models.RequirementStreakDays, models.RequirementGoalCompletion,
		models.RequirementTaskCompletion:
		return true
	case models.RequirementSpecialCondition:
		switch req.Condition {
		case "sessions_before_8am", "weekend_sessions", "task_approval_rate":
			return true
		}
	}
	return false
}

// CalculateProgressPercentage returns min(100, current/target*100), 0 when
// the target is not positive.
func CalculateProgressPercentage(current, target float64) float64 {
	if target <= 0 || current <= 0 {
		return 0
	}
	pct := current / target * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// completedSessions filters out sessions still missing an end time; an
// active session never counts toward completion-based requirements.
func completedSessions(sessions []models.Session) []models.Session {
	out := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.EndTime != nil {
			out = append(out, s)
		}
	}
	return out
}

func longestSessionSeconds(sessions []models.Session) float64 {
	var longest float64
	for _, s := range completedSessions(sessions) {
		if d := s.Duration(); d > longest {
			longest = d
		}
	}
	return longest
}

// LongestStreakDays computes the longest run of consecutive calendar days
// with at least one completed session. Days are keyed in each timestamp's own
// location, the same scheme CurrentStreakDays and the time-of-day conditions
// use, and walked with AddDate so DST transitions stay one day apart.
func LongestStreakDays(sessions []models.Session) int {
	days := map[string]time.Time{}
	for _, s := range completedSessions(sessions) {
		t := s.StartTime
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		days[midnight.Format("2006-01-02")] = midnight
	}
	if len(days) == 0 {
		return 0
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	longest, run := 1, 1
	for i := 1; i < len(keys); i++ {
		if days[keys[i-1]].AddDate(0, 0, 1).Format("2006-01-02") == keys[i] {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// CurrentStreakDays computes the streak ending today or yesterday, used for
// the stats endpoint.
func CurrentStreakDays(sessions []models.Session, now time.Time) int {
	days := map[string]bool{}
	for _, s := range completedSessions(sessions) {
		days[s.StartTime.Format("2006-01-02")] = true
	}

	day := now
	if !days[day.Format("2006-01-02")] {
		// A streak survives until the day is over.
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func evalSessionsBefore8AM(req models.Requirement, ctx EvalContext) EvalResult {
	count := 0.0
	for _, s := range ctx.Sessions {
		if s.StartTime.Hour() < 8 {
			count++
		}
	}
	return EvalResult{CurrentValue: count, Satisfied: count >= req.Value}
}

// evalWeekendSessions counts distinct weekends containing at least one
// session, keyed by the Saturday of each weekend.
func evalWeekendSessions(req models.Requirement, ctx EvalContext) EvalResult {
	weekends := map[string]bool{}
	for _, s := range ctx.Sessions {
		switch s.StartTime.Weekday() {
		case time.Saturday:
			weekends[s.StartTime.Format("2006-01-02")] = true
		case time.Sunday:
			weekends[s.StartTime.AddDate(0, 0, -1).Format("2006-01-02")] = true
		}
	}
	count := float64(len(weekends))
	return EvalResult{CurrentValue: count, Satisfied: count >= req.Value}
}

// evalExceedGoalBy50Percent judges the just-completed goal when one is in
// context; a full check scans the whole goal history instead, so backfill
// after a bulk import still awards.
func evalExceedGoalBy50Percent(req models.Requirement, ctx EvalContext) EvalResult {
	judge := func(g *models.Goal) EvalResult {
		if g == nil || g.TargetValue <= 0 {
			return EvalResult{}
		}
		return EvalResult{
			CurrentValue: g.CurrentValue,
			Satisfied:    g.CurrentValue >= 1.5*g.TargetValue,
		}
	}

	if ctx.Goal != nil {
		return judge(ctx.Goal)
	}
	for i := range ctx.Goals {
		g := ctx.Goals[i]
		if !g.IsCompleted {
			continue
		}
		if result := judge(&g); result.Satisfied {
			return result
		}
	}
	return EvalResult{}
}

// evalExactGoalAchievement awards landing within one hour of the target. Same
// event-or-history split as the exceed condition.
func evalExactGoalAchievement(req models.Requirement, ctx EvalContext) EvalResult {
	judge := func(g *models.Goal) EvalResult {
		if g == nil || !g.IsCompleted {
			return EvalResult{}
		}
		diff := g.CurrentValue - g.TargetValue
		if diff < 0 {
			diff = -diff
		}
		return EvalResult{CurrentValue: g.CurrentValue, Satisfied: diff <= exactGoalTolerance}
	}

	if ctx.Goal != nil {
		return judge(ctx.Goal)
	}
	for i := range ctx.Goals {
		g := ctx.Goals[i]
		if result := judge(&g); result.Satisfied {
			return result
		}
	}
	return EvalResult{}
}

func evalNewYearSession(req models.Requirement, ctx EvalContext) EvalResult {
	s := ctx.Session
	if s == nil {
		// Full check: any historical January 1st session qualifies.
		for _, hist := range ctx.Sessions {
			if hist.StartTime.Month() == time.January && hist.StartTime.Day() == 1 {
				return EvalResult{CurrentValue: 1, Satisfied: true}
			}
		}
		return EvalResult{}
	}
	if s.StartTime.Month() == time.January && s.StartTime.Day() == 1 {
		return EvalResult{CurrentValue: 1, Satisfied: true}
	}
	return EvalResult{}
}

// evalTaskApprovalRate computes approved/(approved+rejected) as a percentage
// against req.Value.
func evalTaskApprovalRate(req models.Requirement, ctx EvalContext) EvalResult {
	var approved, rejected float64
	for _, t := range ctx.Tasks {
		switch t.Status {
		case models.TaskStatusApproved:
			approved++
		case models.TaskStatusRejected:
			rejected++
		}
	}
	if approved+rejected == 0 {
		return EvalResult{}
	}
	rate := approved / (approved + rejected) * 100
	return EvalResult{CurrentValue: rate, Satisfied: rate >= req.Value}
}
