// services/achievement_service.go - Award Engine
//
// Orchestrates requirement evaluation per category, keeps progress records
// up to date and awards achievements at most once per (user, achievement)
// pair. Awarding is best-effort: storage failures are logged and swallowed so
// a failed pass never disrupts the triggering user action; the next
// qualifying event (or the nightly full check) retries naturally.
package services

import (
	"fmt"
	"log"
	"sync"

	"lifetrack/database"
	"lifetrack/models"
)

// Event types handed to the engine by the activity handlers.
const (
	EventSessionStart  = "session_start"
	EventSessionEnd    = "session_end"
	EventTaskCompleted = "task_completed"
	EventTaskApproved  = "task_approved"
	EventTaskRejected  = "task_rejected"
	EventGoalCompleted = "goal_completed"
)

type AchievementService struct {
	store   AchievementStore
	history ActivityHistory
	catalog []models.Achievement

	mu          sync.Mutex
	initialized bool

	// Serializes award passes per user; two concurrent events for the same
	// user must not race the earned check. The unique index on
	// user_achievements is the backstop either way.
	userLocks sync.Map
}

var achievementService *AchievementService

// InitAchievementService wires the singleton engine against the shared
// database and seeds the catalog. Fatal on a broken catalog.
func InitAchievementService() {
	db := database.GetDB()
	achievementService = NewAchievementService(NewAchievementStore(db), NewActivityHistory(db), DefaultCatalog())
	if err := achievementService.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize achievement engine: %v", err)
	}
}

// GetAchievementService returns the initialized engine.
func GetAchievementService() *AchievementService {
	return achievementService
}

// NewAchievementService builds an engine with explicit collaborators. The
// catalog is an injected read-only input, not package state.
func NewAchievementService(store AchievementStore, history ActivityHistory, catalog []models.Achievement) *AchievementService {
	return &AchievementService{
		store:   store,
		history: history,
		catalog: catalog,
	}
}

// Initialize validates the catalog and seeds it into storage if storage is
// empty. Seeding is deliberately coarse: any pre-existing achievement row
// skips the whole seed, no partial merge. Subsequent calls are no-ops.
func (s *AchievementService) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}

	if err := ValidateCatalog(s.catalog); err != nil {
		return fmt.Errorf("invalid achievement catalog: %w", err)
	}

	existing, err := s.store.GetAllAchievements()
	if err != nil {
		return fmt.Errorf("failed to load achievements: %w", err)
	}

	if len(existing) == 0 {
		for i := range s.catalog {
			a := s.catalog[i]
			if err := s.store.CreateAchievement(&a); err != nil {
				return fmt.Errorf("failed to seed achievement %q: %w", a.ID, err)
			}
		}
		log.Printf("✅ Seeded %d achievements", len(s.catalog))
	}

	s.initialized = true
	return nil
}

// ProcessSessionEvent evaluates session-driven achievements. Start events
// judge time-of-day and calendar conditions (which cannot wait for the
// session to finish); end events judge milestone, streak and consistency
// achievements against the full session history.
func (s *AchievementService) ProcessSessionEvent(userID uint, eventType string, session *models.Session) []models.Achievement {
	switch eventType {
	case EventSessionStart:
		return s.runPass(userID, EvalContext{Session: session},
			models.CategorySpecial, models.CategoryConsistency)
	case EventSessionEnd:
		return s.runPass(userID, EvalContext{},
			models.CategorySessionMilestones, models.CategoryStreaks, models.CategoryConsistency)
	default:
		return nil
	}
}

// ProcessTaskEvent evaluates task-driven achievements after any task state
// change, including rejections (they move the approval rate).
func (s *AchievementService) ProcessTaskEvent(userID uint, eventType string) []models.Achievement {
	switch eventType {
	case EventTaskCompleted, EventTaskApproved, EventTaskRejected:
		return s.runPass(userID, EvalContext{},
			models.CategoryTaskCompletion, models.CategoryConsistency)
	default:
		return nil
	}
}

// ProcessGoalEvent evaluates goal-driven achievements. Per-event conditions
// (exceed-by-50%, exact match) are judged against the passed goal only.
func (s *AchievementService) ProcessGoalEvent(userID uint, eventType string, goal *models.Goal) []models.Achievement {
	if eventType != EventGoalCompleted {
		return nil
	}
	return s.runPass(userID, EvalContext{Goal: goal}, models.CategoryGoalBased)
}

// PerformFullCheck re-evaluates every category against full current history.
// Used for backfill and recovery; already-earned achievements produce no new
// awards and no new notifications.
func (s *AchievementService) PerformFullCheck(userID uint) []models.Achievement {
	return s.runPass(userID, EvalContext{},
		models.CategorySessionMilestones,
		models.CategoryConsistency,
		models.CategoryStreaks,
		models.CategoryGoalBased,
		models.CategoryTaskCompletion,
		models.CategorySpecial,
	)
}

// runPass loads history, then evaluates the given categories sequentially.
// Any storage error aborts the pass with a log line; the caller sees only
// "no new awards".
func (s *AchievementService) runPass(userID uint, ctx EvalContext, categories ...models.AchievementCategory) []models.Achievement {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var err error
	if ctx.Sessions, err = s.history.GetUserSessions(userID); err != nil {
		log.Printf("achievements: failed to load sessions for user %d: %v", userID, err)
		return nil
	}
	if ctx.Tasks, err = s.history.GetTasks(userID); err != nil {
		log.Printf("achievements: failed to load tasks for user %d: %v", userID, err)
		return nil
	}
	if ctx.Goals, err = s.history.GetGoals(userID); err != nil {
		log.Printf("achievements: failed to load goals for user %d: %v", userID, err)
		return nil
	}

	earned, err := s.earnedSet(userID)
	if err != nil {
		log.Printf("achievements: failed to load awards for user %d: %v", userID, err)
		return nil
	}

	var newAwards []models.Achievement
	for _, category := range categories {
		achievements, err := s.store.GetAchievementsByCategory(category)
		if err != nil {
			log.Printf("achievements: failed to load category %s: %v", category, err)
			return newAwards
		}

		for _, achievement := range achievements {
			if earned[achievement.ID] {
				continue
			}
			if awarded := s.evaluate(userID, achievement, ctx); awarded {
				earned[achievement.ID] = true
				newAwards = append(newAwards, achievement)
			}
		}
	}
	return newAwards
}

// evaluate runs one achievement's requirements. All requirements must hold;
// an empty requirement list never awards. While unearned, the progress row
// tracks the least-complete cumulative requirement, so an achievement with
// several requirements never overstates how close it is.
func (s *AchievementService) evaluate(userID uint, achievement models.Achievement, ctx EvalContext) bool {
	if len(achievement.Requirements) == 0 {
		return false
	}

	satisfied := true
	tracked := false
	var trackedPct, trackedCurrent, trackedTarget float64
	for _, req := range achievement.Requirements {
		result := EvaluateRequirement(req, ctx)
		if !result.Satisfied {
			satisfied = false
		}
		if !IsCumulative(req) || req.Value <= 0 {
			continue
		}
		pct := CalculateProgressPercentage(result.CurrentValue, req.Value)
		if !tracked || pct < trackedPct {
			tracked = true
			trackedPct = pct
			trackedCurrent = result.CurrentValue
			trackedTarget = req.Value
		}
	}

	if !satisfied {
		if tracked {
			if err := s.store.UpdateAchievementProgress(userID, achievement.ID, trackedCurrent, trackedTarget); err != nil {
				log.Printf("achievements: failed to update progress for %q user %d: %v", achievement.ID, userID, err)
			}
		}
		return false
	}

	return s.award(userID, achievement, trackedTarget)
}

// award hands the write to the store, which commits the award row, the
// points increment and the earned notification as one transaction. On
// failure nothing persists and the next qualifying event retries. The
// progress finalize afterwards is cosmetic; its failure does not undo the
// award.
func (s *AchievementService) award(userID uint, achievement models.Achievement, target float64) bool {
	inserted, err := s.store.AwardAchievement(userID, achievement.ID, achievement.Points)
	if err != nil {
		log.Printf("achievements: failed to award %q to user %d: %v", achievement.ID, userID, err)
		return false
	}
	if !inserted {
		return false
	}

	if target > 0 {
		if err := s.store.UpdateAchievementProgress(userID, achievement.ID, target, target); err != nil {
			log.Printf("achievements: failed to finalize progress for %q user %d: %v", achievement.ID, userID, err)
		}
	}

	log.Printf("🏆 Achievement earned: %s → user %d (+%d pts)", achievement.Name, userID, achievement.Points)
	return true
}

func (s *AchievementService) earnedSet(userID uint) (map[string]bool, error) {
	awards, err := s.store.GetUserAchievements(userID)
	if err != nil {
		return nil, err
	}
	earned := make(map[string]bool, len(awards))
	for _, ua := range awards {
		earned[ua.AchievementID] = true
	}
	return earned, nil
}

func (s *AchievementService) userLock(userID uint) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
