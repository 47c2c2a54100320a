// services/scheduler.go - Nightly achievement reconciliation
package services

import (
	"log"
	"time"

	"lifetrack/database"
	"lifetrack/models"

	"github.com/go-co-op/gocron/v2"
)

// StartAchievementScheduler runs a nightly full check over users active in
// the last day. Incremental event processing is best-effort; this pass picks
// up anything a failed pass missed (and backfills after bulk imports).
func StartAchievementScheduler() gocron.Scheduler {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Scheduler] failed to create scheduler: %v", err)
		return nil
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			engine := GetAchievementService()
			if engine == nil {
				return
			}

			db := database.GetDB()
			since := time.Now().AddDate(0, 0, -1)

			var userIDs []uint
			if err := db.Model(&models.Session{}).
				Where("start_time >= ? OR end_time >= ?", since, since).
				Distinct("user_id").
				Pluck("user_id", &userIDs).Error; err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			awarded := 0
			for _, id := range userIDs {
				awarded += len(engine.PerformFullCheck(id))
			}
			if awarded > 0 {
				log.Printf("✅ Nightly achievement check: %d new awards across %d users", awarded, len(userIDs))
			}
		}),
	)
	if err != nil {
		log.Printf("[Scheduler] failed to schedule achievement check: %v", err)
	}

	return sched
}
