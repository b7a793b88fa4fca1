// services/scheduler.go
package services

import (
	"log"
	"time"

	"parier-bet-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartDeadlineScheduler closes open bets whose deadline has passed.
// Runs every minute; no-op when the service is in fixture mode (nil DB).
func (s *BetService) StartDeadlineScheduler() {
	if s.DB == nil {
		log.Println("⚠️ [Scheduler] no DB configured, deadline scheduler disabled")
		return
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var bets []models.Bet
			now := time.Now()
			err := s.DB.Where("status = ? AND deadline <= ?", models.BetStatusOpen, now).
				Find(&bets).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, bet := range bets {
				bet.Status = models.BetStatusClosed
				if err := s.DB.Save(&bet).Error; err != nil {
					log.Printf("[Scheduler] Failed to close bet %s: %v", bet.ID, err)
				} else {
					log.Printf("✅ Auto-closed bet past deadline: %s", bet.Title)
				}
			}
		}),
	)
}
