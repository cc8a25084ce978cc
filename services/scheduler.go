// services/scheduler.go
package services

import (
	"log"
	"time"

	"campus-event-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartLifecycleScheduler flips Published events to Ongoing once their start
// date arrives, so scanners only handle events that are actually running.
func (s *EventService) StartLifecycleScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: move started events to Ongoing
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var events []models.Event
			now := time.Now()
			err := s.DB.Where("status = ? AND start_date <= ?", models.StatusPublished, now).
				Find(&events).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, e := range events {
				e.Status = models.StatusOngoing
				if err := s.DB.Save(&e).Error; err != nil {
					log.Printf("[Scheduler] Failed to move event %s to ongoing: %v", e.ID, err)
				} else {
					log.Printf("✅ Event now ongoing: %s", e.Name)
				}
			}
		}),
	)
}
