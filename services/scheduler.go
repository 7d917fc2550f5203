package services

import (
	"log"
	"time"

	"clubquest/models"

	"github.com/go-co-op/gocron/v2"
)

// StartMissionSweeper runs a background job that deactivates missions whose
// active window has ended. Validation of an inactive mission is still
// possible (pending work may be approved late); the sweep only stops new
// assignments showing the mission as open.
func (s *MissionService) StartMissionSweeper() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()
			res := s.DB.Model(&models.Mission{}).
				Where("active = ? AND ends_at IS NOT NULL AND ends_at <= ?", true, now).
				Update("active", false)
			if res.Error != nil {
				log.Printf("[Sweeper] DB error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Expired %d mission(s) past their window", res.RowsAffected)
			}
		}),
	)
}
