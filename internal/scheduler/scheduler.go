package scheduler

import (
	"time"

	"docqa-chatbot/internal/logger"

	"github.com/go-co-op/gocron"
)

// Scheduler runs background maintenance jobs
type Scheduler struct {
	scheduler *gocron.Scheduler
}

// New creates a scheduler on UTC with unique job tags
func New() *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()
	return &Scheduler{scheduler: s}
}

// Start starts the scheduler without blocking
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// ScheduleInterval runs job every duration under the given tag. Job errors
// are logged and do not unschedule the job.
func (s *Scheduler) ScheduleInterval(tag string, duration time.Duration, job func() error) error {
	_, err := s.scheduler.Every(duration).Tag(tag).Do(func() {
		if err := job(); err != nil {
			logger.Warn("Scheduled job failed", "job", tag, "error", err)
		}
	})
	return err
}

// RemoveJob removes a scheduled job by tag
func (s *Scheduler) RemoveJob(tag string) error {
	return s.scheduler.RemoveByTag(tag)
}

// Jobs returns the number of scheduled jobs
func (s *Scheduler) Jobs() int {
	return len(s.scheduler.Jobs())
}
