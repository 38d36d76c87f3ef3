package service

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService wraps cron-based jobs.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ScheduleInterval registers a periodic job every given duration.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), job)
}

// Pruner is implemented by caches that drop expired entries on demand.
type Pruner interface {
	Prune() int
}

// SchedulePrune runs p.Prune every interval.
func (s *SchedulerService) SchedulePrune(interval time.Duration, name string, p Pruner) (cron.EntryID, error) {
	return s.ScheduleInterval(interval, func() {
		if removed := p.Prune(); removed > 0 {
			log.Printf("[info] pruned %d expired %s entries", removed, name)
		}
	})
}
