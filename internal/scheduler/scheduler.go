package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/yunseo-dev/weatherdish/internal/log"
	"github.com/yunseo-dev/weatherdish/internal/prefetch"
)

// runTimeout bounds one full prefetch pass; the KMA answers well inside this
// for nine stations and a four-day horizon.
const runTimeout = 5 * time.Minute

// Scheduler periodically runs the cache prefetcher so user requests mostly
// hit a warm cache.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	prefetcher *prefetch.Prefetcher
	interval   time.Duration
}

// New creates a new Scheduler running the prefetcher every interval.
func New(prefetcher *prefetch.Prefetcher, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:  s,
		prefetcher: prefetcher,
		interval:   interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 360
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Info("scheduler: running prefetch pass")

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		stats := s.prefetcher.Run(ctx)
		log.Infof("scheduler: prefetch pass complete: fetched=%d skipped=%d failed=%d",
			stats.Fetched, stats.Skipped, stats.Failed)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
