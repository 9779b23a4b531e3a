package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// cycleTimeout bounds one full pipeline cycle; the individual steps
// carry much tighter timeouts of their own.
const cycleTimeout = 5 * time.Minute

// Job is one full pipeline cycle.
type Job func(ctx context.Context) error

// Scheduler periodically runs the pipeline cycle.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       Job
	interval  time.Duration
	log       *zap.SugaredLogger
}

// New creates a Scheduler that runs job every interval.
func New(interval time.Duration, job Job, log *zap.SugaredLogger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		job:       job,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		s.log.Infow("scheduler: running pipeline cycle")

		ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
		defer cancel()

		if err := s.job(ctx); err != nil {
			s.log.Errorw("scheduler: pipeline cycle failed", "error", err)
			return
		}
		s.log.Infow("scheduler: pipeline cycle completed")
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
