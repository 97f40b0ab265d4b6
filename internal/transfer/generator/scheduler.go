package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs the generator once a day at a fixed local time.
type Scheduler struct {
	scheduler gocron.Scheduler
	generator *Generator
	logger    *slog.Logger
}

// NewScheduler registers the daily job at hour:minute in loc.
func NewScheduler(gen *Generator, hour, minute uint, loc *time.Location, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	sched := &Scheduler{scheduler: s, generator: gen, logger: logger}

	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(sched.run),
		gocron.WithName("daily-status-generation"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create daily generation job: %w", err)
	}
	return sched, nil
}

func (s *Scheduler) run() {
	s.generator.RunScheduled(context.Background())
}

// Start begins the scheduler. With runNow the generator also runs once
// immediately, before Start returns.
func (s *Scheduler) Start(ctx context.Context, runNow bool) {
	s.logger.InfoContext(ctx, "starting generation scheduler")
	if runNow {
		s.generator.RunScheduled(ctx)
	}
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler, waiting for a running job.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "stopping generation scheduler")
	return s.scheduler.Shutdown()
}

// NextRun reports when the daily job fires next.
func (s *Scheduler) NextRun() (time.Time, error) {
	jobs := s.scheduler.Jobs()
	if len(jobs) == 0 {
		return time.Time{}, fmt.Errorf("no generation job registered")
	}
	return jobs[0].NextRun()
}
