// Package jobs runs periodic maintenance in the background.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// Func is a unit of scheduled work.
type Func func(ctx context.Context) error

type Scheduler struct {
	gocron gocron.Scheduler
	jobs   map[string]gocron.Job
	ctx    context.Context
	cancel context.CancelFunc
}

func New() (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLogger(newLogger()))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		gocron: s,
		jobs:   make(map[string]gocron.Job),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Every registers fn to run once per interval. A run that is still in
// progress when the next one is due causes that next one to be skipped.
func (s *Scheduler) Every(name string, interval time.Duration, fn Func) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	job, err := s.gocron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.wrap(name, fn)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", name, err)
	}
	s.jobs[name] = job
	log.Debug("job registered", "name", name, "interval", interval)
	return nil
}

func (s *Scheduler) RunNow(name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("job %s not found", name)
	}
	return job.RunNow()
}

func (s *Scheduler) Start() {
	s.gocron.Start()
	log.Info("job scheduler started", "jobs", len(s.jobs))
}

func (s *Scheduler) Stop() error {
	s.cancel()
	return s.gocron.Shutdown()
}

func (s *Scheduler) wrap(name string, fn Func) func() {
	return func() {
		start := time.Now()
		if err := fn(s.ctx); err != nil {
			log.Error("job failed", "name", name, "error", err)
			return
		}
		log.Debug("job finished", "name", name, "duration", time.Since(start))
	}
}

type expiredSessionDeleter interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// PurgeSessions removes session rows whose expiry has passed. Expired rows are
// already rejected on lookup; this only keeps the table from growing.
func PurgeSessions(database expiredSessionDeleter) Func {
	return func(ctx context.Context) error {
		n, err := database.DeleteExpiredSessions(ctx, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("purge sessions: %w", err)
		}
		if n > 0 {
			log.Info("purged expired sessions", "count", n)
		}
		return nil
	}
}
