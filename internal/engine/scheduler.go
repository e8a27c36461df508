package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs check cycles on a fixed interval in watch mode. Every
// cycle, scheduled or started via RunNow, goes through the same
// SkipIfStillRunning chain, so cycles never overlap.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger
	entry  cron.EntryID
	manual sync.WaitGroup
}

// NewScheduler creates a Scheduler running the engine every interval.
func NewScheduler(eng *Engine, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	s := &Scheduler{
		cron:   c,
		engine: eng,
		log:    log,
	}

	id, err := c.AddFunc("@every "+interval.String(), s.runCycle)
	if err != nil {
		return nil, err
	}
	s.entry = id

	return s, nil
}

// Start begins running scheduled cycles.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// RunNow starts one cycle immediately without waiting for the next tick.
// It executes the same wrapped job the cron entry uses, so the single-flight
// guard sees it: a tick during the cycle is skipped, and an immediate cycle
// during a running tick is skipped too.
func (s *Scheduler) RunNow() {
	job := s.cron.Entry(s.entry).WrappedJob
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		job.Run()
	}()
}

// Stop gracefully stops the scheduler. The returned context is done once
// every running cycle has finished, including ones started via RunNow.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	cronCtx := s.cron.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer cancel()
		<-cronCtx.Done()
		s.manual.Wait()
	}()
	return ctx
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runCycle() {
	ctx := context.Background()
	s.log.Info("scheduled check starting")
	if err := s.engine.RunOnce(ctx); err != nil {
		s.log.Error("scheduled check failed", "error", err)
	}
}
