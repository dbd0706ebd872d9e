// Package scheduler runs hydration periodically on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kanjisync/kanjisync/internal/hydration"
	"github.com/kanjisync/kanjisync/internal/settingsstore"
)

// Runner is the hydration pipeline as seen by the scheduler.
type Runner interface {
	Run(ctx context.Context, trigger hydration.Trigger) (hydration.Result, error)
	SetEnabled(enabled bool)
}

// Settings supplies the effective hydration settings and stores run status.
type Settings interface {
	GetHydrationConfig() settingsstore.HydrationConfig
	SetHydrationStatus(status, message string, objects int) error
}

// HydrationScheduler manages periodic hydration runs
type HydrationScheduler struct {
	runner     Runner
	settings   Settings
	runTimeout time.Duration
	logger     *slog.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	// runCtx outlives Reschedule; only Stop or the Start context cancels it.
	runCtx context.Context
	cancel context.CancelFunc
	// retired crons whose jobs may still be running
	draining []context.Context
}

// NewHydrationScheduler creates a scheduler. runTimeout bounds each scheduled
// run; zero means no limit.
func NewHydrationScheduler(runner Runner, settings Settings, runTimeout time.Duration, logger *slog.Logger) *HydrationScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HydrationScheduler{
		runner:     runner,
		settings:   settings,
		runTimeout: runTimeout,
		logger:     logger.With("component", "hydration_scheduler"),
		cron:       newCron(),
	}
}

func newCron() *cron.Cron {
	return cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
}

// Start applies the current settings to the pipeline and, when hydration is
// ready, schedules the periodic job. The first ctx bounds the scheduler's
// lifetime; later calls from Reschedule keep it.
func (s *HydrationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.runCtx == nil {
		s.runCtx, s.cancel = context.WithCancel(ctx)
		go s.stopWhenDone(s.runCtx)
	}
	runCtx := s.runCtx

	cfg := s.settings.GetHydrationConfig()
	s.runner.SetEnabled(cfg.Ready())

	if !cfg.Enabled {
		s.logger.Info("hydration scheduler disabled")
		return nil
	}
	if cfg.Token == "" {
		s.logger.Info("hydration scheduler: api token not configured, skipping")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", cfg.Schedule, err)
	}

	s.cron = newCron()
	entryID, err := s.cron.AddFunc(cfg.Schedule, func() {
		s.runScheduled(runCtx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule hydration job: %w", err)
	}
	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(cfg.Schedule, time.Now())
	s.logger.Info("hydration scheduler started",
		"schedule", cfg.Schedule,
		"description", settingsstore.GetCronDescription(cfg.Schedule),
		"next_run", nextRun,
	)
	return nil
}

func (s *HydrationScheduler) stopWhenDone(runCtx context.Context) {
	<-runCtx.Done()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runCtx == runCtx {
		s.stopLocked()
	}
}

// Stop cancels any scheduled run in flight and waits for it to return.
func (s *HydrationScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *HydrationScheduler) stopLocked() {
	if s.runCtx == nil {
		return
	}
	wasRunning := s.isRunning

	s.cancel()
	s.runCtx = nil
	s.retireCronLocked()
	for _, done := range s.draining {
		<-done.Done()
	}
	s.draining = nil

	if wasRunning {
		s.logger.Info("hydration scheduler stopped")
	}
}

// retireCronLocked stops the cron from firing again without touching a run
// it already started.
func (s *HydrationScheduler) retireCronLocked() {
	if !s.isRunning {
		return
	}
	active := s.draining[:0]
	for _, done := range s.draining {
		if done.Err() == nil {
			active = append(active, done)
		}
	}
	s.draining = append(active, s.cron.Stop())
	s.isRunning = false
}

// Reschedule re-reads settings; call after they change. A scheduled run in
// flight keeps going. If hydration is now disabled it stops at its next page
// boundary.
func (s *HydrationScheduler) Reschedule(ctx context.Context) error {
	s.mu.Lock()
	s.retireCronLocked()
	s.mu.Unlock()
	return s.Start(ctx)
}

// RunNow performs a run synchronously and records its outcome.
func (s *HydrationScheduler) RunNow(ctx context.Context, trigger hydration.Trigger) (hydration.Result, error) {
	cfg := s.settings.GetHydrationConfig()
	s.runner.SetEnabled(cfg.Ready())

	res, err := s.runner.Run(ctx, trigger)
	s.recordStatus(res, err)
	return res, err
}

func (s *HydrationScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next scheduled run will occur
func (s *HydrationScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *HydrationScheduler) runScheduled(ctx context.Context) {
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}
	_, _ = s.RunNow(ctx, hydration.TriggerSchedule)
}

func (s *HydrationScheduler) recordStatus(res hydration.Result, err error) {
	var status, message string
	switch {
	case err != nil:
		status = settingsstore.StatusFailed
		message = err.Error()
		if hydration.IsTransient(err) {
			message = "transient: " + message
		}
		s.logger.Warn("hydration run failed", "error", err)
	case res.Skipped:
		s.logger.Debug("hydration run skipped", "reason", res.SkipReason)
		return
	case res.Stopped:
		status = settingsstore.StatusStopped
		message = fmt.Sprintf("Stopped after %d pages", res.PagesFetched)
	default:
		status = settingsstore.StatusSuccess
		message = fmt.Sprintf("Hydrated %d subjects in %d pages (%s)", res.ObjectsFetched, res.PagesFetched, res.Strategy)
	}

	if err := s.settings.SetHydrationStatus(status, message, res.ObjectsFetched); err != nil {
		s.logger.Warn("failed to record hydration status", "error", err)
	}
}
