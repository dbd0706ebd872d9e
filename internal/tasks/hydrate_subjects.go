package tasks

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mikestefanello/backlite"

	"github.com/kanjisync/kanjisync/internal/hydration"
)

const HydrateSubjectsQueue = "hydrate_subjects"

// HydrateSubjectsTask asks for one hydration run.
type HydrateSubjectsTask struct {
	Trigger hydration.Trigger `json:"trigger"`
}

var (
	queueMu     sync.RWMutex
	queueConfig = hydrateQueueConfig(DefaultConfig())
)

func hydrateQueueConfig(cfg Config) backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        HydrateSubjectsQueue,
		MaxAttempts: cfg.MaxRetries,
		Backoff:     cfg.RetryDelay,
		Timeout:     cfg.TaskTimeout,
		Retention: &backlite.Retention{
			Duration:   cfg.RetentionDuration,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Config returns the queue configuration for hydration tasks.
func (t HydrateSubjectsTask) Config() backlite.QueueConfig {
	queueMu.RLock()
	defer queueMu.RUnlock()
	return queueConfig
}

// Hydrator runs hydration and records its outcome, normally the scheduler.
type Hydrator interface {
	RunNow(ctx context.Context, trigger hydration.Trigger) (hydration.Result, error)
}

// HydrateSubjectsProcessor returns the queue processor. Only transient fetch
// failures are returned to backlite for retry; a run that fails while
// persisting would fail the same way again.
func HydrateSubjectsProcessor(h Hydrator, logger *slog.Logger) backlite.QueueProcessor[HydrateSubjectsTask] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, task HydrateSubjectsTask) error {
		trigger := task.Trigger
		if trigger == "" {
			trigger = hydration.TriggerManual
		}

		res, err := h.RunNow(ctx, trigger)
		if err != nil {
			if hydration.IsTransient(err) {
				return err
			}
			logger.Error("hydration task failed", "trigger", trigger, "error", err)
			return nil
		}
		if res.Skipped {
			logger.Info("hydration task skipped", "trigger", trigger, "reason", res.SkipReason)
			return nil
		}
		logger.Info("hydration task finished",
			"run_id", res.RunID,
			"strategy", res.Strategy,
			"pages", res.PagesFetched,
			"objects", res.ObjectsFetched,
			"stopped", res.Stopped,
		)
		return nil
	}
}

// NewHydrateSubjectsQueue creates the backlite queue for hydration tasks.
func NewHydrateSubjectsQueue(h Hydrator, cfg Config, logger *slog.Logger) backlite.Queue {
	queueMu.Lock()
	queueConfig = hydrateQueueConfig(cfg)
	queueMu.Unlock()
	return backlite.NewQueue(HydrateSubjectsProcessor(h, logger))
}
