// Package runs provides database operations for hydration run history.
//
// # Interface Implementation
//
//	var _ hydration.RunRecorder = (*Repository)(nil)
//
// # Usage
//
//	repo := runs.NewRepository(db)
//	err := repo.StartRun(ctx, &entities.HydrationRun{RunID: id, Strategy: entities.HydrationStrategyFull})
package runs

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kanjisync/kanjisync/internal/entities"
)

// Repository handles hydration run history.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new runs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StartRun inserts a run row in the running state.
func (r *Repository) StartRun(ctx context.Context, run *entities.HydrationRun) error {
	now := time.Now()
	run.Status = entities.HydrationStatusRunning
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	run.UpdatedAt = now
	return r.db.WithContext(ctx).Create(run).Error
}

// UpdateProgress records how far a running run has got.
func (r *Repository) UpdateProgress(ctx context.Context, runID string, pages, objects int, total *int) error {
	return r.db.WithContext(ctx).Model(&entities.HydrationRun{}).
		Where("run_id = ?", runID).
		Updates(map[string]any{
			"pages_fetched":   pages,
			"objects_fetched": objects,
			"total_known":     total,
			"updated_at":      time.Now(),
		}).Error
}

// FinishRun moves a run to a terminal status.
func (r *Repository) FinishRun(ctx context.Context, runID string, status entities.HydrationStatus, errorMsg string) error {
	now := time.Now()
	updates := map[string]any{
		"status":       status,
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.db.WithContext(ctx).Model(&entities.HydrationRun{}).
		Where("run_id = ?", runID).
		Updates(updates).Error
}

// GetRun returns one run by id, or nil when it does not exist.
func (r *Repository) GetRun(ctx context.Context, runID string) (*entities.HydrationRun, error) {
	var run entities.HydrationRun
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRecent returns the newest runs first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]entities.HydrationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []entities.HydrationRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// MarkInterrupted fails every run still marked running. A process only calls
// this at startup, when no run of its own can be active.
func (r *Repository) MarkInterrupted(ctx context.Context) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&entities.HydrationRun{}).
		Where("status = ?", entities.HydrationStatusRunning).
		Updates(map[string]any{
			"status":       entities.HydrationStatusFailed,
			"error":        "run was interrupted",
			"updated_at":   now,
			"completed_at": now,
		})
	return result.RowsAffected, result.Error
}
