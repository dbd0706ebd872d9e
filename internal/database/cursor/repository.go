// Package cursor persists the single-row hydration cursor.
//
// The repository stores and returns the cursor verbatim; only the hydration
// pipeline interprets it.
//
// # Interface Implementation
//
//	var _ hydration.CursorStore = (*Repository)(nil)
package cursor

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kanjisync/kanjisync/internal/entities"
)

// Repository handles the hydration cursor row.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new cursor repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetCursor returns the stored cursor, or a zero cursor if none was saved yet.
func (r *Repository) GetCursor(ctx context.Context) (entities.HydrationCursor, error) {
	var c entities.HydrationCursor
	err := r.db.WithContext(ctx).First(&c, entities.HydrationCursorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.HydrationCursor{ID: entities.HydrationCursorID}, nil
	}
	if err != nil {
		return entities.HydrationCursor{}, err
	}
	return c, nil
}

// SaveCursor replaces the cursor row in its own transaction.
func (r *Repository) SaveCursor(ctx context.Context, c entities.HydrationCursor) error {
	c.ID = entities.HydrationCursorID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&c).Error
	})
}

// ResetCursor deletes the cursor so the next run performs a full sync.
func (r *Repository) ResetCursor(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("id = ?", entities.HydrationCursorID).
		Delete(&entities.HydrationCursor{}).Error
}
