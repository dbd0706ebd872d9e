// Package settings provides database operations for runtime settings.
//
// Values are plain strings keyed by name; interpretation belongs to
// settingsstore, which layers environment and default fallbacks on top.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	value, ok, err := repo.Get(entities.SettingKeyHydrationSchedule)
package settings

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kanjisync/kanjisync/internal/entities"
)

// Repository handles all settings database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the stored value for key. ok is false when no row exists.
func (r *Repository) Get(key string) (string, bool, error) {
	var setting entities.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

// Set creates or updates a setting in a single statement.
func (r *Repository) Set(key, value string) error {
	setting := entities.Setting{Key: key, Value: value}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

// SetMany writes several settings in one transaction.
func (r *Repository) SetMany(values map[string]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &Repository{db: tx}
		for key, value := range values {
			if err := txRepo.Set(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a setting by key. Deleting a missing key is not an error.
func (r *Repository) Delete(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}
