// Package subjects provides database operations for hydrated subjects.
//
// Each subject is stored as one row keyed by its remote id. The full tagged
// record lives in a JSON column; kind, characters, level and a folded search
// text are projected into their own columns for lookup and ordering.
//
// # Interface Implementation
//
//	var _ hydration.SubjectWriter = (*Repository)(nil)
//	var _ subjectcache.Store = (*Repository)(nil)
//
// # Usage
//
//	repo := subjects.NewRepository(db)
//	err := repo.UpsertSubjects(ctx, page, time.Now())
//	found, err := repo.GetByIDs(ctx, []int64{440})
package subjects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kanjisync/kanjisync/internal/entities"
	"github.com/kanjisync/kanjisync/internal/subject"
)

// ErrInvalidSubject is returned when a batch contains a subject that fails validation.
var ErrInvalidSubject = errors.New("invalid subject in batch")

const upsertChunkSize = 200

// Repository handles all subject database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new subjects repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertSubjects replaces every given subject in a single transaction.
// Either all records are written or none are.
func (r *Repository) UpsertSubjects(ctx context.Context, batch []subject.Subject, hydratedAt time.Time) error {
	if len(batch) == 0 {
		return nil
	}

	records := make([]entities.SubjectRecord, 0, len(batch))
	for _, s := range batch {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSubject, err)
		}
		s.LastHydratedAt = hydratedAt
		record, err := toRecord(s)
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(&records, upsertChunkSize).Error
	})
}

// GetByIDs returns the stored subjects for ids. Unknown ids are absent from the map.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) (map[int64]subject.Subject, error) {
	out := make(map[int64]subject.Subject, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var records []entities.SubjectRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	for _, record := range records {
		s, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		out[s.ID] = s
	}
	return out, nil
}

// SearchByText matches the query against characters, meanings and readings.
// Hidden subjects are excluded. An empty query lists every visible subject.
// Results are ordered by level, lesson position and id. limit <= 0 means no limit.
func (r *Repository) SearchByText(ctx context.Context, query string, limit int) ([]subject.Subject, error) {
	q := r.db.WithContext(ctx).Model(&entities.SubjectRecord{}).Where("hidden = ?", false)

	if term := NormalizeQuery(query); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		q = q.Where("search_text LIKE ? ESCAPE '\\'", pattern)
	}

	q = q.Order("level ASC").Order("lesson_position ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var records []entities.SubjectRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}

	out := make([]subject.Subject, 0, len(records))
	for _, record := range records {
		s, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// FindByCharacters returns visible subjects whose characters equal any of the given strings.
func (r *Repository) FindByCharacters(ctx context.Context, characters []string) ([]subject.Subject, error) {
	if len(characters) == 0 {
		return nil, nil
	}

	var records []entities.SubjectRecord
	err := r.db.WithContext(ctx).
		Where("characters IN ? AND hidden = ?", characters, false).
		Order("level ASC").Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]subject.Subject, 0, len(records))
	for _, record := range records {
		s, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Stats is the number of stored subjects per kind.
type Stats struct {
	Total  int64            `json:"total"`
	ByKind map[string]int64 `json:"by_kind"`
	Hidden int64            `json:"hidden"`
}

// GetStats counts stored subjects.
func (r *Repository) GetStats(ctx context.Context) (*Stats, error) {
	var rows []struct {
		Kind  string
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&entities.SubjectRecord{}).
		Select("kind, COUNT(*) AS count").
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByKind: make(map[string]int64, len(rows))}
	for _, row := range rows {
		stats.ByKind[row.Kind] = row.Count
		stats.Total += row.Count
	}

	err = r.db.WithContext(ctx).Model(&entities.SubjectRecord{}).
		Where("hidden = ?", true).
		Count(&stats.Hidden).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func toRecord(s subject.Subject) (entities.SubjectRecord, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return entities.SubjectRecord{}, fmt.Errorf("failed to encode subject %d: %w", s.ID, err)
	}
	return entities.SubjectRecord{
		ID:             s.ID,
		Kind:           string(s.Kind),
		Characters:     s.Characters,
		Level:          s.Level,
		LessonPosition: s.LessonPosition,
		SearchText:     searchText(s),
		Hidden:         s.IsHidden(),
		Data:           datatypes.JSON(data),
		DataUpdatedAt:  s.DataUpdatedAt,
		LastHydratedAt: s.LastHydratedAt,
	}, nil
}

func fromRecord(record entities.SubjectRecord) (subject.Subject, error) {
	var s subject.Subject
	if err := json.Unmarshal(record.Data, &s); err != nil {
		return subject.Subject{}, fmt.Errorf("failed to decode subject %d: %w", record.ID, err)
	}
	return s, nil
}
