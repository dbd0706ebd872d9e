package entities

import (
	"time"

	"gorm.io/datatypes"
)

// SubjectRecord is the stored form of a subject. Data holds the full tagged
// record as JSON; the other columns are projections used for lookup and search.
type SubjectRecord struct {
	ID             int64          `gorm:"primaryKey;autoIncrement:false"`
	Kind           string         `gorm:"size:20;index"`
	Characters     string         `gorm:"size:100;index"`
	Level          int            `gorm:"index:idx_subject_order,priority:1"`
	LessonPosition int            `gorm:"index:idx_subject_order,priority:2"`
	SearchText     string         `gorm:"type:text"`
	Hidden         bool           `gorm:"index"`
	Data           datatypes.JSON `gorm:"not null"`
	DataUpdatedAt  time.Time
	LastHydratedAt time.Time
}

func (SubjectRecord) TableName() string {
	return "subjects"
}
