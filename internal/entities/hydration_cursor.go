package entities

import (
	"time"
)

// HydrationCursorID is the primary key of the only cursor row.
const HydrationCursorID = 1

// HydrationCursor is the persisted resume point of the hydration pipeline.
//
// NextPageCursor, RunStartedAt and RunSince are only set while a run is in
// progress (PagesCompleted > 0) and let an interrupted run continue from the
// page after the last committed one.
type HydrationCursor struct {
	ID              uint       `gorm:"primaryKey;autoIncrement:false" json:"-"`
	LastSyncedAt    *time.Time `json:"last_synced_at"`
	TotalKnownCount *int       `json:"total_known_count"`
	PagesCompleted  int        `json:"pages_completed"`
	ObjectsFetched  int        `json:"objects_fetched"`
	NextPageCursor  string     `gorm:"type:text" json:"next_page_cursor,omitempty"`
	RunStartedAt    *time.Time `json:"run_started_at,omitempty"`
	RunSince        *time.Time `json:"run_since,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (HydrationCursor) TableName() string {
	return "hydration_cursor"
}

// InProgress reports whether the cursor describes an interrupted run.
func (c HydrationCursor) InProgress() bool {
	return c.PagesCompleted > 0
}
