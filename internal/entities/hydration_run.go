package entities

import (
	"time"
)

type HydrationStrategy string

const (
	HydrationStrategyFull        HydrationStrategy = "full"
	HydrationStrategyIncremental HydrationStrategy = "incremental"
	HydrationStrategyResume      HydrationStrategy = "resume"
)

type HydrationStatus string

const (
	HydrationStatusRunning   HydrationStatus = "running"
	HydrationStatusCompleted HydrationStatus = "completed"
	HydrationStatusStopped   HydrationStatus = "stopped"
	HydrationStatusFailed    HydrationStatus = "failed"
)

// HydrationRun is one row of run history. It is informational only; resume
// decisions are made from HydrationCursor.
type HydrationRun struct {
	ID             uint              `gorm:"primaryKey" json:"-"`
	RunID          string            `gorm:"size:36;uniqueIndex" json:"run_id"`
	Strategy       HydrationStrategy `gorm:"size:20" json:"strategy"`
	Status         HydrationStatus   `gorm:"size:20;index" json:"status"`
	Trigger        string            `gorm:"size:20" json:"trigger"`
	PagesFetched   int               `json:"pages_fetched"`
	ObjectsFetched int               `json:"objects_fetched"`
	TotalKnown     *int              `json:"total_known,omitempty"`
	Error          string            `gorm:"type:text" json:"error,omitempty"`
	StartedAt      time.Time         `gorm:"index" json:"started_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}

func (HydrationRun) TableName() string {
	return "hydration_runs"
}
