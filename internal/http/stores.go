package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/kanjisync/kanjisync/internal/database/subjects"
	"github.com/kanjisync/kanjisync/internal/entities"
	"github.com/kanjisync/kanjisync/internal/hydration"
	"github.com/kanjisync/kanjisync/internal/settingsstore"
	"github.com/kanjisync/kanjisync/internal/subject"
	"github.com/kanjisync/kanjisync/internal/subjectcache"
)

// SubjectReader is the read side used by the subject endpoints.
// Implemented by subjectcache.Service.
type SubjectReader interface {
	GetOrdered(ctx context.Context, ids []int64) ([]subject.Subject, error)
	Get(ctx context.Context, id int64) (subject.Subject, bool, error)
	Search(ctx context.Context, query string, limit int) ([]subject.Subject, error)
	Components(ctx context.Context, id int64) ([]subject.Subject, error)
	Amalgamations(ctx context.Context, id int64) ([]subject.Subject, error)
	LookupSentence(ctx context.Context, text string) ([]subjectcache.LookupMatch, error)
}

// StatsReader reports store statistics. Implemented by subjects.Repository.
type StatsReader interface {
	GetStats(ctx context.Context) (*subjects.Stats, error)
}

// Pinger checks database connectivity. Implemented by database.Database.
type Pinger interface {
	Ping() error
}

// ProgressReader exposes the live pipeline state. Implemented by hydration.Pipeline.
type ProgressReader interface {
	Progress() hydration.Progress
	IsRunning() bool
	Enabled() bool
}

// HydrationScheduler runs hydration on demand and on schedule.
// Implemented by scheduler.HydrationScheduler.
type HydrationScheduler interface {
	RunNow(ctx context.Context, trigger hydration.Trigger) (hydration.Result, error)
	Reschedule(ctx context.Context) error
	GetNextRunTime() *time.Time
	IsRunning() bool
}

// CursorReader reads the stored hydration cursor. Implemented by cursor.Repository.
type CursorReader interface {
	GetCursor(ctx context.Context) (entities.HydrationCursor, error)
}

// RunHistory lists recent hydration runs. Implemented by runs.Repository.
type RunHistory interface {
	ListRecent(ctx context.Context, limit int) ([]entities.HydrationRun, error)
}

// TaskQueue runs hydration in the background. Implemented by tasks.Client.
type TaskQueue interface {
	EnqueueHydration(ctx context.Context, trigger hydration.Trigger) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// HydrationSettings reads and writes runtime hydration settings.
// Implemented by settingsstore.SettingsStore.
type HydrationSettings interface {
	GetHydrationConfigInfo() settingsstore.HydrationConfigInfo
	GetHydrationStatus() settingsstore.HydrationStatus
	GetHydrationAPIToken() string
	UpdateHydration(u settingsstore.HydrationUpdate) error
	ClearHydrationSettings() error
}

// TokenValidator checks an API token against the remote service.
// Implemented by wanikani.Client.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) error
}
