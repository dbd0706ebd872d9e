package hydration

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kanjisync/kanjisync/internal/entities"
	"github.com/kanjisync/kanjisync/internal/subject"
)

// Page is one page returned by a Source. An empty NextPageCursor ends the run.
type Page struct {
	Records        []subject.Subject
	NextPageCursor string
	TotalCount     *int
}

// Source fetches pages of the remote subject collection. since filters to
// records updated after it; pageCursor is opaque and empty for the first page.
type Source interface {
	FetchSubjectsPage(ctx context.Context, since *time.Time, pageCursor string) (*Page, error)
}

// SubjectWriter persists one page atomically.
type SubjectWriter interface {
	UpsertSubjects(ctx context.Context, batch []subject.Subject, hydratedAt time.Time) error
}

// CursorStore persists the hydration cursor without interpreting it.
type CursorStore interface {
	GetCursor(ctx context.Context) (entities.HydrationCursor, error)
	SaveCursor(ctx context.Context, c entities.HydrationCursor) error
}

// RunRecorder keeps run history. Failures to record are logged and ignored.
type RunRecorder interface {
	StartRun(ctx context.Context, run *entities.HydrationRun) error
	UpdateProgress(ctx context.Context, runID string, pages, objects int, total *int) error
	FinishRun(ctx context.Context, runID string, status entities.HydrationStatus, errorMsg string) error
}

// Invalidator is told which subject ids changed after each committed page.
type Invalidator interface {
	Invalidate(ids []int64)
}

type Strategy = entities.HydrationStrategy

const (
	StrategyFull        = entities.HydrationStrategyFull
	StrategyIncremental = entities.HydrationStrategyIncremental
	StrategyResume      = entities.HydrationStrategyResume
)

// Trigger names who started a run. It is only recorded in run history.
type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerManual   Trigger = "manual"
	TriggerStartup  Trigger = "startup"
	TriggerCLI      Trigger = "cli"
)

// SkipReason explains why Run returned without doing anything.
type SkipReason string

const (
	SkipDisabled       SkipReason = "disabled"
	SkipAlreadyRunning SkipReason = "already_running"
)

// Result summarizes one call to Run.
type Result struct {
	RunID          string     `json:"run_id,omitempty"`
	Strategy       Strategy   `json:"strategy,omitempty"`
	PagesFetched   int        `json:"pages_fetched"`
	ObjectsFetched int        `json:"objects_fetched"`
	StartedAt      time.Time  `json:"started_at"`
	Skipped        bool       `json:"skipped"`
	SkipReason     SkipReason `json:"skip_reason,omitempty"`
	Stopped        bool       `json:"stopped"`
}

// Pipeline runs hydration. Construct one per process and share it.
type Pipeline struct {
	source      Source
	subjects    SubjectWriter
	cursors     CursorStore
	runs        RunRecorder
	invalidator Invalidator
	onProgress  ProgressFunc
	now         func() time.Time
	logger      *slog.Logger

	enabled atomic.Bool
	running atomic.Bool

	mu       sync.RWMutex
	progress Progress
}

type Option func(*Pipeline)

func WithRunRecorder(r RunRecorder) Option {
	return func(p *Pipeline) { p.runs = r }
}

func WithInvalidator(i Invalidator) Option {
	return func(p *Pipeline) { p.invalidator = i }
}

func WithProgressFunc(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.onProgress = fn }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithEnabled sets the initial enabled state. Pipelines start disabled.
func WithEnabled(enabled bool) Option {
	return func(p *Pipeline) { p.enabled.Store(enabled) }
}

func NewPipeline(source Source, subjects SubjectWriter, cursors CursorStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:   source,
		subjects: subjects,
		cursors:  cursors,
		now:      time.Now,
		logger:   slog.Default(),
		progress: Progress{State: StateIdle},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetEnabled is the external willingness signal, normally derived from the
// presence of an API token. Disabling stops an active run at its next page boundary.
func (p *Pipeline) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

func (p *Pipeline) Enabled() bool {
	return p.enabled.Load()
}

func (p *Pipeline) IsRunning() bool {
	return p.running.Load()
}

// Progress returns a snapshot of the current or most recent run.
func (p *Pipeline) Progress() Progress {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snapshot := p.progress
	if snapshot.TotalKnownCount != nil {
		total := *snapshot.TotalKnownCount
		snapshot.TotalKnownCount = &total
	}
	return snapshot
}

// Run performs one hydration run. It returns immediately with Skipped set when
// the pipeline is disabled or another run is active. Errors are *RunError.
func (p *Pipeline) Run(ctx context.Context, trigger Trigger) (Result, error) {
	if !p.Enabled() {
		return Result{Skipped: true, SkipReason: SkipDisabled}, nil
	}
	if !p.running.CompareAndSwap(false, true) {
		p.logger.Debug("hydration already running, trigger ignored", "trigger", trigger)
		return Result{Skipped: true, SkipReason: SkipAlreadyRunning}, nil
	}
	defer p.running.Store(false)

	r := &run{
		p:       p,
		id:      uuid.NewString(),
		trigger: trigger,
		logger:  p.logger,
	}
	return r.execute(ctx)
}

func (p *Pipeline) update(fn func(*Progress)) {
	p.mu.Lock()
	fn(&p.progress)
	snapshot := p.progress
	p.mu.Unlock()

	if p.onProgress != nil {
		if snapshot.TotalKnownCount != nil {
			total := *snapshot.TotalKnownCount
			snapshot.TotalKnownCount = &total
		}
		p.onProgress(snapshot)
	}
}

func (p *Pipeline) setState(s State) {
	p.update(func(pr *Progress) { pr.State = s })
}
