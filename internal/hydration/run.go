package hydration

import (
	"context"
	"log/slog"
	"time"

	"github.com/kanjisync/kanjisync/internal/entities"
)

// run holds the mutable state of a single Pipeline.Run call.
type run struct {
	p       *Pipeline
	id      string
	trigger Trigger
	logger  *slog.Logger

	strategy   Strategy
	startedAt  time.Time
	since      *time.Time
	pageCursor string
	pages      int
	objects    int
	total      *int
	lastSynced *time.Time
}

func (r *run) execute(ctx context.Context) (Result, error) {
	p := r.p
	p.update(func(pr *Progress) {
		*pr = Progress{RunID: r.id, State: StateDeterminingStrategy}
	})

	c, err := p.cursors.GetCursor(ctx)
	if err != nil {
		return r.fail(ctx, PhaseCursor, err)
	}
	r.plan(c)

	r.logger = p.logger.With("run_id", r.id, "strategy", r.strategy)
	r.logger.Info("hydration started",
		"trigger", r.trigger,
		"since", r.since,
		"resume_page", r.pages+1,
	)
	p.update(func(pr *Progress) {
		pr.Strategy = r.strategy
		pr.PagesCompleted = r.pages
		pr.ObjectsFetched = r.objects
		pr.TotalKnownCount = r.total
	})
	r.recordStart(ctx)

	for {
		if !p.Enabled() {
			return r.stop(ctx)
		}
		if err := ctx.Err(); err != nil {
			return r.fail(ctx, PhaseFetch, err)
		}

		p.setState(StateFetching)
		page, err := p.source.FetchSubjectsPage(ctx, r.since, r.pageCursor)
		if err != nil {
			return r.fail(ctx, PhaseFetch, err)
		}
		if r.total == nil && page.TotalCount != nil {
			total := *page.TotalCount
			r.total = &total
		}

		p.setState(StatePersisting)
		if err := p.subjects.UpsertSubjects(ctx, page.Records, p.now()); err != nil {
			return r.fail(ctx, PhasePersist, err)
		}
		r.pages++
		r.objects += len(page.Records)
		if r.total != nil && r.objects > *r.total {
			grown := r.objects
			r.total = &grown
		}

		done := page.NextPageCursor == ""
		if done && r.total != nil && r.objects < *r.total {
			// the remote count includes objects the mapper skipped
			final := r.objects
			r.total = &final
		}
		if err := p.cursors.SaveCursor(ctx, r.cursorAfterPage(page.NextPageCursor, done)); err != nil {
			return r.fail(ctx, PhaseCursor, err)
		}
		r.pageCursor = page.NextPageCursor

		if p.invalidator != nil && len(page.Records) > 0 {
			ids := make([]int64, len(page.Records))
			for i, s := range page.Records {
				ids[i] = s.ID
			}
			p.invalidator.Invalidate(ids)
		}

		p.update(func(pr *Progress) {
			pr.PagesCompleted = r.pages
			pr.ObjectsFetched = r.objects
			pr.TotalKnownCount = r.total
		})
		r.recordProgress(ctx)
		r.logger.Debug("hydration page committed", "page", r.pages, "records", len(page.Records), "objects", r.objects)

		if done {
			return r.complete(ctx)
		}
	}
}

// plan picks the strategy from the stored cursor.
func (r *run) plan(c entities.HydrationCursor) {
	r.lastSynced = c.LastSyncedAt

	if c.InProgress() && c.NextPageCursor != "" {
		r.strategy = StrategyResume
		r.pageCursor = c.NextPageCursor
		r.pages = c.PagesCompleted
		r.objects = c.ObjectsFetched
		r.total = c.TotalKnownCount
		r.since = c.RunSince
		if c.RunStartedAt != nil {
			r.startedAt = *c.RunStartedAt
		} else {
			r.startedAt = r.p.now()
		}
		return
	}

	r.startedAt = r.p.now()
	if c.LastSyncedAt == nil {
		r.strategy = StrategyFull
		return
	}
	r.strategy = StrategyIncremental
	since := *c.LastSyncedAt
	r.since = &since
}

// cursorAfterPage builds the cursor to persist once a page is committed. The
// final page writes the completed cursor: LastSyncedAt becomes the run's start
// time so records updated during the run are fetched again next time.
func (r *run) cursorAfterPage(next string, done bool) entities.HydrationCursor {
	if done {
		startedAt := r.startedAt
		return entities.HydrationCursor{
			LastSyncedAt:    &startedAt,
			TotalKnownCount: r.total,
		}
	}
	startedAt := r.startedAt
	return entities.HydrationCursor{
		LastSyncedAt:    r.lastSynced,
		TotalKnownCount: r.total,
		PagesCompleted:  r.pages,
		ObjectsFetched:  r.objects,
		NextPageCursor:  next,
		RunStartedAt:    &startedAt,
		RunSince:        r.since,
	}
}

func (r *run) result() Result {
	return Result{
		RunID:          r.id,
		Strategy:       r.strategy,
		PagesFetched:   r.pages,
		ObjectsFetched: r.objects,
		StartedAt:      r.startedAt,
	}
}

func (r *run) complete(ctx context.Context) (Result, error) {
	r.p.setState(StateCompleted)
	r.recordFinish(ctx, entities.HydrationStatusCompleted, "")
	r.logger.Info("hydration completed", "pages", r.pages, "objects", r.objects)
	r.p.setState(StateIdle)
	return r.result(), nil
}

func (r *run) stop(ctx context.Context) (Result, error) {
	r.recordFinish(ctx, entities.HydrationStatusStopped, "hydration disabled")
	r.logger.Info("hydration stopped at page boundary", "pages", r.pages)
	r.p.setState(StateIdle)

	res := r.result()
	res.Stopped = true
	return res, nil
}

func (r *run) fail(ctx context.Context, phase Phase, err error) (Result, error) {
	runErr := &RunError{Phase: phase, Page: r.pages + 1, Err: err}

	r.p.setState(StateFailed)
	if r.strategy != "" {
		r.recordFinish(ctx, entities.HydrationStatusFailed, runErr.Error())
	}
	r.logger.Error("hydration failed", "phase", phase, "page", runErr.Page, "error", err)
	r.p.setState(StateIdle)

	return r.result(), runErr
}

func (r *run) recordStart(ctx context.Context) {
	if r.p.runs == nil {
		return
	}
	err := r.p.runs.StartRun(ctx, &entities.HydrationRun{
		RunID:          r.id,
		Strategy:       r.strategy,
		Trigger:        string(r.trigger),
		PagesFetched:   r.pages,
		ObjectsFetched: r.objects,
		TotalKnown:     r.total,
		StartedAt:      r.p.now(),
	})
	if err != nil {
		r.logger.Warn("failed to record hydration run", "error", err)
	}
}

func (r *run) recordProgress(ctx context.Context) {
	if r.p.runs == nil {
		return
	}
	if err := r.p.runs.UpdateProgress(ctx, r.id, r.pages, r.objects, r.total); err != nil {
		r.logger.Warn("failed to record hydration progress", "error", err)
	}
}

func (r *run) recordFinish(ctx context.Context, status entities.HydrationStatus, msg string) {
	if r.p.runs == nil {
		return
	}
	if err := r.p.runs.FinishRun(context.WithoutCancel(ctx), r.id, status, msg); err != nil {
		r.logger.Warn("failed to record hydration result", "error", err)
	}
}
