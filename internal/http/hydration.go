package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/kanjisync/kanjisync/internal/entities"
	"github.com/kanjisync/kanjisync/internal/hydration"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// HydrationController triggers hydration and reports its progress.
type HydrationController struct {
	pipeline  ProgressReader
	scheduler HydrationScheduler
	cursors   CursorReader
	runs      RunHistory
	tasks     TaskQueue
}

func NewHydrationController(pipeline ProgressReader, scheduler HydrationScheduler, cursors CursorReader, runs RunHistory, queue TaskQueue) *HydrationController {
	return &HydrationController{
		pipeline:  pipeline,
		scheduler: scheduler,
		cursors:   cursors,
		runs:      runs,
		tasks:     queue,
	}
}

// Run handles POST /api/hydration/run
// The run happens in the background: through the task queue when one is
// configured, otherwise on its own goroutine.
func (hc *HydrationController) Run(c *gin.Context) {
	if hc.pipeline.IsRunning() {
		respondError(c, http.StatusConflict, "already_running", "hydration is already running")
		return
	}

	if hc.tasks != nil {
		id, err := hc.tasks.EnqueueHydration(c.Request.Context(), hydration.TriggerManual)
		if err != nil {
			respondInternalError(c, err, "enqueue hydration")
			return
		}
		respondAccepted(c, "hydration enqueued", gin.H{"task_id": id})
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		if _, err := hc.scheduler.RunNow(ctx, hydration.TriggerManual); err != nil {
			slog.Warn("manual hydration failed", "error", err)
		}
	}()
	respondAccepted(c, "hydration started", nil)
}

// HydrationStatusResponse is the response for GET /api/hydration/status
type HydrationStatusResponse struct {
	Progress   hydration.Progress       `json:"progress"`
	Fraction   *float64                 `json:"fraction,omitempty"`
	Running    bool                     `json:"running"`
	Enabled    bool                     `json:"enabled"`
	Cursor     entities.HydrationCursor `json:"cursor"`
	NextRun    *time.Time               `json:"next_run,omitempty"`
	Scheduled  bool                     `json:"scheduled"`
	ResumeFrom int                      `json:"resume_from_page,omitempty"`
}

// Status handles GET /api/hydration/status
func (hc *HydrationController) Status(c *gin.Context) {
	cursor, err := hc.cursors.GetCursor(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "get hydration cursor")
		return
	}

	progress := hc.pipeline.Progress()
	resp := HydrationStatusResponse{
		Progress: progress,
		Running:  hc.pipeline.IsRunning(),
		Enabled:  hc.pipeline.Enabled(),
		Cursor:   cursor,
	}
	if f, known := progress.Fraction(); known {
		resp.Fraction = &f
	}
	if cursor.InProgress() {
		resp.ResumeFrom = cursor.PagesCompleted + 1
	}
	if hc.scheduler != nil {
		resp.NextRun = hc.scheduler.GetNextRunTime()
		resp.Scheduled = hc.scheduler.IsRunning()
	}
	c.JSON(http.StatusOK, resp)
}

// ListRuns handles GET /api/hydration/runs?limit=...
func (hc *HydrationController) ListRuns(c *gin.Context) {
	limit, ok := parseLimit(c, defaultRunsLimit, maxRunsLimit)
	if !ok {
		return
	}

	recent, err := hc.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondInternalError(c, err, "list hydration runs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": recent})
}

// TaskStatus handles GET /api/tasks/:id
func (hc *HydrationController) TaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := hc.tasks.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "get task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": taskID, "status": taskStatusToString(status)})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
