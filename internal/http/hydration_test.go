package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanjisync/kanjisync/internal/database/cursor"
	"github.com/kanjisync/kanjisync/internal/database/runs"
	"github.com/kanjisync/kanjisync/internal/entities"
	"github.com/kanjisync/kanjisync/internal/hydration"
	"github.com/kanjisync/kanjisync/internal/settingsstore"
)

func TestHydrationController_RunAndStatus(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.settings.SetHydrationAPIToken("token-abcdefgh"))

	w := env.do(t, http.MethodGet, "/api/hydration/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	before := decode[HydrationStatusResponse](t, w)
	assert.Equal(t, hydration.StateIdle, before.Progress.State)
	assert.Nil(t, before.Cursor.LastSyncedAt)
	assert.Nil(t, before.Fraction)

	w = env.do(t, http.MethodPost, "/api/hydration/run", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	assert.Eventually(t, func() bool {
		return env.settings.GetHydrationStatus().Status == settingsstore.StatusSuccess
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, env.source.callCount())

	w = env.do(t, http.MethodGet, "/api/hydration/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	after := decode[HydrationStatusResponse](t, w)
	assert.True(t, after.Enabled)
	assert.False(t, after.Running)
	assert.NotNil(t, after.Cursor.LastSyncedAt)
	assert.Zero(t, after.ResumeFrom)
	require.NotNil(t, after.Fraction)
	assert.Equal(t, 1.0, *after.Fraction)

	w = env.do(t, http.MethodGet, "/api/hydration/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[struct {
		Runs []entities.HydrationRun `json:"runs"`
	}](t, w)
	require.Len(t, history.Runs, 1)
	assert.Equal(t, entities.HydrationStatusCompleted, history.Runs[0].Status)
	assert.Equal(t, entities.HydrationStrategyFull, history.Runs[0].Strategy)
	assert.Equal(t, string(hydration.TriggerManual), history.Runs[0].Trigger)
}

func TestHydrationController_RunWithoutToken(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/hydration/run", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	// the run is skipped, so no status is recorded and nothing is fetched
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, env.source.callCount())
	assert.Empty(t, env.settings.GetHydrationStatus().Status)
}

type busyPipeline struct{}

func (busyPipeline) Progress() hydration.Progress {
	return hydration.Progress{State: hydration.StateFetching}
}
func (busyPipeline) IsRunning() bool { return true }
func (busyPipeline) Enabled() bool   { return true }

func TestHydrationController_RunConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	controller := NewHydrationController(busyPipeline{}, nil, nil, nil, nil)

	router := gin.New()
	router.POST("/api/hydration/run", controller.Run)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/hydration/run", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_running", decode[ErrorResponse](t, w).Code)
}

func TestHydrationController_StatusShowsResumePoint(t *testing.T) {
	env := setupTestEnv(t)

	total := 100
	now := time.Now()
	err := cursor.NewRepository(env.db.DB).SaveCursor(context.Background(), entities.HydrationCursor{
		PagesCompleted:  2,
		ObjectsFetched:  40,
		NextPageCursor:  "https://api.example.test/subjects?page_after_id=40",
		TotalKnownCount: &total,
		RunStartedAt:    &now,
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/hydration/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[HydrationStatusResponse](t, w)
	assert.Equal(t, 3, resp.ResumeFrom)
	assert.Equal(t, 40, resp.Cursor.ObjectsFetched)
}

func TestHydrationController_ListRunsLimit(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/hydration/runs?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/hydration/runs?limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

type fakeQueue struct {
	triggers []hydration.Trigger
	statuses map[string]backlite.TaskStatus
}

func (q *fakeQueue) EnqueueHydration(_ context.Context, trigger hydration.Trigger) (string, error) {
	q.triggers = append(q.triggers, trigger)
	return "task-1", nil
}

func (q *fakeQueue) Status(_ context.Context, taskID string) (backlite.TaskStatus, error) {
	if s, ok := q.statuses[taskID]; ok {
		return s, nil
	}
	return backlite.TaskStatusNotFound, nil
}

func TestHydrationController_RunEnqueuesTask(t *testing.T) {
	env := setupTestEnv(t)
	queue := &fakeQueue{statuses: map[string]backlite.TaskStatus{"task-1": backlite.TaskStatusPending}}

	router := gin.New()
	hc := NewHydrationController(env.pipeline, env.scheduler, cursor.NewRepository(env.db.DB), runs.NewRepository(env.db.DB), queue)
	router.POST("/api/hydration/run", hc.Run)
	router.GET("/api/tasks/:id", hc.TaskStatus)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/hydration/run", nil))
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "task-1")
	assert.Equal(t, []hydration.Trigger{hydration.TriggerManual}, queue.triggers)
	assert.Zero(t, env.source.callCount(), "the worker runs hydration, not the handler")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/task-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
