package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kanjisync/kanjisync/internal/database/subjects"
	"github.com/kanjisync/kanjisync/internal/hydration"
)

// Overall health values. Degraded still answers 200: the server works but
// has nothing to serve until the first hydration completes.
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Time      string            `json:"time"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks"`
	Subjects  *subjects.Stats   `json:"subjects,omitempty"`
	Hydration *HydrationHealth  `json:"hydration,omitempty"`
}

// HydrationHealth is the pipeline state as seen by /health.
type HydrationHealth struct {
	State   hydration.State `json:"state"`
	Enabled bool            `json:"enabled"`
	Running bool            `json:"running"`
}

type HealthController struct {
	db       Pinger
	stats    StatsReader
	pipeline ProgressReader
	version  string
}

func NewHealthController(db Pinger, stats StatsReader, pipeline ProgressReader, version string) *HealthController {
	return &HealthController{db: db, stats: stats, pipeline: pipeline, version: version}
}

func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:  HealthHealthy,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  map[string]string{"database": "not configured"},
	}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Checks["database"] = "error: " + err.Error()
			resp.Status = HealthUnhealthy
			c.IndentedJSON(http.StatusServiceUnavailable, resp)
			return
		}
		resp.Checks["database"] = "ok"
	}

	if h.stats != nil {
		stats, err := h.stats.GetStats(c.Request.Context())
		switch {
		case err != nil:
			resp.Checks["subjects"] = "error: " + err.Error()
			resp.Status = HealthDegraded
		case stats.Total == 0:
			resp.Checks["subjects"] = "empty: no subjects hydrated yet"
			resp.Status = HealthDegraded
			resp.Subjects = stats
		default:
			resp.Checks["subjects"] = "ok"
			resp.Subjects = stats
		}
	}

	if h.pipeline != nil {
		resp.Hydration = &HydrationHealth{
			State:   h.pipeline.Progress().State,
			Enabled: h.pipeline.Enabled(),
			Running: h.pipeline.IsRunning(),
		}
	}

	c.IndentedJSON(http.StatusOK, resp)
}
