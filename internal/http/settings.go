package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kanjisync/kanjisync/internal/settingsstore"
	"github.com/kanjisync/kanjisync/internal/wanikani"
)

const tokenValidationTimeout = 10 * time.Second

// SchedulePreset is a suggested cron schedule.
type SchedulePreset struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

var schedulePresets = []SchedulePreset{
	{Label: "Every 30 minutes", Value: "*/30 * * * *", Description: "Runs at :00, :30"},
	{Label: "Every hour", Value: "0 * * * *", Description: "Runs at the top of every hour"},
	{Label: "Every 6 hours", Value: "0 */6 * * *", Description: "Runs at midnight, 6am, noon, 6pm"},
	{Label: "Daily at midnight", Value: "0 0 * * *", Description: "Runs once daily at 00:00"},
	{Label: "Weekly on Sunday", Value: "0 0 * * 0", Description: "Runs every Sunday at midnight"},
}

// SettingsController handles hydration settings.
type SettingsController struct {
	settings  HydrationSettings
	scheduler HydrationScheduler
	tokens    TokenValidator
}

// NewSettingsController creates the controller. tokens may be nil, in which
// case new tokens are stored without being checked.
func NewSettingsController(settings HydrationSettings, scheduler HydrationScheduler, tokens TokenValidator) *SettingsController {
	return &SettingsController{settings: settings, scheduler: scheduler, tokens: tokens}
}

// HydrationSettingsResponse is the response for GET /api/settings/hydration
type HydrationSettingsResponse struct {
	Config  settingsstore.HydrationConfigInfo `json:"config"`
	Status  settingsstore.HydrationStatus     `json:"status"`
	NextRun *time.Time                        `json:"next_run,omitempty"`
	Presets []SchedulePreset                  `json:"presets"`
}

func (sc *SettingsController) response() HydrationSettingsResponse {
	resp := HydrationSettingsResponse{
		Config:  sc.settings.GetHydrationConfigInfo(),
		Status:  sc.settings.GetHydrationStatus(),
		Presets: schedulePresets,
	}
	if sc.scheduler != nil {
		resp.NextRun = sc.scheduler.GetNextRunTime()
	}
	return resp
}

// GetHydrationSettings handles GET /api/settings/hydration
func (sc *SettingsController) GetHydrationSettings(c *gin.Context) {
	c.JSON(http.StatusOK, sc.response())
}

// UpdateHydrationSettingsRequest is the request body for PUT /api/settings/hydration.
// Omitted fields keep their current value.
type UpdateHydrationSettingsRequest struct {
	Enabled  *bool   `json:"enabled"`
	Token    *string `json:"token" binding:"omitempty,max=200"`
	Schedule *string `json:"schedule" binding:"omitempty,min=9"`
}

// UpdateHydrationSettings handles PUT /api/settings/hydration
func (sc *SettingsController) UpdateHydrationSettings(c *gin.Context) {
	var req UpdateHydrationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Schedule != nil {
		if err := settingsstore.ValidateCronSchedule(*req.Schedule); err != nil {
			respondBadRequest(c, "invalid cron schedule: "+err.Error())
			return
		}
	}
	if req.Token != nil && *req.Token != "" && sc.tokens != nil {
		if err := sc.checkToken(c.Request.Context(), *req.Token); err != nil {
			if errors.Is(err, wanikani.ErrInvalidToken) {
				respondError(c, http.StatusBadRequest, "invalid_token", "api token was rejected")
				return
			}
			respondError(c, http.StatusBadGateway, "token_check_failed", "could not validate api token: "+err.Error())
			return
		}
	}

	err := sc.settings.UpdateHydration(settingsstore.HydrationUpdate{
		Enabled:  req.Enabled,
		Token:    req.Token,
		Schedule: req.Schedule,
	})
	if err != nil {
		respondInternalError(c, err, "update hydration settings")
		return
	}

	if !sc.reschedule(c) {
		return
	}
	respondSuccess(c, "settings saved", sc.response())
}

// ResetHydrationSettings handles DELETE /api/settings/hydration
// Database overrides are removed, reverting to environment and defaults.
func (sc *SettingsController) ResetHydrationSettings(c *gin.Context) {
	if err := sc.settings.ClearHydrationSettings(); err != nil {
		respondInternalError(c, err, "reset hydration settings")
		return
	}
	if !sc.reschedule(c) {
		return
	}
	respondSuccess(c, "settings reset", sc.response())
}

func (sc *SettingsController) reschedule(c *gin.Context) bool {
	if sc.scheduler == nil {
		return true
	}
	if err := sc.scheduler.Reschedule(context.WithoutCancel(c.Request.Context())); err != nil {
		respondInternalError(c, err, "reschedule hydration")
		return false
	}
	return true
}

// ValidateTokenRequest is the request body for POST /api/settings/hydration/validate.
// An empty token checks the configured one.
type ValidateTokenRequest struct {
	Token string `json:"token" binding:"max=200"`
}

// ValidateTokenResponse reports whether the token was accepted.
type ValidateTokenResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ValidateToken handles POST /api/settings/hydration/validate
func (sc *SettingsController) ValidateToken(c *gin.Context) {
	var req ValidateTokenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}
	}

	token := req.Token
	if token == "" {
		token = sc.settings.GetHydrationAPIToken()
	}
	if token == "" {
		c.JSON(http.StatusOK, ValidateTokenResponse{Error: "no token provided or configured"})
		return
	}

	if err := sc.checkToken(c.Request.Context(), token); err != nil {
		if errors.Is(err, wanikani.ErrInvalidToken) {
			c.JSON(http.StatusOK, ValidateTokenResponse{Error: "invalid or expired token"})
			return
		}
		c.JSON(http.StatusOK, ValidateTokenResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ValidateTokenResponse{Valid: true, Message: "token is valid"})
}

func (sc *SettingsController) checkToken(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, tokenValidationTimeout)
	defer cancel()
	return sc.tokens.ValidateToken(ctx, token)
}
