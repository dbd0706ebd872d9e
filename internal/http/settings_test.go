package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanjisync/kanjisync/internal/settingsstore"
)

type settingsEnvelope struct {
	Message string                    `json:"message"`
	Data    HydrationSettingsResponse `json:"data"`
}

func TestSettingsController_GetDefaults(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/settings/hydration", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[HydrationSettingsResponse](t, w)
	assert.True(t, resp.Config.Enabled)
	assert.Equal(t, settingsstore.SourceDefault, resp.Config.EnabledSource)
	assert.False(t, resp.Config.HasToken)
	assert.Equal(t, "0 */6 * * *", resp.Config.Schedule)
	assert.NotEmpty(t, resp.Presets)
	assert.Nil(t, resp.NextRun)
}

func TestSettingsController_UpdateReschedules(t *testing.T) {
	env := setupTestEnv(t)

	token := validTestToken
	schedule := "*/30 * * * *"
	w := env.do(t, http.MethodPut, "/api/settings/hydration", UpdateHydrationSettingsRequest{
		Token:    &token,
		Schedule: &schedule,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[settingsEnvelope](t, w)
	assert.Equal(t, "abcd****5678", resp.Data.Config.Token)
	assert.Equal(t, settingsstore.SourceDatabase, resp.Data.Config.TokenSource)
	assert.Equal(t, schedule, resp.Data.Config.Schedule)
	assert.NotNil(t, resp.Data.NextRun)

	assert.True(t, env.scheduler.IsRunning())
	assert.True(t, env.pipeline.Enabled())

	disabled := false
	w = env.do(t, http.MethodPut, "/api/settings/hydration", UpdateHydrationSettingsRequest{Enabled: &disabled})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.scheduler.IsRunning())
	assert.False(t, env.pipeline.Enabled())
}

func TestSettingsController_UpdateRejectsBadSchedule(t *testing.T) {
	env := setupTestEnv(t)

	schedule := "every sunday"
	w := env.do(t, http.MethodPut, "/api/settings/hydration", UpdateHydrationSettingsRequest{Schedule: &schedule})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, settingsstore.SourceDefault, env.settings.GetHydrationScheduleSource())

	w = env.do(t, http.MethodPut, "/api/settings/hydration", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsController_Reset(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.settings.SetHydrationAPIToken(validTestToken))
	require.NoError(t, env.scheduler.Reschedule(t.Context()))
	require.True(t, env.scheduler.IsRunning())

	w := env.do(t, http.MethodDelete, "/api/settings/hydration", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[settingsEnvelope](t, w)
	assert.False(t, resp.Data.Config.HasToken)
	assert.False(t, env.scheduler.IsRunning())
}

func TestSettingsController_UpdateChecksToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wantCode int
		wantErr  string
	}{
		{name: "rejected", token: "not-a-real-token", wantCode: http.StatusBadRequest, wantErr: "invalid_token"},
		{name: "remote failure", token: "outage", wantCode: http.StatusBadGateway, wantErr: "token_check_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)

			w := env.do(t, http.MethodPut, "/api/settings/hydration", UpdateHydrationSettingsRequest{Token: &tt.token})
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tt.wantErr, decode[ErrorResponse](t, w).Code)

			assert.Empty(t, env.settings.GetHydrationAPIToken())
			assert.False(t, env.scheduler.IsRunning())
		})
	}
}

func TestSettingsController_ValidateToken(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name      string
		body      any
		wantValid bool
		wantErr   string
	}{
		{name: "valid", body: ValidateTokenRequest{Token: validTestToken}, wantValid: true},
		{name: "invalid", body: ValidateTokenRequest{Token: "nope"}, wantErr: "invalid or expired token"},
		{name: "nothing configured", body: nil, wantErr: "no token provided or configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/settings/hydration/validate", tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			resp := decode[ValidateTokenResponse](t, w)
			assert.Equal(t, tt.wantValid, resp.Valid)
			assert.Equal(t, tt.wantErr, resp.Error)
		})
	}

	t.Run("falls back to stored token", func(t *testing.T) {
		require.NoError(t, env.settings.SetHydrationAPIToken(validTestToken))

		w := env.do(t, http.MethodPost, "/api/settings/hydration/validate", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[ValidateTokenResponse](t, w).Valid)
	})
}
