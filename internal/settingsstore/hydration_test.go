package settingsstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanjisync/kanjisync/internal/config"
	"github.com/kanjisync/kanjisync/internal/crypto"
	"github.com/kanjisync/kanjisync/internal/entities"
)

func TestHydrationEnabled(t *testing.T) {
	store, repo := setupTestStore(t)

	// Default is enabled
	assert.True(t, store.GetHydrationEnabled())
	assert.Equal(t, SourceDefault, store.GetHydrationEnabledSource())

	require.NoError(t, store.SetHydrationEnabled(false))
	assert.False(t, store.GetHydrationEnabled())
	assert.Equal(t, SourceDatabase, store.GetHydrationEnabledSource())

	require.NoError(t, repo.Delete(entities.SettingKeyHydrationEnabled))
	assert.True(t, store.GetHydrationEnabled())
}

func TestHydrationEnabledWithEnv(t *testing.T) {
	store, _ := setupTestStore(t)
	t.Setenv(EnvHydrationEnabled, "false")

	assert.False(t, store.GetHydrationEnabled())
	assert.Equal(t, SourceEnvironment, store.GetHydrationEnabledSource())

	// Database overrides env
	require.NoError(t, store.SetHydrationEnabled(true))
	assert.True(t, store.GetHydrationEnabled())
	assert.Equal(t, SourceDatabase, store.GetHydrationEnabledSource())
}

func TestHydrationAPIToken(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.Empty(t, store.GetHydrationAPIToken())
	assert.False(t, store.HasHydrationAPIToken())
	assert.Equal(t, SourceDefault, store.GetHydrationAPITokenSource())

	t.Setenv(EnvHydrationToken, "env-token-123456")
	assert.Equal(t, "env-token-123456", store.GetHydrationAPIToken())
	assert.Equal(t, SourceEnvironment, store.GetHydrationAPITokenSource())

	require.NoError(t, store.SetHydrationAPIToken("db-token-abcdefgh"))
	assert.Equal(t, "db-token-abcdefgh", store.GetHydrationAPIToken())
	assert.Equal(t, SourceDatabase, store.GetHydrationAPITokenSource())
}

func TestHydrationSchedule(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.Equal(t, config.DefaultHydrationSchedule, store.GetHydrationSchedule())

	t.Setenv(EnvHydrationSchedule, "0 * * * *")
	assert.Equal(t, "0 * * * *", store.GetHydrationSchedule())
	assert.Equal(t, SourceEnvironment, store.GetHydrationScheduleSource())

	require.NoError(t, store.SetHydrationSchedule("*/30 * * * *"))
	assert.Equal(t, "*/30 * * * *", store.GetHydrationSchedule())

	err := store.SetHydrationSchedule("every day")
	assert.Error(t, err)
	assert.Equal(t, "*/30 * * * *", store.GetHydrationSchedule())
}

func TestHydrationConfigInfo(t *testing.T) {
	store, _ := setupTestStore(t)
	require.NoError(t, store.SetHydrationAPIToken("abcd1234efgh5678"))

	info := store.GetHydrationConfigInfo()
	assert.True(t, info.Enabled)
	assert.Equal(t, "abcd****5678", info.Token)
	assert.True(t, info.HasToken)
	assert.Equal(t, SourceDatabase, info.TokenSource)
	assert.Equal(t, "Every 6 hours", info.ScheduleDescription)

	cfg := store.GetHydrationConfig()
	assert.Equal(t, "abcd1234efgh5678", cfg.Token)
	assert.True(t, cfg.Ready())
}

func TestHydrationConfig_ReadyNeedsToken(t *testing.T) {
	store, _ := setupTestStore(t)
	assert.False(t, store.GetHydrationConfig().Ready())
}

func TestUpdateHydration(t *testing.T) {
	store, _ := setupTestStore(t)

	disabled := false
	token := "new-token-12345678"
	require.NoError(t, store.UpdateHydration(HydrationUpdate{Enabled: &disabled, Token: &token}))
	assert.False(t, store.GetHydrationEnabled())
	assert.Equal(t, token, store.GetHydrationAPIToken())
	assert.Equal(t, SourceDefault, store.GetHydrationScheduleSource())

	bad := "whenever"
	enabled := true
	err := store.UpdateHydration(HydrationUpdate{Enabled: &enabled, Schedule: &bad})
	require.Error(t, err)
	assert.False(t, store.GetHydrationEnabled(), "nothing is written when validation fails")

	assert.NoError(t, store.UpdateHydration(HydrationUpdate{}))
}

func TestHydrationStatus(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.Equal(t, HydrationStatus{}, store.GetHydrationStatus())

	require.NoError(t, store.SetHydrationStatus(StatusSuccess, "3 pages", 1200))
	status := store.GetHydrationStatus()
	require.NotNil(t, status.LastRunAt)
	assert.Equal(t, StatusSuccess, status.Status)
	assert.Equal(t, "3 pages", status.Message)
	assert.Equal(t, 1200, status.ObjectsFetched)
}

func TestClearHydrationSettings(t *testing.T) {
	store, _ := setupTestStore(t)
	require.NoError(t, store.SetHydrationEnabled(false))
	require.NoError(t, store.SetHydrationAPIToken("token-12345678"))

	require.NoError(t, store.ClearHydrationSettings())
	assert.True(t, store.GetHydrationEnabled())
	assert.Empty(t, store.GetHydrationAPIToken())

	// clearing twice is fine
	require.NoError(t, store.ClearHydrationSettings())
}

func TestHydrationAPIToken_Encrypted(t *testing.T) {
	_, repo := setupTestStore(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	enc, err := crypto.NewEncryptorFromBase64(key)
	require.NoError(t, err)
	store := New(repo, WithEncryptor(enc))

	require.NoError(t, store.SetHydrationAPIToken("wk-secret-token"))

	raw, ok, err := repo.Get(entities.SettingKeyHydrationAPIToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, crypto.IsSealed(raw))
	assert.NotContains(t, raw, "wk-secret-token")

	assert.Equal(t, "wk-secret-token", store.GetHydrationAPIToken())
	assert.Equal(t, SourceDatabase, store.GetHydrationAPITokenSource())

	token := "wk-updated-token"
	require.NoError(t, store.UpdateHydration(HydrationUpdate{Token: &token}))
	assert.Equal(t, token, store.GetHydrationAPIToken())
}

func TestHydrationAPIToken_SealedWithoutKeyFallsBackToEnv(t *testing.T) {
	_, repo := setupTestStore(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	enc, err := crypto.NewEncryptorFromBase64(key)
	require.NoError(t, err)
	require.NoError(t, New(repo, WithEncryptor(enc)).SetHydrationAPIToken("wk-secret-token"))

	t.Setenv(EnvHydrationToken, "env-token")
	plain := New(repo)
	assert.Equal(t, "env-token", plain.GetHydrationAPIToken())
	assert.Equal(t, SourceEnvironment, plain.GetHydrationAPITokenSource())
}

func TestHydrationAPIToken_PlaintextReadWithKey(t *testing.T) {
	_, repo := setupTestStore(t)
	require.NoError(t, New(repo).SetHydrationAPIToken("legacy-token"))

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	enc, err := crypto.NewEncryptorFromBase64(key)
	require.NoError(t, err)
	assert.Equal(t, "legacy-token", New(repo, WithEncryptor(enc)).GetHydrationAPIToken())
}
