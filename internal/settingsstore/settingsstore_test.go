package settingsstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanjisync/kanjisync/internal/database"
	"github.com/kanjisync/kanjisync/internal/database/settings"
)

func setupTestStore(t *testing.T) (*SettingsStore, *settings.Repository) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// isolate from the caller's environment
	t.Setenv(EnvHydrationEnabled, "")
	t.Setenv(EnvHydrationToken, "")
	t.Setenv(EnvHydrationSchedule, "")

	repo := settings.NewRepository(db.DB)
	return New(repo), repo
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", ""},
		{"short", "****"},
		{"12345678", "****"},
		{"abcd1234efgh5678", "abcd****5678"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, maskToken(tt.token))
	}
}

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("0 */6 * * *"))
	assert.NoError(t, ValidateCronSchedule("*/15 * * * *"))
	assert.Error(t, ValidateCronSchedule("invalid"))
	assert.Error(t, ValidateCronSchedule("0 0 0 * * *"))
}

func TestGetCronDescription(t *testing.T) {
	assert.Equal(t, "Every 6 hours", GetCronDescription("0 */6 * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", GetCronDescription("5 4 * * *"))
}

func TestGetNextRunTime(t *testing.T) {
	from := time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)

	next, err := GetNextRunTime("0 */6 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), *next)

	_, err = GetNextRunTime("nope", from)
	assert.Error(t, err)
}
