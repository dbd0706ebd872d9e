package settingsstore

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kanjisync/kanjisync/internal/config"
	"github.com/kanjisync/kanjisync/internal/entities"
)

// Environment variables consulted after the database.
const (
	EnvHydrationEnabled  = "HYDRATION_ENABLED"
	EnvHydrationToken    = "WANIKANI_API_TOKEN"
	EnvHydrationSchedule = "HYDRATION_SCHEDULE"
)

// Last-run status values written by the scheduler.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusStopped = "stopped"
)

// HydrationConfig is the effective hydration configuration.
type HydrationConfig struct {
	Enabled  bool   `json:"enabled"`
	Token    string `json:"-"`
	Schedule string `json:"schedule"`
}

// Ready reports whether the pipeline should be willing to run.
func (c HydrationConfig) Ready() bool {
	return c.Enabled && c.Token != ""
}

// HydrationConfigInfo includes source information for each field
type HydrationConfigInfo struct {
	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"`

	Token       string `json:"token"` // Masked for display
	TokenSource string `json:"token_source"`
	HasToken    bool   `json:"has_token"`

	Schedule            string `json:"schedule"`
	ScheduleSource      string `json:"schedule_source"`
	ScheduleDescription string `json:"schedule_description"`
}

// HydrationStatus is the outcome of the last scheduled or manual run.
type HydrationStatus struct {
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	Status         string     `json:"status,omitempty"`
	Message        string     `json:"message,omitempty"`
	ObjectsFetched int        `json:"objects_fetched,omitempty"`
}

// HydrationUpdate carries a partial settings change; nil fields are untouched.
type HydrationUpdate struct {
	Enabled  *bool
	Token    *string
	Schedule *string
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

// GetHydrationEnabled returns whether hydration is enabled (database > env > default: true)
func (s *SettingsStore) GetHydrationEnabled() bool {
	if v, ok := s.stored(entities.SettingKeyHydrationEnabled); ok {
		return parseBool(v)
	}
	if v := os.Getenv(EnvHydrationEnabled); v != "" {
		return parseBool(v)
	}
	return true
}

func (s *SettingsStore) GetHydrationEnabledSource() string {
	return s.source(entities.SettingKeyHydrationEnabled, EnvHydrationEnabled)
}

func (s *SettingsStore) SetHydrationEnabled(enabled bool) error {
	return s.db.Set(entities.SettingKeyHydrationEnabled, strconv.FormatBool(enabled))
}

// GetHydrationAPIToken returns the API token (database > env > "").
func (s *SettingsStore) GetHydrationAPIToken() string {
	if v, ok := s.storedSecret(entities.SettingKeyHydrationAPIToken); ok {
		return v
	}
	return os.Getenv(EnvHydrationToken)
}

func (s *SettingsStore) GetHydrationAPITokenSource() string {
	if _, ok := s.storedSecret(entities.SettingKeyHydrationAPIToken); ok {
		return SourceDatabase
	}
	return s.source(entities.SettingKeyHydrationAPIToken, EnvHydrationToken)
}

func (s *SettingsStore) HasHydrationAPIToken() bool {
	return s.GetHydrationAPIToken() != ""
}

// SetHydrationAPIToken stores the token, sealed when an encryptor is configured.
func (s *SettingsStore) SetHydrationAPIToken(token string) error {
	sealed, err := s.encryptor.Seal(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt API token: %w", err)
	}
	return s.db.Set(entities.SettingKeyHydrationAPIToken, sealed)
}

// GetHydrationSchedule returns the cron schedule (database > env > default)
func (s *SettingsStore) GetHydrationSchedule() string {
	if v, ok := s.stored(entities.SettingKeyHydrationSchedule); ok {
		return v
	}
	if v := os.Getenv(EnvHydrationSchedule); v != "" {
		return v
	}
	return config.DefaultHydrationSchedule
}

func (s *SettingsStore) GetHydrationScheduleSource() string {
	return s.source(entities.SettingKeyHydrationSchedule, EnvHydrationSchedule)
}

func (s *SettingsStore) SetHydrationSchedule(schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return s.db.Set(entities.SettingKeyHydrationSchedule, schedule)
}

// UpdateHydration validates and writes all given fields in one transaction.
func (s *SettingsStore) UpdateHydration(u HydrationUpdate) error {
	values := make(map[string]string, 3)
	if u.Enabled != nil {
		values[entities.SettingKeyHydrationEnabled] = strconv.FormatBool(*u.Enabled)
	}
	if u.Token != nil {
		sealed, err := s.encryptor.Seal(*u.Token)
		if err != nil {
			return fmt.Errorf("failed to encrypt API token: %w", err)
		}
		values[entities.SettingKeyHydrationAPIToken] = sealed
	}
	if u.Schedule != nil {
		if err := ValidateCronSchedule(*u.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", *u.Schedule, err)
		}
		values[entities.SettingKeyHydrationSchedule] = *u.Schedule
	}
	if len(values) == 0 {
		return nil
	}
	return s.db.SetMany(values)
}

func (s *SettingsStore) GetHydrationConfig() HydrationConfig {
	return HydrationConfig{
		Enabled:  s.GetHydrationEnabled(),
		Token:    s.GetHydrationAPIToken(),
		Schedule: s.GetHydrationSchedule(),
	}
}

// GetHydrationConfigInfo returns the configuration with source information
func (s *SettingsStore) GetHydrationConfigInfo() HydrationConfigInfo {
	token := s.GetHydrationAPIToken()
	schedule := s.GetHydrationSchedule()

	return HydrationConfigInfo{
		Enabled:             s.GetHydrationEnabled(),
		EnabledSource:       s.GetHydrationEnabledSource(),
		Token:               maskToken(token),
		TokenSource:         s.GetHydrationAPITokenSource(),
		HasToken:            token != "",
		Schedule:            schedule,
		ScheduleSource:      s.GetHydrationScheduleSource(),
		ScheduleDescription: GetCronDescription(schedule),
	}
}

func (s *SettingsStore) GetHydrationStatus() HydrationStatus {
	status := HydrationStatus{}

	if v, ok := s.stored(entities.SettingKeyHydrationLastAt); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			status.LastRunAt = &ts
		}
	}
	status.Status, _ = s.stored(entities.SettingKeyHydrationLastStatus)
	status.Message, _ = s.stored(entities.SettingKeyHydrationLastMessage)
	if v, ok := s.stored(entities.SettingKeyHydrationLastObjects); ok {
		if count, err := strconv.Atoi(v); err == nil {
			status.ObjectsFetched = count
		}
	}
	return status
}

func (s *SettingsStore) SetHydrationStatus(status, message string, objects int) error {
	return s.db.SetMany(map[string]string{
		entities.SettingKeyHydrationLastAt:      time.Now().UTC().Format(time.RFC3339),
		entities.SettingKeyHydrationLastStatus:  status,
		entities.SettingKeyHydrationLastMessage: message,
		entities.SettingKeyHydrationLastObjects: strconv.Itoa(objects),
	})
}

// ClearHydrationSettings removes database overrides, reverting to env/default.
func (s *SettingsStore) ClearHydrationSettings() error {
	keys := []string{
		entities.SettingKeyHydrationEnabled,
		entities.SettingKeyHydrationAPIToken,
		entities.SettingKeyHydrationSchedule,
	}
	for _, key := range keys {
		if err := s.db.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *SettingsStore) source(key, env string) string {
	if _, ok := s.stored(key); ok {
		return SourceDatabase
	}
	if os.Getenv(env) != "" {
		return SourceEnvironment
	}
	return SourceDefault
}
