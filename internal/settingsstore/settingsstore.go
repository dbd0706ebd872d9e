// Package settingsstore resolves runtime settings.
//
// Priority: database > environment > default.
package settingsstore

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kanjisync/kanjisync/internal/crypto"
)

// Value sources reported alongside effective settings.
const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

// Backend is the persisted layer, normally settings.Repository.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	SetMany(values map[string]string) error
	Delete(key string) error
}

type SettingsStore struct {
	db        Backend
	encryptor *crypto.Encryptor
}

type Option func(*SettingsStore)

// WithEncryptor seals secrets before they reach the backend.
func WithEncryptor(e *crypto.Encryptor) Option {
	return func(s *SettingsStore) { s.encryptor = e }
}

func New(db Backend, opts ...Option) *SettingsStore {
	s := &SettingsStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// stored returns the database value for key; read errors count as unset.
func (s *SettingsStore) stored(key string) (string, bool) {
	value, ok, err := s.db.Get(key)
	if err != nil || !ok || value == "" {
		return "", false
	}
	return value, true
}

// storedSecret is stored for sealed values. A value that cannot be opened
// counts as unset.
func (s *SettingsStore) storedSecret(key string) (string, bool) {
	value, ok := s.stored(key)
	if !ok {
		return "", false
	}
	plain, err := s.encryptor.Open(value)
	if err != nil || plain == "" {
		return "", false
	}
	return plain, true
}

// maskToken returns a masked version of the token for display
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func ValidateCronSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the schedule fires next after from.
func GetNextRunTime(schedule string, from time.Time) (*time.Time, error) {
	sched, err := scheduleParser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(from)
	return &next, nil
}
