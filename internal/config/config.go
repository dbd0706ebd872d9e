package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP      HTTP      `validate:"required"`
		Database  Database  `validate:"required"`
		WaniKani  WaniKani  `validate:"required"`
		Hydration Hydration `validate:"required"`
		Tasks     Tasks
		Cache     Cache
		Redis     Redis
		Log       Log `validate:"required"`
		Security  Security
		Global    Global
	}

	HTTP struct {
		Port int32  `validate:"gt=0,lt=65536"`
		Host string `validate:"required"`
		// ReadOnly serves subjects but refuses to trigger runs or change settings.
		ReadOnly bool
	}
	Database struct {
		Path      string `validate:"required"`
		TasksPath string `validate:"required"`
	}
	WaniKani struct {
		BaseURL string        `validate:"required,url"`
		Timeout time.Duration `validate:"gt=0"`
	}
	Hydration struct {
		Enabled      bool
		Schedule     string `validate:"required,cron"` // Cron format: "0 */6 * * *" = every 6 hours
		RunOnStartup bool
	}
	Tasks struct {
		Enabled           bool
		Workers           int `validate:"gte=0"`
		MaxRetries        int `validate:"gte=0"`
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Cache struct {
		TTL        time.Duration `validate:"gte=0"` // 0 keeps entries until invalidated
		MaxEntries int           `validate:"gte=0"`
	}
	Redis struct {
		Enabled  bool
		Addr     string `validate:"required_if=Enabled true"`
		Password string
		DB       int `validate:"gte=0"`
		Prefix   string
	}
	Log struct {
		Level string `validate:"required,oneof=debug info warn error"`
	}
	Security struct {
		// TokenEncryptionKey is a base64 32-byte key; when set the stored API
		// token is encrypted.
		TokenEncryptionKey string `validate:"omitempty,base64"`
	}

	Global struct {
		ShutdownTimeoutInSeconds int `validate:"gte=0"`
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("read_only", false)
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("tasks_database_path", DefaultTasksDatabasePath)
	v.SetDefault("log_level", "info")

	v.SetDefault("wanikani_base_url", DefaultWaniKaniBaseURL)
	v.SetDefault("token_encryption_key", "")
	v.SetDefault("wanikani_timeout", "30s")

	v.SetDefault("hydration_enabled", true)
	v.SetDefault("hydration_schedule", DefaultHydrationSchedule)
	v.SetDefault("hydration_run_on_startup", true)

	// Subject cache defaults
	v.SetDefault("cache_ttl", "10m")
	v.SetDefault("cache_max_entries", 5000)
	v.SetDefault("redis_enabled", false)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_prefix", "kanjisync:")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "30m")
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port:     v.GetInt32("PORT"),
			Host:     v.GetString("HOST"),
			ReadOnly: v.GetBool("READ_ONLY"),
		},
		Database: Database{
			Path:      v.GetString("DATABASE_PATH"),
			TasksPath: v.GetString("TASKS_DATABASE_PATH"),
		},
		WaniKani: WaniKani{
			BaseURL: v.GetString("WANIKANI_BASE_URL"),
			Timeout: v.GetDuration("WANIKANI_TIMEOUT"),
		},
		Hydration: Hydration{
			Enabled:      v.GetBool("HYDRATION_ENABLED"),
			Schedule:     v.GetString("HYDRATION_SCHEDULE"),
			RunOnStartup: v.GetBool("HYDRATION_RUN_ON_STARTUP"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Cache: Cache{
			TTL:        v.GetDuration("CACHE_TTL"),
			MaxEntries: v.GetInt("CACHE_MAX_ENTRIES"),
		},
		Redis: Redis{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Prefix:   v.GetString("REDIS_PREFIX"),
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
		},
		Security: Security{
			TokenEncryptionKey: v.GetString("TOKEN_ENCRYPTION_KEY"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}

// Validate checks the struct tags, including the "cron" tag which parses the
// hydration schedule with the same parser the scheduler uses.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("cron", validateCron); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func validateCron(fl validator.FieldLevel) bool {
	return ParseSchedule(fl.Field().String()) == nil
}

// ParseSchedule validates a standard five-field cron expression.
func ParseSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}
