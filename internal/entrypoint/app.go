package entrypoint

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kanjisync/kanjisync/internal/config"
	"github.com/kanjisync/kanjisync/internal/crypto"
	"github.com/kanjisync/kanjisync/internal/database"
	"github.com/kanjisync/kanjisync/internal/database/cursor"
	"github.com/kanjisync/kanjisync/internal/database/runs"
	"github.com/kanjisync/kanjisync/internal/database/settings"
	"github.com/kanjisync/kanjisync/internal/database/subjects"
	"github.com/kanjisync/kanjisync/internal/hydration"
	"github.com/kanjisync/kanjisync/internal/logger"
	"github.com/kanjisync/kanjisync/internal/scheduler"
	"github.com/kanjisync/kanjisync/internal/settingsstore"
	"github.com/kanjisync/kanjisync/internal/subjectcache"
	"github.com/kanjisync/kanjisync/internal/wanikani"
)

// App holds the process-wide components shared by the server and CLI commands.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	DB        *database.Database
	Subjects  *subjects.Repository
	Cursors   *cursor.Repository
	Runs      *runs.Repository
	Settings  *settingsstore.SettingsStore
	Cache     *subjectcache.Service
	Pipeline  *hydration.Pipeline
	Scheduler *scheduler.HydrationScheduler
	WaniKani  *wanikani.Client

	closers []func() error
}

// Options tune Build for the calling command.
type Options struct {
	// WithAnalyzer loads the morphological dictionary for sentence lookup.
	WithAnalyzer bool
	// OnProgress receives pipeline progress snapshots.
	OnProgress hydration.ProgressFunc
}

// Build opens the database and wires the subject store, cache and hydration
// pipeline. Call Close when done.
func Build(cfg *config.Config, log *slog.Logger, opts Options) (*App, error) {
	db, err := database.Open(cfg.Database.Path, logger.GormLevel(cfg.Log.Level))
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: log, DB: db}
	app.closers = append(app.closers, db.Close)

	app.Subjects = subjects.NewRepository(db.DB)
	app.Cursors = cursor.NewRepository(db.DB)
	app.Runs = runs.NewRepository(db.DB)
	var settingsOpts []settingsstore.Option
	if key := cfg.Security.TokenEncryptionKey; key != "" {
		enc, err := crypto.NewEncryptorFromBase64(key)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("invalid token encryption key: %w", err)
		}
		settingsOpts = append(settingsOpts, settingsstore.WithEncryptor(enc))
	}
	app.Settings = settingsstore.New(settings.NewRepository(db.DB), settingsOpts...)

	cacheOpts := []subjectcache.Option{subjectcache.WithLogger(log)}
	memo, err := app.buildMemo()
	if err != nil {
		app.Close()
		return nil, err
	}
	cacheOpts = append(cacheOpts, subjectcache.WithMemo(memo))
	if opts.WithAnalyzer {
		analyzer, err := subjectcache.NewAnalyzer()
		if err != nil {
			log.Warn("sentence lookup disabled", "error", err)
		} else {
			cacheOpts = append(cacheOpts, subjectcache.WithAnalyzer(analyzer))
		}
	}
	app.Cache = subjectcache.NewService(app.Subjects, cacheOpts...)

	app.WaniKani = wanikani.NewClient(cfg.WaniKani.BaseURL, cfg.WaniKani.Timeout)
	source := wanikani.NewSource(app.WaniKani, app.Settings, log)

	pipelineOpts := []hydration.Option{
		hydration.WithRunRecorder(app.Runs),
		hydration.WithInvalidator(app.Cache),
		hydration.WithLogger(log.With("component", "hydration")),
	}
	if opts.OnProgress != nil {
		pipelineOpts = append(pipelineOpts, hydration.WithProgressFunc(opts.OnProgress))
	}
	app.Pipeline = hydration.NewPipeline(source, app.Subjects, app.Cursors, pipelineOpts...)
	app.Scheduler = scheduler.NewHydrationScheduler(app.Pipeline, app.Settings, cfg.Tasks.TaskTimeout, log)

	// Runs left "running" by a killed process will resume from the cursor.
	if n, err := app.Runs.MarkInterrupted(context.Background()); err != nil {
		log.Warn("failed to mark interrupted hydration runs", "error", err)
	} else if n > 0 {
		log.Info("marked interrupted hydration runs", "count", n)
	}

	if !app.Settings.HasHydrationAPIToken() {
		log.Warn("no WaniKani API token configured; hydration stays disabled until one is set",
			"env", settingsstore.EnvHydrationToken)
	}

	return app, nil
}

func (a *App) buildMemo() (subjectcache.Memo, error) {
	cfg := a.Config
	if !cfg.Redis.Enabled {
		return subjectcache.NewLocalMemo(cfg.Cache.TTL, cfg.Cache.MaxEntries), nil
	}

	redisCfg := subjectcache.DefaultRedisConfig()
	redisCfg.Addr = cfg.Redis.Addr
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.TTL = cfg.Cache.TTL
	if cfg.Redis.Prefix != "" {
		redisCfg.KeyPrefix = cfg.Redis.Prefix
	}

	memo, err := subjectcache.NewRedisMemo(redisCfg, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect subject cache to redis: %w", err)
	}
	a.closers = append(a.closers, memo.Close)
	a.Logger.Info("subject cache using redis", "addr", redisCfg.Addr)
	return memo, nil
}

// Close stops the scheduler and releases resources in reverse order.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("error during shutdown", "error", err)
		}
	}
	a.closers = nil
}
