package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kanjisync/kanjisync/internal/config"
	http_controllers "github.com/kanjisync/kanjisync/internal/http"
	"github.com/kanjisync/kanjisync/internal/hydration"
	"github.com/kanjisync/kanjisync/internal/logger"
	"github.com/kanjisync/kanjisync/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, log *slog.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no run outlives the database
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}

	log.Info("server exiting")
}

func Run(cfg *config.Config, version string) {
	log := logger.Setup(cfg.Log.Level)
	log.Info("starting kanjisync", "version", version)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := Build(cfg, log, Options{WithAnalyzer: true})
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskCfg := tasks.ConfigFrom(cfg.Tasks)
		taskClient, err = tasks.NewClient(cfg.Database.TasksPath, taskCfg, log)
		if err != nil {
			log.Error("failed to initialize task queue", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Warn("error closing task client", "error", err)
			}
		}()

		taskClient.Register(tasks.NewHydrateSubjectsQueue(app.Scheduler, taskCfg, log))
		go taskClient.Start(bgCtx)
	}

	if cfg.Hydration.Enabled {
		if err := app.Scheduler.Start(bgCtx); err != nil {
			log.Error("failed to start hydration scheduler", "error", err)
		}
	} else {
		log.Info("scheduled hydration disabled by configuration")
		app.Pipeline.SetEnabled(app.Settings.GetHydrationConfig().Ready())
	}

	if cfg.Hydration.RunOnStartup {
		go func() {
			if _, err := app.Scheduler.RunNow(bgCtx, hydration.TriggerStartup); err != nil {
				log.Warn("startup hydration failed", "error", err)
			}
		}()
	}

	routerCfg := http_controllers.RouterConfig{
		Version:   version,
		ReadOnly:  cfg.HTTP.ReadOnly,
		Database:  app.DB,
		Stats:     app.Subjects,
		Subjects:  app.Cache,
		Pipeline:  app.Pipeline,
		Scheduler: app.Scheduler,
		Cursors:   app.Cursors,
		Runs:      app.Runs,
		Settings:  app.Settings,
		Tokens:    app.WaniKani,
	}
	if taskClient != nil {
		routerCfg.Tasks = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		// Disabling stops an active run at its next page boundary
		app.Pipeline.SetEnabled(false)
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		bgCancel()
		app.Scheduler.Stop()
	}

	Serve(router, cfg, log, onShutdown)
}
