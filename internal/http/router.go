package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(ReadOnlyMiddleware(cfg.ReadOnly))

	health := NewHealthController(cfg.Database, cfg.Stats, cfg.Pipeline, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	if cfg.Subjects != nil {
		subjectsController := NewSubjectsController(cfg.Subjects)
		api.GET("/subjects", subjectsController.GetByIDs)
		api.GET("/subjects/search", subjectsController.Search)
		api.POST("/subjects/lookup", subjectsController.Lookup)
		api.GET("/subjects/:id", subjectsController.GetSubject)
		api.GET("/subjects/:id/components", subjectsController.GetComponents)
		api.GET("/subjects/:id/amalgamations", subjectsController.GetAmalgamations)
		api.GET("/subjects/:id/answers", subjectsController.GetAnswers)
		api.POST("/subjects/:id/grade", subjectsController.Grade)
	}

	if cfg.Pipeline != nil && cfg.Scheduler != nil && cfg.Cursors != nil && cfg.Runs != nil {
		hydrationController := NewHydrationController(cfg.Pipeline, cfg.Scheduler, cfg.Cursors, cfg.Runs, cfg.Tasks)
		api.POST("/hydration/run", hydrationController.Run)
		api.GET("/hydration/status", hydrationController.Status)
		api.GET("/hydration/runs", hydrationController.ListRuns)
		if cfg.Tasks != nil {
			api.GET("/tasks/:id", hydrationController.TaskStatus)
		}
	}

	if cfg.Settings != nil {
		settingsController := NewSettingsController(cfg.Settings, cfg.Scheduler, cfg.Tokens)
		api.GET("/settings/hydration", settingsController.GetHydrationSettings)
		api.PUT("/settings/hydration", settingsController.UpdateHydrationSettings)
		api.DELETE("/settings/hydration", settingsController.ResetHydrationSettings)
		if cfg.Tokens != nil {
			api.POST("/settings/hydration/validate", settingsController.ValidateToken)
		}
	}

	return router
}
