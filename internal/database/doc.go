// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── subjects/        # Hydrated subject records, lookup and search
//	├── cursor/          # The single-row hydration cursor
//	├── runs/            # Hydration run history
//	└── settings/        # Application settings
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./kanjisync.db")
//
//	subjectsRepo := subjects.NewRepository(db.DB)
//	cursorRepo := cursor.NewRepository(db.DB)
//
//	found, err := subjectsRepo.GetByIDs(ctx, []int64{440, 2467})
//
// # Interface Implementations
//
//   - subjects.Repository: implements hydration.SubjectWriter and subjectcache.Store
//   - cursor.Repository: implements hydration.CursorStore
//   - runs.Repository: implements hydration.RunRecorder
//   - settings.Repository: implements settingsstore.Backend
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check in internal/interfaces/checks.go
package database
