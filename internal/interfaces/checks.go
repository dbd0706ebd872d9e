package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/kanjisync/kanjisync/internal/database"
	"github.com/kanjisync/kanjisync/internal/database/cursor"
	"github.com/kanjisync/kanjisync/internal/database/runs"
	"github.com/kanjisync/kanjisync/internal/database/settings"
	"github.com/kanjisync/kanjisync/internal/database/subjects"
	"github.com/kanjisync/kanjisync/internal/http"
	"github.com/kanjisync/kanjisync/internal/hydration"
	"github.com/kanjisync/kanjisync/internal/scheduler"
	"github.com/kanjisync/kanjisync/internal/settingsstore"
	"github.com/kanjisync/kanjisync/internal/subjectcache"
	"github.com/kanjisync/kanjisync/internal/tasks"
	"github.com/kanjisync/kanjisync/internal/wanikani"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ hydration.SubjectWriter = (*subjects.Repository)(nil)
var _ hydration.CursorStore = (*cursor.Repository)(nil)
var _ hydration.RunRecorder = (*runs.Repository)(nil)
var _ subjectcache.Store = (*subjects.Repository)(nil)
var _ settingsstore.Backend = (*settings.Repository)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ hydration.Source = (*wanikani.Source)(nil)
var _ wanikani.TokenProvider = (*settingsstore.SettingsStore)(nil)

// =============================================================================
// Hydration
// =============================================================================

var _ hydration.Invalidator = (*subjectcache.Service)(nil)
var _ scheduler.Runner = (*hydration.Pipeline)(nil)
var _ scheduler.Settings = (*settingsstore.SettingsStore)(nil)
var _ tasks.Hydrator = (*scheduler.HydrationScheduler)(nil)

// =============================================================================
// HTTP
// =============================================================================

var _ http.SubjectReader = (*subjectcache.Service)(nil)
var _ http.StatsReader = (*subjects.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ http.ProgressReader = (*hydration.Pipeline)(nil)
var _ http.HydrationScheduler = (*scheduler.HydrationScheduler)(nil)
var _ http.CursorReader = (*cursor.Repository)(nil)
var _ http.RunHistory = (*runs.Repository)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.HydrationSettings = (*settingsstore.SettingsStore)(nil)
var _ http.TokenValidator = (*wanikani.Client)(nil)
