// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - hydration.SubjectWriter: atomic page upsert (internal/hydration/pipeline.go)
//   - hydration.CursorStore: opaque resume cursor (internal/hydration/pipeline.go)
//   - hydration.RunRecorder: run history (internal/hydration/pipeline.go)
//   - subjectcache.Store: read side of the subject table (internal/subjectcache/service.go)
//   - settingsstore.Backend: key/value settings (internal/settingsstore/settingsstore.go)
//
// ## External Service Interfaces
//
//   - hydration.Source: paged remote subject collection (internal/hydration/pipeline.go)
//   - wanikani.TokenProvider: API token read per page (internal/wanikani/source.go)
//
// ## HTTP Interfaces
//
// The http package declares the narrow interfaces its controllers consume in
// internal/http/stores.go. Tests substitute real sqlite-backed components.
//
// # Adding a New Subject Source
//
// To hydrate from something other than the WaniKani API:
//
//  1. Implement hydration.Source:
//
//     type DumpSource struct { pages [][]subject.Subject }
//
//     func (s *DumpSource) FetchSubjectsPage(ctx context.Context, since *time.Time, cursor string) (*hydration.Page, error)
//
//     var _ hydration.Source = (*DumpSource)(nil)
//
//  2. Pass it to hydration.NewPipeline in entrypoint/app.go
//
// Page cursors are opaque to the pipeline; it stores whatever the source
// returns and hands it back on resume.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
