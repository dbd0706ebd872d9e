package http

// RouterConfig holds the router's dependencies. Optional fields may be nil;
// their endpoints are then not registered.
type RouterConfig struct {
	Version string
	// ReadOnly rejects hydration triggers and settings writes with 403.
	ReadOnly bool

	Database Pinger
	Stats    StatsReader
	Subjects SubjectReader

	Pipeline  ProgressReader
	Scheduler HydrationScheduler
	Cursors   CursorReader
	Runs      RunHistory
	Tasks     TaskQueue
	Settings  HydrationSettings
	Tokens    TokenValidator
}
