package config

const (
	// DefaultDatabasePath is the default path for the subject mirror database
	DefaultDatabasePath = "./kanjisync.db"

	// DefaultTasksDatabasePath is the default path for the backlite task queue database
	DefaultTasksDatabasePath = "./kanjisync-tasks.db"

	// DefaultHydrationSchedule runs hydration every 6 hours
	DefaultHydrationSchedule = "0 */6 * * *"

	// DefaultWaniKaniBaseURL is the public API root
	DefaultWaniKaniBaseURL = "https://api.wanikani.com/v2"
)
