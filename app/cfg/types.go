package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	UsersDir          string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	SyncInterval      int
	APIAccessKey      string

	// Default analysis thresholds, overridable per user
	OldContentMonths      int
	MinAgeMonths          int
	LargeMovieSizeGB      int
	LargeSeasonSizeGB     int
	RecentlyAvailableDays int

	// Request analysis toggles
	FilterFutureReleases      bool
	FilterRecentReleases      bool
	RecentReleaseMonthsCutoff int

	// Notification sink
	NotifyWebhookURL string

	// Rate limiting for sync trigger endpoints
	RateLimitMax           int
	RateLimitWindowSeconds int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool

	// Log file rotation (disabled when LogFile is empty)
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	Version string
}
