package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/mediajanitor.db" description:"Path to the sqlite database file"`

	// Application configuration
	UsersDir          string `long:"users-dir" env:"USERS_DIR" default:"./users" description:"Directory containing per-user source configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for sync processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler tick interval in seconds"`
	SyncInterval      int    `long:"sync-interval" env:"SYNC_INTERVAL" default:"21600" description:"Seconds between full syncs of a user"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Default analysis thresholds, overridable per user
	OldContentMonths      int `long:"old-content-months" env:"OLD_CONTENT_MONTHS" default:"12" description:"Age in months after which unwatched content is flagged"`
	MinAgeMonths          int `long:"min-age-months" env:"MIN_AGE_MONTHS" default:"3" description:"Grace period in months before content can be flagged as old"`
	LargeMovieSizeGB      int `long:"large-movie-size-gb" env:"LARGE_MOVIE_SIZE_GB" default:"13" description:"Movie size in GiB above which a movie is flagged as large"`
	LargeSeasonSizeGB     int `long:"large-season-size-gb" env:"LARGE_SEASON_SIZE_GB" default:"25" description:"Season size in GiB above which a series is flagged as large"`
	RecentlyAvailableDays int `long:"recently-available-days" env:"RECENTLY_AVAILABLE_DAYS" default:"7" description:"Trailing window in days for recently available detection"`

	// Request analysis toggles
	FilterFutureReleases      bool `long:"filter-future-releases" env:"FILTER_FUTURE_RELEASES" description:"Exclude unreleased titles from the unavailable request report"`
	FilterRecentReleases      bool `long:"filter-recent-releases" env:"FILTER_RECENT_RELEASES" description:"Exclude recently released titles from the unavailable request report"`
	RecentReleaseMonthsCutoff int  `long:"recent-release-months-cutoff" env:"RECENT_RELEASE_MONTHS_CUTOFF" default:"2" description:"Months since release below which a title counts as recent"`

	// Notification sink
	NotifyWebhookURL string `long:"notify-webhook-url" env:"NOTIFY_WEBHOOK_URL" description:"Webhook URL for sync failure notifications (optional)"`

	// Rate limiting
	RateLimitMax           int `long:"rate-limit-max" env:"RATE_LIMIT_MAX" default:"5" description:"Maximum sync triggers per window per user"`
	RateLimitWindowSeconds int `long:"rate-limit-window" env:"RATE_LIMIT_WINDOW" default:"60" description:"Rate limit window in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"MediaJanitor/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Paris)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	// Log file rotation
	LogFile       string `long:"log-file" env:"LOG_FILE" description:"Log file path (stdout only when empty)"`
	LogMaxSizeMB  int    `long:"log-max-size" env:"LOG_MAX_SIZE" default:"20" description:"Maximum log file size in MB before rotation"`
	LogMaxBackups int    `long:"log-max-backups" env:"LOG_MAX_BACKUPS" default:"3" description:"Number of rotated log files to keep"`
	LogMaxAgeDays int    `long:"log-max-age" env:"LOG_MAX_AGE" default:"14" description:"Maximum age of rotated log files in days"`
}

// Load parses configuration from command-line flags and environment
// variables. It returns (nil, nil) when help was requested. The returned
// struct is the single source of configuration and is injected into every
// component that needs it; there is no package-level accessor.
func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:                    raw.DBPath,
		UsersDir:                  raw.UsersDir,
		Port:                      raw.Port,
		WorkerCount:               raw.WorkerCount,
		SchedulerInterval:         raw.SchedulerInterval,
		SyncInterval:              raw.SyncInterval,
		APIAccessKey:              raw.APIAccessKey,
		OldContentMonths:          raw.OldContentMonths,
		MinAgeMonths:              raw.MinAgeMonths,
		LargeMovieSizeGB:          raw.LargeMovieSizeGB,
		LargeSeasonSizeGB:         raw.LargeSeasonSizeGB,
		RecentlyAvailableDays:     raw.RecentlyAvailableDays,
		FilterFutureReleases:      raw.FilterFutureReleases,
		FilterRecentReleases:      raw.FilterRecentReleases,
		RecentReleaseMonthsCutoff: raw.RecentReleaseMonthsCutoff,
		NotifyWebhookURL:          raw.NotifyWebhookURL,
		RateLimitMax:              raw.RateLimitMax,
		RateLimitWindowSeconds:    raw.RateLimitWindowSeconds,
		UserAgent:                 raw.UserAgent,
		Timezone:                  raw.Timezone,
		Debug:                     raw.Debug,
		LogFile:                   raw.LogFile,
		LogMaxSizeMB:              raw.LogMaxSizeMB,
		LogMaxBackups:             raw.LogMaxBackups,
		LogMaxAgeDays:             raw.LogMaxAgeDays,
		Version:                   GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.OldContentMonths < 1 || cfg.OldContentMonths > 120 {
		return fmt.Errorf("old-content-months must be between 1 and 120, got %d", cfg.OldContentMonths)
	}
	if cfg.MinAgeMonths < 1 || cfg.MinAgeMonths > 24 {
		return fmt.Errorf("min-age-months must be between 1 and 24, got %d", cfg.MinAgeMonths)
	}
	if cfg.LargeMovieSizeGB < 1 || cfg.LargeMovieSizeGB > 500 {
		return fmt.Errorf("large-movie-size-gb must be between 1 and 500, got %d", cfg.LargeMovieSizeGB)
	}
	if cfg.LargeSeasonSizeGB < 1 || cfg.LargeSeasonSizeGB > 500 {
		return fmt.Errorf("large-season-size-gb must be between 1 and 500, got %d", cfg.LargeSeasonSizeGB)
	}
	if cfg.RecentlyAvailableDays < 1 || cfg.RecentlyAvailableDays > 90 {
		return fmt.Errorf("recently-available-days must be between 1 and 90, got %d", cfg.RecentlyAvailableDays)
	}
	if cfg.WorkerCount < 1 {
		return fmt.Errorf("worker-count must be positive, got %d", cfg.WorkerCount)
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
