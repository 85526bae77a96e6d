package database

import (
	"time"
)

// Media kinds as stored in the cache.
const (
	KindMovie  = "movie"
	KindSeries = "series"
)

// Request status codes, normalized from the request source.
const (
	StatusPending            = "pending"
	StatusApproved           = "approved"
	StatusPartiallyAvailable = "partially_available"
	StatusAvailable          = "available"
	StatusDeclined           = "declined"
)

// Season availability states inside a request's season breakdown.
const (
	SeasonMissing    = "missing"
	SeasonAvailable  = "available"
	SeasonFuture     = "future"
	SeasonInProgress = "in_progress"
)

// Whitelist entry kinds.
const (
	WhitelistContentName     = "content_name"
	WhitelistFrenchAudioOnly = "french_audio_only"
	WhitelistFrenchSubsOnly  = "french_subs_only"
	WhitelistLanguageExempt  = "language_exempt"
	WhitelistEpisode         = "episode"
)

// Sync outcomes recorded in the per-user status row.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// MediaItem is one cached library entry, scoped to a single user.
// (user_id, external_id) is unique. Rows are replaced wholesale by each
// sync cycle: items absent from the fresh snapshot are pruned.
type MediaItem struct {
	ID             string // Database UUID
	UserID         string
	ExternalID     string // Library-side item id
	Name           string
	Kind           string // movie or series
	ProductionYear int
	DateCreated    time.Time // When the item entered the library
	LastPlayedAt   *time.Time
	Played         bool
	PlayCount      int
	SizeBytes      int64
	FilePath       string
	Payload        ItemPayload // Normalized source payload for derived lookups
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ItemPayload carries the normalized per-file data the analysis engine
// needs beyond the flat columns. Stored as JSON in the payload column.
type ItemPayload struct {
	AudioLanguages    []string          `json:"audio_languages,omitempty"`
	SubtitleLanguages []string          `json:"subtitle_languages,omitempty"`
	ProviderIDs       map[string]string `json:"provider_ids,omitempty"`
	SeasonSizes       map[int]int64     `json:"season_sizes,omitempty"`
	Episodes          []EpisodeInfo     `json:"episodes,omitempty"`
}

// EpisodeInfo is the per-episode slice of a series payload, used by the
// language-completeness check and episode-level exemptions.
type EpisodeInfo struct {
	Season            int      `json:"season"`
	Episode           int      `json:"episode"`
	AudioLanguages    []string `json:"audio_languages,omitempty"`
	SubtitleLanguages []string `json:"subtitle_languages,omitempty"`
}

// Request is one cached acquisition request, scoped to a single user.
// (user_id, external_id) is unique; (user_id, provider_id, media_kind) is
// indexed for catalog lookups.
type Request struct {
	ID          string // Database UUID
	UserID      string
	ExternalID  string // Request-source request id
	Title       string
	MediaKind   string // movie or tv
	Status      string
	ProviderID  int    // Catalog id (TMDB)
	RequestedBy string // Requester display name
	RequestedAt time.Time
	ReleaseDate *time.Time
	AvailableAt *time.Time // When the request became fully available
	Seasons     []SeasonAvailability
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SeasonAvailability is the per-season breakdown of a tv request.
type SeasonAvailability struct {
	Season        int    `json:"season"`
	Status        string `json:"status"`
	AiredEpisodes int    `json:"aired_episodes"`
	TotalEpisodes int    `json:"total_episodes"`
}

// WhitelistEntry suppresses analysis findings for a user. Name kinds match
// on the lower-cased name; the episode kind matches on
// (show, season, episode). Entries past their expiry are excluded from
// lookups without being deleted.
type WhitelistEntry struct {
	ID        string
	UserID    string
	Kind      string
	Name      string
	ShowName  string
	Season    int
	Episode   int
	AddedAt   time.Time
	ExpiresAt *time.Time
}

// UserThresholds are the per-user analysis thresholds. A missing row means
// the process-wide defaults apply.
type UserThresholds struct {
	UserID                string
	OldContentMonths      int
	MinAgeMonths          int
	LargeMovieSizeGB      int
	LargeSeasonSizeGB     int
	RecentlyAvailableDays int
	UpdatedAt             time.Time
}

// SyncStatus is the per-user singleton sync record, overwritten each cycle.
type SyncStatus struct {
	UserID         string
	LastSyncAt     *time.Time
	Outcome        string
	ItemsSynced    int
	RequestsSynced int
	LastError      string
	UpdatedAt      time.Time
}
