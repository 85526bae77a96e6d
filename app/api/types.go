package api

import (
	"time"

	"github.com/JimmyDore/mediajanitor-sub001/app/analysis"
	"github.com/JimmyDore/mediajanitor-sub001/app/database"
	"github.com/JimmyDore/mediajanitor-sub001/app/sync"
	"github.com/JimmyDore/mediajanitor-sub001/app/users"
)

// Handler carries the dependencies of the HTTP handlers. Everything is
// injected; handlers hold no process-wide state of their own.
type Handler struct {
	configCache    *users.ConfigCache
	mediaRepo      database.MediaRepository
	requestRepo    database.RequestRepository
	whitelistRepo  database.WhitelistRepository
	thresholdsRepo database.ThresholdsRepository
	syncRepo       database.SyncStatusRepository
	orchestrator   *sync.Orchestrator
	scheduler      sync.SchedulerInterface
	library        sync.LibrarySource
	requests       sync.RequestSource
	defaults       analysis.Thresholds
	requestOpts    analysis.RequestOptions
	syncLimiter    *RateLimiter
	version        string
}

// HandlerOptions groups the process configuration the handlers need.
type HandlerOptions struct {
	Defaults    analysis.Thresholds
	RequestOpts analysis.RequestOptions
	SyncLimiter *RateLimiter
	Version     string
}

func NewHandler(configCache *users.ConfigCache, mediaRepo database.MediaRepository,
	requestRepo database.RequestRepository, whitelistRepo database.WhitelistRepository,
	thresholdsRepo database.ThresholdsRepository, syncRepo database.SyncStatusRepository,
	orchestrator *sync.Orchestrator, scheduler sync.SchedulerInterface,
	library sync.LibrarySource, requests sync.RequestSource, opts HandlerOptions) *Handler {
	return &Handler{
		configCache:    configCache,
		mediaRepo:      mediaRepo,
		requestRepo:    requestRepo,
		whitelistRepo:  whitelistRepo,
		thresholdsRepo: thresholdsRepo,
		syncRepo:       syncRepo,
		orchestrator:   orchestrator,
		scheduler:      scheduler,
		library:        library,
		requests:       requests,
		defaults:       opts.Defaults,
		requestOpts:    opts.RequestOpts,
		syncLimiter:    opts.SyncLimiter,
		version:        opts.Version,
	}
}

// Response views. Repository models carry no json tags, so the API layer
// maps them into explicit wire shapes.

type itemView struct {
	ID             string     `json:"id"`
	ExternalID     string     `json:"external_id"`
	Name           string     `json:"name"`
	Kind           string     `json:"kind"`
	ProductionYear int        `json:"production_year,omitempty"`
	DateCreated    time.Time  `json:"date_created"`
	LastPlayedAt   *time.Time `json:"last_played_at,omitempty"`
	Played         bool       `json:"played"`
	PlayCount      int        `json:"play_count"`
	SizeBytes      int64      `json:"size_bytes"`
	FilePath       string     `json:"file_path,omitempty"`
}

type requestView struct {
	ID          string                        `json:"id"`
	ExternalID  string                        `json:"external_id"`
	Title       string                        `json:"title"`
	MediaKind   string                        `json:"media_kind"`
	Status      string                        `json:"status"`
	RequestedBy string                        `json:"requested_by,omitempty"`
	RequestedAt time.Time                     `json:"requested_at"`
	ReleaseDate *time.Time                    `json:"release_date,omitempty"`
	AvailableAt *time.Time                    `json:"available_at,omitempty"`
	Seasons     []database.SeasonAvailability `json:"seasons,omitempty"`
}

type whitelistEntryView struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Name      string     `json:"name"`
	ShowName  string     `json:"show_name,omitempty"`
	Season    int        `json:"season,omitempty"`
	Episode   int        `json:"episode,omitempty"`
	AddedAt   time.Time  `json:"added_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type thresholdsView struct {
	OldContentMonths      int `json:"old_content_months"`
	MinAgeMonths          int `json:"min_age_months"`
	LargeMovieSizeGB      int `json:"large_movie_size_gb"`
	LargeSeasonSizeGB     int `json:"large_season_size_gb"`
	RecentlyAvailableDays int `json:"recently_available_days"`
}

type addWhitelistRequest struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	ShowName string `json:"show_name"`
	Season   int    `json:"season"`
	Episode  int    `json:"episode"`
	TTLDays  int    `json:"ttl_days"`
}

func toItemView(item database.MediaItem) itemView {
	return itemView{
		ID:             item.ID,
		ExternalID:     item.ExternalID,
		Name:           item.Name,
		Kind:           item.Kind,
		ProductionYear: item.ProductionYear,
		DateCreated:    item.DateCreated,
		LastPlayedAt:   item.LastPlayedAt,
		Played:         item.Played,
		PlayCount:      item.PlayCount,
		SizeBytes:      item.SizeBytes,
		FilePath:       item.FilePath,
	}
}

func toRequestView(req database.Request) requestView {
	return requestView{
		ID:          req.ID,
		ExternalID:  req.ExternalID,
		Title:       req.Title,
		MediaKind:   req.MediaKind,
		Status:      req.Status,
		RequestedBy: req.RequestedBy,
		RequestedAt: req.RequestedAt,
		ReleaseDate: req.ReleaseDate,
		AvailableAt: req.AvailableAt,
		Seasons:     req.Seasons,
	}
}

func toItemViews(items []database.MediaItem) []itemView {
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, toItemView(item))
	}
	return views
}

func toRequestViews(requests []database.Request) []requestView {
	views := make([]requestView, 0, len(requests))
	for _, req := range requests {
		views = append(views, toRequestView(req))
	}
	return views
}

func toWhitelistViews(entries []database.WhitelistEntry) []whitelistEntryView {
	views := make([]whitelistEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, whitelistEntryView{
			ID:        e.ID,
			Kind:      e.Kind,
			Name:      e.Name,
			ShowName:  e.ShowName,
			Season:    e.Season,
			Episode:   e.Episode,
			AddedAt:   e.AddedAt,
			ExpiresAt: e.ExpiresAt,
		})
	}
	return views
}
