package jellyseerr

import (
	"sort"
	"strconv"
	"time"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

// normalizeRequest maps one raw request to the cache shape. Catalog
// details are applied separately by applyMovieDetails / applyTVDetails.
func normalizeRequest(req apiRequest) database.Request {
	normalized := database.Request{
		ExternalID: strconv.Itoa(req.ID),
		MediaKind:  database.KindMovie,
		Status:     normalizeStatus(req),
		ProviderID: req.Media.TmdbID,
	}

	if req.Media.MediaType == "tv" {
		normalized.MediaKind = "tv"
	}

	if req.CreatedAt != nil {
		normalized.RequestedAt = req.CreatedAt.UTC()
	}

	if name := requesterName(req.RequestedBy); name != "" {
		normalized.RequestedBy = name
	}

	if normalized.Status == database.StatusAvailable && req.Media.MediaAddedAt != nil {
		t := req.Media.MediaAddedAt.UTC()
		normalized.AvailableAt = &t
	}

	return normalized
}

// normalizeStatus folds the request-level and media-level status codes
// into the cache enum. A declined request is declined regardless of media
// state; otherwise media availability wins over approval state.
func normalizeStatus(req apiRequest) string {
	if req.Status == requestStatusDeclined {
		return database.StatusDeclined
	}

	switch req.Media.Status {
	case mediaStatusAvailable:
		return database.StatusAvailable
	case mediaStatusPartiallyAvailable:
		return database.StatusPartiallyAvailable
	case mediaStatusProcessing:
		return database.StatusApproved
	}

	if req.Status == requestStatusApproved {
		return database.StatusApproved
	}
	return database.StatusPending
}

func requesterName(r apiRequester) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

func applyMovieDetails(normalized *database.Request, details *movieDetails) {
	if details.Title != "" {
		normalized.Title = details.Title
	}
	normalized.ReleaseDate = parseAirDate(details.ReleaseDate)
}

// applyTVDetails attaches the title, first-air date and the per-season
// availability breakdown. Aired episode counts are derived from the
// catalog's last-aired episode marker: seasons before it are fully aired,
// the season containing it has aired up to its episode number, and later
// seasons have aired nothing.
func applyTVDetails(normalized *database.Request, req apiRequest, details *tvDetails, now time.Time) {
	if details.Name != "" {
		normalized.Title = details.Name
	}
	normalized.ReleaseDate = parseAirDate(details.FirstAirDate)

	seasonStatus := make(map[int]int, len(req.Seasons))
	requested := make(map[int]bool, len(req.Seasons))
	for _, s := range req.Seasons {
		seasonStatus[s.SeasonNumber] = s.Status
		requested[s.SeasonNumber] = true
	}

	var breakdown []database.SeasonAvailability
	for _, season := range details.Seasons {
		if season.SeasonNumber == 0 {
			continue // specials are not tracked
		}
		if len(requested) > 0 && !requested[season.SeasonNumber] {
			continue
		}

		aired := airedEpisodes(season, details.LastEpisodeToAir)
		sa := database.SeasonAvailability{
			Season:        season.SeasonNumber,
			AiredEpisodes: aired,
			TotalEpisodes: season.EpisodeCount,
			Status:        seasonState(season, seasonStatus[season.SeasonNumber], aired, now),
		}
		breakdown = append(breakdown, sa)
	}

	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].Season < breakdown[j].Season })
	normalized.Seasons = breakdown
}

func airedEpisodes(season tvDetailsSeason, last *episodeRef) int {
	if last == nil {
		return 0
	}
	switch {
	case season.SeasonNumber < last.SeasonNumber:
		return season.EpisodeCount
	case season.SeasonNumber == last.SeasonNumber:
		return last.EpisodeNumber
	default:
		return 0
	}
}

// seasonState classifies one season. A season is in progress when it has
// at least one aired episode and fewer aired than declared, which
// distinguishes "actively airing" from "not yet started".
func seasonState(season tvDetailsSeason, mediaStatus, aired int, now time.Time) string {
	if aired > 0 && season.EpisodeCount > aired {
		return database.SeasonInProgress
	}

	if aired == 0 {
		if airDate := parseAirDate(season.AirDate); airDate == nil || airDate.After(now) {
			return database.SeasonFuture
		}
	}

	if mediaStatus == mediaStatusAvailable {
		return database.SeasonAvailable
	}
	return database.SeasonMissing
}

func parseAirDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
