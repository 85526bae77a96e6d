package jellyseerr

import (
	"time"
)

// Wire types for the Jellyseerr HTTP API (Overseerr-compatible). Only the
// fields the normalizer reads are declared.

// Media status codes used by the request source.
const (
	mediaStatusPending            = 2
	mediaStatusProcessing         = 3
	mediaStatusPartiallyAvailable = 4
	mediaStatusAvailable          = 5
)

// Request status codes used by the request source.
const (
	requestStatusPending  = 1
	requestStatusApproved = 2
	requestStatusDeclined = 3
)

type statusResponse struct {
	Version string `json:"version"`
}

type requestsResponse struct {
	PageInfo pageInfo     `json:"pageInfo"`
	Results  []apiRequest `json:"results"`
}

type pageInfo struct {
	Pages   int `json:"pages"`
	Results int `json:"results"`
}

type apiRequest struct {
	ID          int          `json:"id"`
	Status      int          `json:"status"`
	CreatedAt   *time.Time   `json:"createdAt"`
	Media       apiMedia     `json:"media"`
	RequestedBy apiRequester `json:"requestedBy"`
	Seasons     []apiSeason  `json:"seasons"`
}

type apiMedia struct {
	ID           int        `json:"id"`
	MediaType    string     `json:"mediaType"` // movie or tv
	TmdbID       int        `json:"tmdbId"`
	Status       int        `json:"status"`
	MediaAddedAt *time.Time `json:"mediaAddedAt"`
}

type apiRequester struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Email       string `json:"email"`
}

type apiSeason struct {
	SeasonNumber int `json:"seasonNumber"`
	Status       int `json:"status"`
}

// Catalog detail responses, used to resolve release dates and season
// episode counts.

type movieDetails struct {
	Title       string `json:"title"`
	ReleaseDate string `json:"releaseDate"` // YYYY-MM-DD
}

type tvDetails struct {
	Name             string            `json:"name"`
	FirstAirDate     string            `json:"firstAirDate"` // YYYY-MM-DD
	Seasons          []tvDetailsSeason `json:"seasons"`
	LastEpisodeToAir *episodeRef       `json:"lastEpisodeToAir"`
	NextEpisodeToAir *episodeRef       `json:"nextEpisodeToAir"`
}

type tvDetailsSeason struct {
	SeasonNumber int    `json:"seasonNumber"`
	EpisodeCount int    `json:"episodeCount"`
	AirDate      string `json:"airDate"` // YYYY-MM-DD
}

type episodeRef struct {
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	AirDate       string `json:"airDate"`
	Name          string `json:"name"`
}
