package jellyfin

import (
	"time"
)

// Wire types for the Jellyfin HTTP API. Only the fields the normalizer
// reads are declared.

type systemInfo struct {
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
	ID         string `json:"Id"`
}

type itemsResponse struct {
	Items            []apiItem `json:"Items"`
	TotalRecordCount int       `json:"TotalRecordCount"`
}

type apiItem struct {
	ID                string            `json:"Id"`
	Name              string            `json:"Name"`
	Type              string            `json:"Type"` // Movie, Series, Episode
	ProductionYear    int               `json:"ProductionYear"`
	DateCreated       *time.Time        `json:"DateCreated"`
	Path              string            `json:"Path"`
	ProviderIds       map[string]string `json:"ProviderIds"`
	UserData          *userData         `json:"UserData"`
	MediaSources      []mediaSource     `json:"MediaSources"`
	SeriesID          string            `json:"SeriesId"`          // set on episodes
	ParentIndexNumber *int              `json:"ParentIndexNumber"` // season number on episodes
	IndexNumber       *int              `json:"IndexNumber"`       // episode number on episodes
}

type userData struct {
	Played         bool       `json:"Played"`
	PlayCount      int        `json:"PlayCount"`
	LastPlayedDate *time.Time `json:"LastPlayedDate"`
}

type mediaSource struct {
	Path         string        `json:"Path"`
	Size         int64         `json:"Size"`
	MediaStreams []mediaStream `json:"MediaStreams"`
}

type mediaStream struct {
	Type     string `json:"Type"` // Audio, Subtitle, Video
	Language string `json:"Language"`
}
