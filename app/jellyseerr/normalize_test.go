package jellyseerr

import (
	"testing"
	"time"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func TestNormalizeStatusFolding(t *testing.T) {
	cases := []struct {
		name          string
		requestStatus int
		mediaStatus   int
		want          string
	}{
		{"declined wins over available media", requestStatusDeclined, mediaStatusAvailable, database.StatusDeclined},
		{"available media", requestStatusApproved, mediaStatusAvailable, database.StatusAvailable},
		{"partially available media", requestStatusApproved, mediaStatusPartiallyAvailable, database.StatusPartiallyAvailable},
		{"processing media", requestStatusApproved, mediaStatusProcessing, database.StatusApproved},
		{"approved request, pending media", requestStatusApproved, mediaStatusPending, database.StatusApproved},
		{"pending request", requestStatusPending, 0, database.StatusPending},
	}

	for _, c := range cases {
		req := apiRequest{Status: c.requestStatus, Media: apiMedia{Status: c.mediaStatus}}
		if got := normalizeStatus(req); got != c.want {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, got)
		}
	}
}

func TestNormalizeRequestAvailableAt(t *testing.T) {
	added := testNow.Add(-48 * time.Hour)

	req := apiRequest{
		ID:     7,
		Status: requestStatusApproved,
		Media:  apiMedia{MediaType: "movie", TmdbID: 42, Status: mediaStatusAvailable, MediaAddedAt: &added},
	}

	normalized := normalizeRequest(req)

	if normalized.ExternalID != "7" {
		t.Errorf("Expected external id '7', got '%s'", normalized.ExternalID)
	}
	if normalized.AvailableAt == nil || !normalized.AvailableAt.Equal(added) {
		t.Errorf("Expected available-at %v, got %v", added, normalized.AvailableAt)
	}

	// Not available: the added timestamp must not leak through.
	req.Media.Status = mediaStatusProcessing
	normalized = normalizeRequest(req)
	if normalized.AvailableAt != nil {
		t.Errorf("Unavailable request should have no available-at, got %v", normalized.AvailableAt)
	}
}

func TestRequesterNameFallbacks(t *testing.T) {
	cases := []struct {
		requester apiRequester
		want      string
	}{
		{apiRequester{DisplayName: "Alice", Username: "alice1", Email: "a@x"}, "Alice"},
		{apiRequester{Username: "alice1", Email: "a@x"}, "alice1"},
		{apiRequester{Email: "a@x"}, "a@x"},
	}

	for _, c := range cases {
		if got := requesterName(c.requester); got != c.want {
			t.Errorf("Expected '%s', got '%s'", c.want, got)
		}
	}
}

func TestApplyTVDetailsSeasonBreakdown(t *testing.T) {
	req := apiRequest{
		ID:     9,
		Status: requestStatusApproved,
		Media:  apiMedia{MediaType: "tv", TmdbID: 99, Status: mediaStatusPartiallyAvailable},
		Seasons: []apiSeason{
			{SeasonNumber: 1, Status: mediaStatusAvailable},
			{SeasonNumber: 2, Status: mediaStatusProcessing},
			{SeasonNumber: 3, Status: mediaStatusPending},
		},
	}

	details := &tvDetails{
		Name:         "Some Show",
		FirstAirDate: "2024-01-10",
		Seasons: []tvDetailsSeason{
			{SeasonNumber: 0, EpisodeCount: 3, AirDate: "2023-12-01"}, // specials, skipped
			{SeasonNumber: 1, EpisodeCount: 8, AirDate: "2024-01-10"},
			{SeasonNumber: 2, EpisodeCount: 10, AirDate: "2025-06-01"},
			{SeasonNumber: 3, EpisodeCount: 8, AirDate: "2027-01-01"},
			{SeasonNumber: 4, EpisodeCount: 8, AirDate: ""}, // not requested, skipped
		},
		LastEpisodeToAir: &episodeRef{SeasonNumber: 2, EpisodeNumber: 4},
	}

	normalized := normalizeRequest(req)
	applyTVDetails(&normalized, req, details, testNow)

	if normalized.Title != "Some Show" {
		t.Errorf("Expected title 'Some Show', got '%s'", normalized.Title)
	}
	if normalized.ReleaseDate == nil || normalized.ReleaseDate.Format("2006-01-02") != "2024-01-10" {
		t.Errorf("Expected release date 2024-01-10, got %v", normalized.ReleaseDate)
	}

	if len(normalized.Seasons) != 3 {
		t.Fatalf("Expected 3 seasons (specials and unrequested skipped), got %d", len(normalized.Seasons))
	}

	s1 := normalized.Seasons[0]
	if s1.Season != 1 || s1.AiredEpisodes != 8 || s1.Status != database.SeasonAvailable {
		t.Errorf("Season 1: expected 8 aired and available, got %d aired, status %s", s1.AiredEpisodes, s1.Status)
	}

	s2 := normalized.Seasons[1]
	if s2.AiredEpisodes != 4 || s2.TotalEpisodes != 10 {
		t.Errorf("Season 2: expected 4/10 episodes, got %d/%d", s2.AiredEpisodes, s2.TotalEpisodes)
	}
	if s2.Status != database.SeasonInProgress {
		t.Errorf("Season 2: expected in progress, got %s", s2.Status)
	}

	s3 := normalized.Seasons[2]
	if s3.AiredEpisodes != 0 {
		t.Errorf("Season 3: expected 0 aired, got %d", s3.AiredEpisodes)
	}
	if s3.Status != database.SeasonFuture {
		t.Errorf("Season 3: expected future, got %s", s3.Status)
	}
}

func TestApplyTVDetailsNoLastAired(t *testing.T) {
	req := apiRequest{
		Media:   apiMedia{MediaType: "tv", Status: mediaStatusPending},
		Seasons: []apiSeason{{SeasonNumber: 1}},
	}
	details := &tvDetails{
		Seasons: []tvDetailsSeason{{SeasonNumber: 1, EpisodeCount: 10, AirDate: "2027-03-01"}},
	}

	normalized := normalizeRequest(req)
	applyTVDetails(&normalized, req, details, testNow)

	if len(normalized.Seasons) != 1 {
		t.Fatalf("Expected 1 season, got %d", len(normalized.Seasons))
	}
	if normalized.Seasons[0].Status != database.SeasonFuture {
		t.Errorf("Unaired future season should be future, got %s", normalized.Seasons[0].Status)
	}
}

func TestApplyMovieDetails(t *testing.T) {
	normalized := database.Request{}
	applyMovieDetails(&normalized, &movieDetails{Title: "Some Movie", ReleaseDate: "2025-11-20"})

	if normalized.Title != "Some Movie" {
		t.Errorf("Expected title 'Some Movie', got '%s'", normalized.Title)
	}
	if normalized.ReleaseDate == nil || normalized.ReleaseDate.Format("2006-01-02") != "2025-11-20" {
		t.Errorf("Expected release date 2025-11-20, got %v", normalized.ReleaseDate)
	}
}

func TestParseAirDateInvalid(t *testing.T) {
	if parseAirDate("") != nil {
		t.Errorf("Empty date should parse to nil")
	}
	if parseAirDate("not-a-date") != nil {
		t.Errorf("Malformed date should parse to nil")
	}
}
