package analysis

import (
	"testing"
	"time"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

func requestWithStatus(title, status string) database.Request {
	return database.Request{Title: title, Status: status, MediaKind: database.KindMovie}
}

func TestUnavailableRequestsExcludesAvailable(t *testing.T) {
	requests := []database.Request{
		requestWithStatus("Available Movie", database.StatusAvailable),
		requestWithStatus("Pending Movie", database.StatusPending),
		requestWithStatus("Approved Movie", database.StatusApproved),
		requestWithStatus("Partial Show", database.StatusPartiallyAvailable),
	}

	unavailable := UnavailableRequests(requests, RequestOptions{}, testNow)

	if len(unavailable) != 3 {
		t.Fatalf("Expected 3 unavailable requests, got %d", len(unavailable))
	}
	for _, req := range unavailable {
		if req.Status == database.StatusAvailable {
			t.Errorf("Available request '%s' should be excluded", req.Title)
		}
	}
}

func TestUnavailableRequestsFutureFilter(t *testing.T) {
	future := testNow.AddDate(0, 6, 0)
	req := requestWithStatus("Upcoming Movie", database.StatusApproved)
	req.ReleaseDate = &future

	// Filter off: included
	got := UnavailableRequests([]database.Request{req}, RequestOptions{}, testNow)
	if len(got) != 1 {
		t.Errorf("Future release should be included when the filter is off, got %d", len(got))
	}

	// Filter on: excluded
	got = UnavailableRequests([]database.Request{req}, RequestOptions{FilterFutureReleases: true}, testNow)
	if len(got) != 0 {
		t.Errorf("Future release should be excluded when the filter is on, got %d", len(got))
	}
}

func TestUnavailableRequestsRecentFilter(t *testing.T) {
	recent := testNow.AddDate(0, -1, 0)
	req := requestWithStatus("Fresh Release", database.StatusApproved)
	req.ReleaseDate = &recent

	opts := RequestOptions{FilterRecentReleases: true, RecentReleaseMonthsCutoff: 2}

	got := UnavailableRequests([]database.Request{req}, opts, testNow)
	if len(got) != 0 {
		t.Errorf("Release within the recency cutoff should be excluded, got %d", len(got))
	}

	old := testNow.AddDate(0, -3, 0)
	req.ReleaseDate = &old

	got = UnavailableRequests([]database.Request{req}, opts, testNow)
	if len(got) != 1 {
		t.Errorf("Release older than the cutoff should be included, got %d", len(got))
	}
}

func TestUnavailableRequestsNilReleaseDateNeverFiltered(t *testing.T) {
	req := requestWithStatus("Dateless Movie", database.StatusPending)

	opts := RequestOptions{
		FilterFutureReleases:      true,
		FilterRecentReleases:      true,
		RecentReleaseMonthsCutoff: 2,
	}

	got := UnavailableRequests([]database.Request{req}, opts, testNow)
	if len(got) != 1 {
		t.Errorf("Request without a release date should never be filtered, got %d", len(got))
	}
}

func TestInProgressSeasons(t *testing.T) {
	requests := []database.Request{
		{
			Title:     "Airing Show",
			MediaKind: "tv",
			Status:    database.StatusPartiallyAvailable,
			Seasons: []database.SeasonAvailability{
				{Season: 1, AiredEpisodes: 10, TotalEpisodes: 10},
				{Season: 2, AiredEpisodes: 4, TotalEpisodes: 10},
				{Season: 3, AiredEpisodes: 0, TotalEpisodes: 8},
			},
		},
	}

	progress := InProgressSeasons(requests)

	if len(progress) != 1 {
		t.Fatalf("Expected 1 in-progress season, got %d", len(progress))
	}
	if progress[0].Season != 2 {
		t.Errorf("Expected season 2, got %d", progress[0].Season)
	}
	if progress[0].AiredEpisodes != 4 || progress[0].TotalEpisodes != 10 {
		t.Errorf("Expected 4/10 episodes, got %d/%d", progress[0].AiredEpisodes, progress[0].TotalEpisodes)
	}
}

func TestRecentlyAvailableGroupsByDay(t *testing.T) {
	day1a := testNow.Add(-26 * time.Hour)
	day1b := testNow.Add(-30 * time.Hour)
	day2 := testNow.Add(-2 * time.Hour)
	tooOld := testNow.AddDate(0, 0, -10)

	mkReq := func(title string, at time.Time) database.Request {
		return database.Request{
			Title:       title,
			Status:      database.StatusAvailable,
			AvailableAt: &at,
		}
	}

	requests := []database.Request{
		mkReq("Yesterday Early", day1b),
		mkReq("Yesterday Late", day1a),
		mkReq("Today", day2),
		mkReq("Too Old", tooOld),
		requestWithStatus("Not Available", database.StatusPending),
	}

	groups := RecentlyAvailable(requests, 7, testNow)

	if len(groups) != 2 {
		t.Fatalf("Expected 2 day groups, got %d", len(groups))
	}

	// Newest day first
	if groups[0].Date <= groups[1].Date {
		t.Errorf("Groups should be ordered newest first: %s before %s", groups[0].Date, groups[1].Date)
	}
	if len(groups[0].Requests) != 1 || groups[0].Requests[0].Title != "Today" {
		t.Errorf("Expected 'Today' in the newest group")
	}

	// Within a day, newest first
	if len(groups[1].Requests) != 2 {
		t.Fatalf("Expected 2 requests in the older group, got %d", len(groups[1].Requests))
	}
	if groups[1].Requests[0].Title != "Yesterday Late" {
		t.Errorf("Expected 'Yesterday Late' first within its day, got '%s'", groups[1].Requests[0].Title)
	}
}

func TestRunProducesFullReport(t *testing.T) {
	items := []database.MediaItem{
		itemCreatedMonthsAgo("Old Movie", 14),
		{Name: "Huge Movie", Kind: database.KindMovie, SizeBytes: 50 << 30, DateCreated: testNow.AddDate(0, -1, 0)},
	}
	available := testNow.Add(-24 * time.Hour)
	requests := []database.Request{
		{Title: "New Arrival", Status: database.StatusAvailable, AvailableAt: &available},
		requestWithStatus("Stuck Request", database.StatusApproved),
	}

	report := Run(items, requests, testThresholds(), emptySets(), RequestOptions{}, testNow)

	if len(report.OldContent.Items) != 1 {
		t.Errorf("Expected 1 old item, got %d", len(report.OldContent.Items))
	}
	if len(report.LargeMovies) != 1 {
		t.Errorf("Expected 1 large movie, got %d", len(report.LargeMovies))
	}
	if report.LargeMoviesTotalBytes != 50<<30 {
		t.Errorf("Expected large movie total %d, got %d", int64(50)<<30, report.LargeMoviesTotalBytes)
	}
	if len(report.Unavailable) != 1 {
		t.Errorf("Expected 1 unavailable request, got %d", len(report.Unavailable))
	}
	if len(report.NewlyAvailable) != 1 {
		t.Errorf("Expected 1 recently available group, got %d", len(report.NewlyAvailable))
	}
	if !report.GeneratedAt.Equal(testNow) {
		t.Errorf("Report should carry the injected clock")
	}
}
