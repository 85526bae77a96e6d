package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JimmyDore/mediajanitor-sub001/app/analysis"
	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

// GetAnalysis runs the full rules engine over the user's cached snapshot
// and returns every classification in one response. The engine is pure;
// this handler supplies the data, the resolved thresholds and the clock.
func (h *Handler) GetAnalysis(c *gin.Context) {
	userConfig, ok := h.lookupUser(c)
	if !ok {
		return
	}

	items, err := h.mediaRepo.GetItems(userConfig.Name)
	if err != nil {
		slog.Error("Database error", "operation", "get_items", "user", userConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	requests, err := h.requestRepo.GetRequests(userConfig.Name)
	if err != nil {
		slog.Error("Database error", "operation", "get_requests", "user", userConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	now := time.Now().UTC()

	sets, err := h.whitelistRepo.GetSets(userConfig.Name, now)
	if err != nil {
		slog.Error("Database error", "operation", "get_whitelist_sets", "user", userConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stored, err := h.thresholdsRepo.Get(userConfig.Name)
	if err != nil {
		slog.Error("Database error", "operation", "get_thresholds", "user", userConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	thresholds := analysis.Resolve(h.defaults, userConfig.Thresholds, stored)
	report := analysis.Run(items, requests, thresholds, sets, h.requestOpts, now)

	c.JSON(http.StatusOK, toReportView(userConfig.Name, thresholds, report))
}

type seasonFindingView struct {
	Name      string `json:"name"`
	Season    int    `json:"season"`
	SizeBytes int64  `json:"size_bytes"`
}

type languageFindingView struct {
	Name                   string                 `json:"name"`
	Kind                   string                 `json:"kind"`
	MissingEnglishAudio    bool                   `json:"missing_english_audio"`
	MissingFrenchSubtitles bool                   `json:"missing_french_subtitles"`
	Episodes               []database.EpisodeInfo `json:"episodes,omitempty"`
}

type seasonProgressView struct {
	Title         string `json:"title"`
	Season        int    `json:"season"`
	AiredEpisodes int    `json:"aired_episodes"`
	TotalEpisodes int    `json:"total_episodes"`
}

type availabilityGroupView struct {
	Date     string        `json:"date"`
	Requests []requestView `json:"requests"`
}

func toReportView(userName string, thresholds analysis.Thresholds, report analysis.Report) gin.H {
	largeSeasons := make([]seasonFindingView, 0, len(report.LargeSeasons))
	for _, f := range report.LargeSeasons {
		largeSeasons = append(largeSeasons, seasonFindingView{
			Name:      f.Item.Name,
			Season:    f.Season,
			SizeBytes: f.SizeBytes,
		})
	}

	languageFindings := make([]languageFindingView, 0, len(report.Languages.Findings))
	for _, f := range report.Languages.Findings {
		languageFindings = append(languageFindings, languageFindingView{
			Name:                   f.Item.Name,
			Kind:                   f.Item.Kind,
			MissingEnglishAudio:    f.MissingEnglishAudio,
			MissingFrenchSubtitles: f.MissingFrenchSubtitles,
			Episodes:               f.Episodes,
		})
	}

	inProgress := make([]seasonProgressView, 0, len(report.InProgress))
	for _, p := range report.InProgress {
		inProgress = append(inProgress, seasonProgressView{
			Title:         p.Request.Title,
			Season:        p.Season,
			AiredEpisodes: p.AiredEpisodes,
			TotalEpisodes: p.TotalEpisodes,
		})
	}

	newlyAvailable := make([]availabilityGroupView, 0, len(report.NewlyAvailable))
	for _, g := range report.NewlyAvailable {
		newlyAvailable = append(newlyAvailable, availabilityGroupView{
			Date:     g.Date,
			Requests: toRequestViews(g.Requests),
		})
	}

	return gin.H{
		"user":         userName,
		"generated_at": report.GeneratedAt,
		"thresholds": thresholdsView{
			OldContentMonths:      thresholds.OldContentMonths,
			MinAgeMonths:          thresholds.MinAgeMonths,
			LargeMovieSizeGB:      thresholds.LargeMovieSizeGB,
			LargeSeasonSizeGB:     thresholds.LargeSeasonSizeGB,
			RecentlyAvailableDays: thresholds.RecentlyAvailableDays,
		},
		"old_content": gin.H{
			"items":            toItemViews(report.OldContent.Items),
			"count":            len(report.OldContent.Items),
			"protected_count":  report.OldContent.ProtectedCount,
			"total_size_bytes": report.OldContent.TotalSizeBytes,
		},
		"large_movies": gin.H{
			"items":            toItemViews(report.LargeMovies),
			"count":            len(report.LargeMovies),
			"total_size_bytes": report.LargeMoviesTotalBytes,
		},
		"large_seasons": gin.H{
			"seasons": largeSeasons,
			"count":   len(largeSeasons),
		},
		"languages": gin.H{
			"findings":        languageFindings,
			"count":           len(languageFindings),
			"protected_count": report.Languages.ProtectedCount,
		},
		"unavailable_requests": gin.H{
			"requests": toRequestViews(report.Unavailable),
			"count":    len(report.Unavailable),
		},
		"in_progress_seasons": gin.H{
			"seasons": inProgress,
			"count":   len(inProgress),
		},
		"recently_available": newlyAvailable,
	}
}
