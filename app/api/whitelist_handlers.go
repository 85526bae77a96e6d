package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JimmyDore/mediajanitor-sub001/app/analysis"
	"github.com/JimmyDore/mediajanitor-sub001/app/database"
)

func (h *Handler) ListWhitelist(c *gin.Context) {
	userConfig, ok := h.lookupUser(c)
	if !ok {
		return
	}

	kind := c.Query("kind")
	if kind != "" && !validWhitelistKind(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown whitelist kind"})
		return
	}

	entries, err := h.whitelistRepo.GetEntries(userConfig.Name, kind)
	if err != nil {
		slog.Error("Database error", "operation", "get_whitelist", "user", userConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": toWhitelistViews(entries),
		"total":   len(entries),
	})
}

// AddWhitelistEntry inserts one whitelist entry. Adding an entry that
// already exists is reported as skipped, not as an error, so clients can
// re-apply their lists idempotently.
func (h *Handler) AddWhitelistEntry(c *gin.Context) {
	userConfig, ok := h.lookupUser(c)
	if !ok {
		return
	}

	var body addWhitelistRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	entry, problem := entryFromRequest(userConfig.Name, body, time.Now().UTC())
	if problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problem})
		return
	}

	skipped, err := h.whitelistRepo.Add(entry)
	if err != nil {
		slog.Error("Database error", "operation", "add_whitelist_entry", "user", userConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if skipped {
		c.JSON(http.StatusOK, gin.H{"success": true, "skipped": true})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "skipped": false})
}

// BulkAddWhitelist inserts a batch of entries in one transaction. The whole
// batch is validated before anything is written.
func (h *Handler) BulkAddWhitelist(c *gin.Context) {
	userConfig, ok := h.lookupUser(c)
	if !ok {
		return
	}

	var body struct {
		Entries []addWhitelistRequest `json:"entries"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if len(body.Entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No entries provided"})
		return
	}

	now := time.Now().UTC()
	entries := make([]database.WhitelistEntry, 0, len(body.Entries))
	for i, req := range body.Entries {
		entry, problem := entryFromRequest(userConfig.Name, req, now)
		if problem != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": problem, "index": i})
			return
		}
		entries = append(entries, entry)
	}

	added, skipped, err := h.whitelistRepo.BulkAdd(entries)
	if err != nil {
		slog.Error("Database error", "operation", "bulk_add_whitelist", "user", userConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "added": added, "skipped": skipped})
}

// entryFromRequest validates one entry body. A non-empty return string is
// the client-facing problem description.
func entryFromRequest(userID string, body addWhitelistRequest, now time.Time) (database.WhitelistEntry, string) {
	if !validWhitelistKind(body.Kind) {
		return database.WhitelistEntry{}, "Unknown whitelist kind"
	}

	entry := database.WhitelistEntry{
		UserID: userID,
		Kind:   body.Kind,
	}

	if body.Kind == database.WhitelistEpisode {
		if body.ShowName == "" || body.Season < 1 || body.Episode < 1 {
			return entry, "Episode entries require show_name, season and episode"
		}
		entry.ShowName = body.ShowName
		entry.Season = body.Season
		entry.Episode = body.Episode
	} else {
		if body.Name == "" {
			return entry, "Missing entry name"
		}
		entry.Name = body.Name
	}

	if body.TTLDays < 0 {
		return entry, "ttl_days must not be negative"
	}
	if body.TTLDays > 0 {
		expires := now.AddDate(0, 0, body.TTLDays)
		entry.ExpiresAt = &expires
	}

	return entry, ""
}

func (h *Handler) RemoveWhitelistEntry(c *gin.Context) {
	userConfig, ok := h.lookupUser(c)
	if !ok {
		return
	}

	entryID := c.Param("entryID")
	removed, err := h.whitelistRepo.Remove(userConfig.Name, entryID)
	if err != nil {
		slog.Error("Database error", "operation", "remove_whitelist_entry", "user", userConfig.Name, "entry", entryID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetThresholds(c *gin.Context) {
	userConfig, ok := h.lookupUser(c)
	if !ok {
		return
	}

	stored, err := h.thresholdsRepo.Get(userConfig.Name)
	if err != nil {
		slog.Error("Database error", "operation", "get_thresholds", "user", userConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// The resolved values are what analysis will actually use.
	resolved := analysis.Resolve(h.defaults, userConfig.Thresholds, stored)

	c.JSON(http.StatusOK, gin.H{
		"user":   userConfig.Name,
		"stored": stored != nil,
		"thresholds": thresholdsView{
			OldContentMonths:      resolved.OldContentMonths,
			MinAgeMonths:          resolved.MinAgeMonths,
			LargeMovieSizeGB:      resolved.LargeMovieSizeGB,
			LargeSeasonSizeGB:     resolved.LargeSeasonSizeGB,
			RecentlyAvailableDays: resolved.RecentlyAvailableDays,
		},
	})
}

func (h *Handler) PutThresholds(c *gin.Context) {
	userConfig, ok := h.lookupUser(c)
	if !ok {
		return
	}

	var body thresholdsView
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := validateThresholds(body); err != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	t := database.UserThresholds{
		UserID:                userConfig.Name,
		OldContentMonths:      body.OldContentMonths,
		MinAgeMonths:          body.MinAgeMonths,
		LargeMovieSizeGB:      body.LargeMovieSizeGB,
		LargeSeasonSizeGB:     body.LargeSeasonSizeGB,
		RecentlyAvailableDays: body.RecentlyAvailableDays,
	}

	if err := h.thresholdsRepo.Upsert(t); err != nil {
		slog.Error("Database error", "operation", "put_thresholds", "user", userConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "thresholds": body})
}

func validWhitelistKind(kind string) bool {
	switch kind {
	case database.WhitelistContentName,
		database.WhitelistFrenchAudioOnly,
		database.WhitelistFrenchSubsOnly,
		database.WhitelistLanguageExempt,
		database.WhitelistEpisode:
		return true
	}
	return false
}

func validateThresholds(t thresholdsView) string {
	switch {
	case t.OldContentMonths < 1 || t.OldContentMonths > 120:
		return "old_content_months must be between 1 and 120"
	case t.MinAgeMonths < 1 || t.MinAgeMonths > 24:
		return "min_age_months must be between 1 and 24"
	case t.LargeMovieSizeGB < 1 || t.LargeMovieSizeGB > 500:
		return "large_movie_size_gb must be between 1 and 500"
	case t.LargeSeasonSizeGB < 1 || t.LargeSeasonSizeGB > 500:
		return "large_season_size_gb must be between 1 and 500"
	case t.RecentlyAvailableDays < 1 || t.RecentlyAvailableDays > 90:
		return "recently_available_days must be between 1 and 90"
	}
	return ""
}
