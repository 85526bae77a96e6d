package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JimmyDore/mediajanitor-sub001/app/sync"
	"github.com/JimmyDore/mediajanitor-sub001/app/users"
)

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	health["loaded_users"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListUsers(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	userInfos := make([]map[string]interface{}, 0, len(configs))

	for _, userConfig := range configs {
		info := map[string]interface{}{
			"name":         userConfig.Name,
			"has_library":  userConfig.HasLibrary(),
			"has_requests": userConfig.HasRequests(),
		}

		if itemCount, err := h.mediaRepo.GetItemCount(userConfig.Name); err == nil {
			info["item_count"] = itemCount
		}
		if requestCount, err := h.requestRepo.GetRequestCount(userConfig.Name); err == nil {
			info["request_count"] = requestCount
		}
		if status, err := h.syncRepo.Get(userConfig.Name); err == nil && status != nil {
			info["last_sync_at"] = status.LastSyncAt
			info["last_sync_outcome"] = status.Outcome
		}

		userInfos = append(userInfos, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"users": userInfos,
		"total": len(userInfos),
	})
}

// ValidateUser probes both configured sources with a lightweight call and
// reports reachability per source. It does not sync anything.
func (h *Handler) ValidateUser(c *gin.Context) {
	userConfig, ok := h.lookupUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	libraryResult := gin.H{"configured": true, "ok": true}
	if err := h.library.ValidateConnection(ctx, userConfig.Library); err != nil {
		libraryResult["ok"] = false
		libraryResult["error"] = err.Error()
	}

	requestsResult := gin.H{"configured": userConfig.HasRequests(), "ok": false}
	if userConfig.HasRequests() {
		requestsResult["ok"] = true
		if err := h.requests.ValidateConnection(ctx, userConfig.Requests); err != nil {
			requestsResult["ok"] = false
			requestsResult["error"] = err.Error()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     userConfig.Name,
		"library":  libraryResult,
		"requests": requestsResult,
	})
}

func (h *Handler) TriggerSync(c *gin.Context) {
	userConfig, ok := h.lookupUser(c)
	if !ok {
		return
	}

	task := sync.NewSyncUserTask(userConfig.Name, h.orchestrator)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing sync task", "user", userConfig.Name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Sync task enqueued",
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

func (h *Handler) GetSyncStatus(c *gin.Context) {
	userConfig, ok := h.lookupUser(c)
	if !ok {
		return
	}

	status, err := h.syncRepo.Get(userConfig.Name)
	if err != nil {
		slog.Error("Database error", "operation", "get_sync_status", "user", userConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if status == nil {
		c.JSON(http.StatusOK, gin.H{
			"user":    userConfig.Name,
			"outcome": "never_synced",
		})
		return
	}

	response := gin.H{
		"user":            userConfig.Name,
		"outcome":         status.Outcome,
		"last_sync_at":    status.LastSyncAt,
		"items_synced":    status.ItemsSynced,
		"requests_synced": status.RequestsSynced,
	}
	if status.LastError != "" {
		response["last_error"] = status.LastError
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) ListItems(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{
		"items": toItemViews(items),
		"total": len(items),
	})
}

// DeleteItem removes one item from the cache only. The next sync will
// bring it back if it still exists upstream; actual deletion from the
// library server is out of scope.
func (h *Handler) DeleteItem(c *gin.Context) {
	userConfig, ok := h.lookupUser(c)
	if !ok {
		return
	}

	itemID := c.Param("itemID")
	removed, err := h.mediaRepo.DeleteItem(userConfig.Name, itemID)
	if err != nil {
		slog.Error("Database error", "operation", "delete_item", "user", userConfig.Name, "item", itemID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ListRequests(c *gin.Context) {
	userConfig, ok := h.lookupUser(c)
	if !ok {
		return
	}

	requests, err := h.requestRepo.GetRequests(userConfig.Name)
	if err != nil {
		slog.Error("Database error", "operation", "get_requests", "user", userConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": toRequestViews(requests),
		"total":    len(requests),
	})
}

// lookupUser resolves the :name route parameter against the loaded user
// configurations, writing the error response itself when the user is
// unknown.
func (h *Handler) lookupUser(c *gin.Context) (*users.Config, bool) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user name parameter"})
		return nil, false
	}

	userConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		if errors.Is(err, users.ErrNotConfigured) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not configured"})
			return nil, false
		}
		slog.Error("Failed to load user configuration", "user", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Configuration error"})
		return nil, false
	}

	return userConfig, true
}
