package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured.
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	api.Use(authMiddleware(apiAccessKey))
	{
		api.GET("/users", handler.ListUsers)
		api.POST("/users/:name/validate", handler.ValidateUser)

		api.POST("/users/:name/sync", rateLimitMiddleware(handler.syncLimiter), handler.TriggerSync)
		api.GET("/users/:name/sync/status", handler.GetSyncStatus)

		api.GET("/users/:name/items", handler.ListItems)
		api.DELETE("/users/:name/items/:itemID", handler.DeleteItem)
		api.GET("/users/:name/requests", handler.ListRequests)
		api.GET("/users/:name/analysis", handler.GetAnalysis)

		api.GET("/users/:name/whitelist", handler.ListWhitelist)
		api.POST("/users/:name/whitelist", handler.AddWhitelistEntry)
		api.POST("/users/:name/whitelist/bulk", handler.BulkAddWhitelist)
		api.DELETE("/users/:name/whitelist/:entryID", handler.RemoveWhitelistEntry)

		api.GET("/users/:name/thresholds", handler.GetThresholds)
		api.PUT("/users/:name/thresholds", handler.PutThresholds)
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "Media Janitor",
			"version":     handler.version,
			"description": "Per-user media library janitor: sync, cache and analyze library content and acquisition requests",
			"endpoints": map[string]string{
				"health":   "/health",
				"users":    "/api/users (requires X-API-Key header)",
				"analysis": "/api/users/<name>/analysis (requires X-API-Key header)",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware guards the API group. The key comes from the X-API-Key
// header or an Authorization Bearer token.
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// rateLimitMiddleware throttles sync triggers per user name so a
// misbehaving client cannot hammer the external sources.
func rateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := limiter.Allow(c.Param("name"), time.Now())
		if !allowed {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": seconds,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
