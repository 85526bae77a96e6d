package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/JimmyDore/mediajanitor-sub001/app/analysis"
	"github.com/JimmyDore/mediajanitor-sub001/app/api"
	"github.com/JimmyDore/mediajanitor-sub001/app/cfg"
	"github.com/JimmyDore/mediajanitor-sub001/app/database"
	"github.com/JimmyDore/mediajanitor-sub001/app/jellyfin"
	"github.com/JimmyDore/mediajanitor-sub001/app/jellyseerr"
	"github.com/JimmyDore/mediajanitor-sub001/app/notify"
	"github.com/JimmyDore/mediajanitor-sub001/app/source"
	"github.com/JimmyDore/mediajanitor-sub001/app/sync"
	"github.com/JimmyDore/mediajanitor-sub001/app/users"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg)

	slog.Info("Starting Media Janitor server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	configCache := users.NewConfigCache(appCfg.UsersDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load user configurations", "dir", appCfg.UsersDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded user configurations", "dir", appCfg.UsersDir, "count", configCache.GetConfigCount())

	mediaRepo := database.NewMediaItemRepository(db)
	requestRepo := database.NewRequestCacheRepository(db)
	whitelistRepo := database.NewWhitelistEntryRepository(db)
	thresholdsRepo := database.NewUserThresholdsRepository(db)
	syncRepo := database.NewSyncStatusRowRepository(db)

	caller := source.NewCaller()
	library := jellyfin.NewClient(caller, appCfg.UserAgent)
	requests := jellyseerr.NewClient(caller, appCfg.UserAgent)

	var notifier sync.Notifier
	if appCfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(appCfg.NotifyWebhookURL)
		slog.Info("Webhook notifications enabled")
	}

	orchestrator := sync.NewOrchestrator(configCache, library, requests,
		mediaRepo, requestRepo, syncRepo, notifier)

	scheduler := sync.NewScheduler(orchestrator, configCache, syncRepo, sync.SchedulerOptions{
		Interval:     time.Duration(appCfg.SchedulerInterval) * time.Second,
		SyncInterval: time.Duration(appCfg.SyncInterval) * time.Second,
		WorkerCount:  appCfg.WorkerCount,
	})
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)

	syncLimiter := api.NewRateLimiter(appCfg.RateLimitMax,
		time.Duration(appCfg.RateLimitWindowSeconds)*time.Second)

	handler := api.NewHandler(configCache, mediaRepo, requestRepo, whitelistRepo,
		thresholdsRepo, syncRepo, orchestrator, scheduler, library, requests,
		api.HandlerOptions{
			Defaults: analysis.Thresholds{
				OldContentMonths:      appCfg.OldContentMonths,
				MinAgeMonths:          appCfg.MinAgeMonths,
				LargeMovieSizeGB:      appCfg.LargeMovieSizeGB,
				LargeSeasonSizeGB:     appCfg.LargeSeasonSizeGB,
				RecentlyAvailableDays: appCfg.RecentlyAvailableDays,
			},
			RequestOpts: analysis.RequestOptions{
				FilterFutureReleases:      appCfg.FilterFutureReleases,
				FilterRecentReleases:      appCfg.FilterRecentReleases,
				RecentReleaseMonthsCutoff: appCfg.RecentReleaseMonthsCutoff,
			},
			SyncLimiter: syncLimiter,
			Version:     appCfg.Version,
		})
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "api_auth", appCfg.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

// setupLogging routes slog to stdout, optionally duplicated into a
// rotating log file.
func setupLogging(appCfg *cfg.Cfg) {
	var out io.Writer = os.Stdout
	if appCfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   appCfg.LogFile,
			MaxSize:    appCfg.LogMaxSizeMB,
			MaxBackups: appCfg.LogMaxBackups,
			MaxAge:     appCfg.LogMaxAgeDays,
			Compress:   true,
		})
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}
