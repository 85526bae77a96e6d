package users

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeUserConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeUserConfig(t, tempDir, "alice", `
library:
  url: "http://jellyfin.local:8096"
  api_key: "lib-key"
  remote_id: "user-1"

requests:
  url: "http://jellyseerr.local:5055"
  api_key: "req-key"

notify:
  recipient: "alice@example.com"

thresholds:
  large_movie_size_gb: 20
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 config, got %d", configCache.GetConfigCount())
	}

	config, err := configCache.GetConfig("alice")
	if err != nil {
		t.Fatal(err)
	}

	if config.Name != "alice" {
		t.Errorf("Expected name 'alice', got '%s'", config.Name)
	}
	if config.Library.URL != "http://jellyfin.local:8096" {
		t.Errorf("Unexpected library URL: %s", config.Library.URL)
	}
	if config.Library.RemoteID != "user-1" {
		t.Errorf("Unexpected remote id: %s", config.Library.RemoteID)
	}
	if !config.HasRequests() {
		t.Errorf("Expected requests source to be configured")
	}
	if config.Notify.Recipient != "alice@example.com" {
		t.Errorf("Unexpected notify recipient: %s", config.Notify.Recipient)
	}
	if config.Thresholds.LargeMovieSizeGB != 20 {
		t.Errorf("Expected threshold override 20, got %d", config.Thresholds.LargeMovieSizeGB)
	}
	if config.Thresholds.OldContentMonths != 0 {
		t.Errorf("Unset overrides should stay zero, got %d", config.Thresholds.OldContentMonths)
	}
}

func TestConfigCacheUnknownUser(t *testing.T) {
	configCache := NewConfigCache(t.TempDir())
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	_, err := configCache.GetConfig("nobody")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestConfigCacheRequestsOnlyUserNotSyncable(t *testing.T) {
	tempDir := t.TempDir()

	writeUserConfig(t, tempDir, "bob", `
requests:
  url: "http://jellyseerr.local:5055"
  api_key: "req-key"
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	// Loaded, but not usable for sync.
	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected config to load, got count %d", configCache.GetConfigCount())
	}

	_, err := configCache.GetConfig("bob")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("User without library source should be not configured, got %v", err)
	}

	if syncable := configCache.GetSyncableConfigs(); len(syncable) != 0 {
		t.Errorf("Expected no syncable configs, got %d", len(syncable))
	}
}

func TestConfigCacheRejectsMissingAPIKey(t *testing.T) {
	tempDir := t.TempDir()

	writeUserConfig(t, tempDir, "broken", `
library:
  url: "http://jellyfin.local:8096"
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err == nil {
		t.Errorf("Expected error for library url without api_key")
	}
}

func TestConfigCacheRejectsBadURL(t *testing.T) {
	tempDir := t.TempDir()

	writeUserConfig(t, tempDir, "broken", `
library:
  url: "ftp://not-http"
  api_key: "key"
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err == nil {
		t.Errorf("Expected error for non-http(s) url")
	}
}

func TestConfigCacheRejectsNegativeThreshold(t *testing.T) {
	tempDir := t.TempDir()

	writeUserConfig(t, tempDir, "broken", `
library:
  url: "http://jellyfin.local:8096"
  api_key: "key"

thresholds:
  old_content_months: -1
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err == nil {
		t.Errorf("Expected error for negative threshold override")
	}
}

func TestConfigCacheMissingDirIsEmpty(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := configCache.Run(); err != nil {
		t.Errorf("Missing users dir should not be an error, got %v", err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected no configs, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheGetUserNamesSorted(t *testing.T) {
	tempDir := t.TempDir()

	libraryOnly := `
library:
  url: "http://jellyfin.local:8096"
  api_key: "key"
`
	writeUserConfig(t, tempDir, "zoe", libraryOnly)
	writeUserConfig(t, tempDir, "alice", libraryOnly)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	names := configCache.GetUserNames()
	if len(names) != 2 || names[0] != "alice" || names[1] != "zoe" {
		t.Errorf("Expected sorted names [alice zoe], got %v", names)
	}
}
