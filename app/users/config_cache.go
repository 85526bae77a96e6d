package users

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNotConfigured is returned when a user has no usable library source
// configuration. It is never retried and surfaces immediately to callers.
var ErrNotConfigured = errors.New("user has no library source configured")

type ConfigCache struct {
	usersDir string
	cache    map[string]*Config
	mu       sync.RWMutex
}

func NewConfigCache(usersDir string) *ConfigCache {
	return &ConfigCache{
		usersDir: usersDir,
		cache:    make(map[string]*Config),
	}
}

// Run loads every user configuration file from the users directory.
func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.usersDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.usersDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		userName := strings.TrimSuffix(fileName, ".yml")

		config, err := cc.LoadConfig(userName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("User configuration loaded", "user", userName,
			"library", config.HasLibrary(), "requests", config.HasRequests())
	}

	return nil
}

// LoadConfig reads and validates a single user's configuration file and
// stores it in the cache, replacing any previous entry.
func (cc *ConfigCache) LoadConfig(userName string) (*Config, error) {
	configFile := cc.getConfigFilePath(userName)
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = userName

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

// GetConfig returns the cached configuration for a user, or
// ErrNotConfigured when the user is unknown or has no library source.
func (cc *ConfigCache) GetConfig(userName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[userName]
	if !ok || !config.HasLibrary() {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, userName)
	}
	return config, nil
}

// GetConfigs returns a copy of all cached user configurations.
func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for name, config := range cc.cache {
		configsCopy[name] = config
	}
	return configsCopy
}

// GetUserNames returns the sorted names of all cached users.
func (cc *ConfigCache) GetUserNames() []string {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	names := make([]string, 0, len(cc.cache))
	for name := range cc.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetSyncableConfigs returns configurations that have a library source and
// can therefore be synced.
func (cc *ConfigCache) GetSyncableConfigs() []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configs := make([]*Config, 0, len(cc.cache))
	for _, config := range cc.cache {
		if config.HasLibrary() {
			configs = append(configs, config)
		}
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })
	return configs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if !config.HasLibrary() && !config.HasRequests() {
		return fmt.Errorf("at least one source must be configured")
	}

	for _, source := range []struct {
		name string
		cfg  SourceConfig
	}{
		{"library", config.Library},
		{"requests", config.Requests},
	} {
		if source.cfg.URL == "" {
			continue
		}
		u, err := url.Parse(source.cfg.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%s url must be a valid http(s) URL: %q", source.name, source.cfg.URL)
		}
		if source.cfg.APIKey == "" {
			return fmt.Errorf("%s api_key is required when url is set", source.name)
		}
	}

	o := config.Thresholds
	for _, v := range []struct {
		name  string
		value int
		max   int
	}{
		{"old_content_months", o.OldContentMonths, 120},
		{"min_age_months", o.MinAgeMonths, 24},
		{"large_movie_size_gb", o.LargeMovieSizeGB, 500},
		{"large_season_size_gb", o.LargeSeasonSizeGB, 500},
		{"recently_available_days", o.RecentlyAvailableDays, 90},
	} {
		if v.value < 0 || v.value > v.max {
			return fmt.Errorf("%s must be between 0 and %d, got %d", v.name, v.max, v.value)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(userName string) string {
	return filepath.Join(cc.usersDir, userName+".yml")
}
