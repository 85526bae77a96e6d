package users

// Config holds one user's connection settings for the external source
// systems, loaded from a yaml file named <user>.yml in the users directory.
type Config struct {
	Name       string       // Derived from filename (without .yml extension)
	Library    SourceConfig `yaml:"library"`
	Requests   SourceConfig `yaml:"requests"`
	Notify     NotifyConfig `yaml:"notify"`
	Thresholds Overrides    `yaml:"thresholds"`
}

// SourceConfig is the connection configuration for one external system.
// The API key is stored in plaintext; encrypting it at rest is the
// responsibility of whoever provisions the users directory.
type SourceConfig struct {
	URL      string `yaml:"url"`
	APIKey   string `yaml:"api_key"`
	RemoteID string `yaml:"remote_id"` // library-side user id used to scope item queries
}

type NotifyConfig struct {
	Recipient string `yaml:"recipient"`
}

// Overrides are optional per-user threshold overrides. Zero values mean
// "use the process-wide default".
type Overrides struct {
	OldContentMonths      int `yaml:"old_content_months"`
	MinAgeMonths          int `yaml:"min_age_months"`
	LargeMovieSizeGB      int `yaml:"large_movie_size_gb"`
	LargeSeasonSizeGB     int `yaml:"large_season_size_gb"`
	RecentlyAvailableDays int `yaml:"recently_available_days"`
}

// HasLibrary reports whether the library source is configured. A user
// without a library source cannot be synced at all.
func (c *Config) HasLibrary() bool {
	return c.Library.URL != "" && c.Library.APIKey != ""
}

// HasRequests reports whether the request source is configured. Request
// sync is best-effort and skipped when unconfigured.
func (c *Config) HasRequests() bool {
	return c.Requests.URL != "" && c.Requests.APIKey != ""
}
