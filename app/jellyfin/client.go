package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JimmyDore/mediajanitor-sub001/app/database"
	"github.com/JimmyDore/mediajanitor-sub001/app/source"
	"github.com/JimmyDore/mediajanitor-sub001/app/users"
)

const (
	ServiceName = "jellyfin"

	pageSize = 500
)

// Client is the library source adapter. It lists media items from a
// Jellyfin-compatible server and normalizes them into the cache shape.
// Listing calls go through the resilient caller; the adapter itself never
// retries.
type Client struct {
	httpClient *http.Client
	caller     *source.Caller
	userAgent  string
}

func NewClient(caller *source.Caller, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
		caller:    caller,
		userAgent: userAgent,
	}
}

// ValidateConnection issues one lightweight authenticated call and reports
// reachability. Used at configuration time, so it does not retry.
func (c *Client) ValidateConnection(ctx context.Context, cfg users.SourceConfig) error {
	var info systemInfo
	if err := c.get(ctx, cfg, "/System/Info", nil, &info); err != nil {
		return err
	}
	slog.Debug("Library connection validated", "server", info.ServerName, "version", info.Version)
	return nil
}

// ListItems fetches all movies and series for the configured library user
// and returns them in the normalized cache shape. Per-file stream data is
// flattened: canonical size is the largest media source, audio languages
// and French-subtitle presence are derived across all sources, and series
// get per-season aggregate sizes from their episodes.
func (c *Client) ListItems(ctx context.Context, cfg users.SourceConfig) ([]database.MediaItem, error) {
	parents, err := source.Call(ctx, c.caller, ServiceName, func(ctx context.Context) ([]apiItem, error) {
		return c.listAll(ctx, cfg, "Movie,Series")
	})
	if err != nil {
		return nil, err
	}

	hasSeries := false
	for _, it := range parents {
		if it.Type == "Series" {
			hasSeries = true
			break
		}
	}

	var episodes []apiItem
	if hasSeries {
		episodes, err = source.Call(ctx, c.caller, ServiceName, func(ctx context.Context) ([]apiItem, error) {
			return c.listAll(ctx, cfg, "Episode")
		})
		if err != nil {
			return nil, err
		}
	}

	episodesBySeries := make(map[string][]apiItem)
	for _, ep := range episodes {
		if ep.SeriesID != "" {
			episodesBySeries[ep.SeriesID] = append(episodesBySeries[ep.SeriesID], ep)
		}
	}

	items := make([]database.MediaItem, 0, len(parents))
	for _, it := range parents {
		items = append(items, normalizeItem(it, episodesBySeries[it.ID]))
	}

	return items, nil
}

// listAll pages through the Items endpoint until the reported total is
// reached.
func (c *Client) listAll(ctx context.Context, cfg users.SourceConfig, includeTypes string) ([]apiItem, error) {
	var all []apiItem

	for start := 0; ; start += pageSize {
		params := url.Values{}
		params.Set("Recursive", "true")
		params.Set("IncludeItemTypes", includeTypes)
		params.Set("Fields", "DateCreated,MediaSources,ProviderIds,Path,ProductionYear")
		params.Set("StartIndex", strconv.Itoa(start))
		params.Set("Limit", strconv.Itoa(pageSize))

		var page itemsResponse
		if err := c.get(ctx, cfg, c.itemsPath(cfg), params, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Items...)

		if len(page.Items) == 0 || len(all) >= page.TotalRecordCount {
			return all, nil
		}
	}
}

// itemsPath scopes the listing to the configured library user when one is
// set, so watch state (played flag, play count) is included.
func (c *Client) itemsPath(cfg users.SourceConfig) string {
	if cfg.RemoteID != "" {
		return "/Users/" + cfg.RemoteID + "/Items"
	}
	return "/Items"
}

// get performs one authenticated GET and decodes the JSON response.
// Failures are classified once here: transport errors and 5xx are
// transient, 4xx and malformed bodies are permanent.
func (c *Client) get(ctx context.Context, cfg users.SourceConfig, path string, params url.Values, out any) error {
	endpoint := strings.TrimRight(cfg.URL, "/") + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return source.Permanent(ServiceName, path, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("X-Emby-Token", cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return source.FromTransport(ServiceName, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return source.FromStatus(ServiceName, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return source.Permanent(ServiceName, path, fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}
