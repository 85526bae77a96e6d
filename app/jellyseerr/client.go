package jellyseerr

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
	ServiceName = "jellyseerr"

	pageSize = 100
)

// Client is the request source adapter. It lists acquisition requests from
// a Jellyseerr-compatible server, resolving catalog details to attach
// release dates and season-level availability. Calls go through the
// resilient caller; the adapter itself never retries.
type Client struct {
	httpClient *http.Client
	caller     *source.Caller
	userAgent  string
}

func NewClient(caller *source.Caller, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
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
	var status statusResponse
	if err := c.get(ctx, cfg, "/api/v1/status", nil, &status); err != nil {
		return err
	}
	slog.Debug("Request source connection validated", "version", status.Version)
	return nil
}

// ListRequests fetches all acquisition requests and returns them in the
// normalized cache shape, including the per-season availability breakdown
// for tv requests.
func (c *Client) ListRequests(ctx context.Context, cfg users.SourceConfig) ([]database.Request, error) {
	raw, err := source.Call(ctx, c.caller, ServiceName, func(ctx context.Context) ([]apiRequest, error) {
		return c.listAll(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	requests := make([]database.Request, 0, len(raw))

	for _, req := range raw {
		normalized := normalizeRequest(req)

		// Catalog details enrich the bare request with a title, a release
		// date, and (for tv) episode counts. A request that cannot be
		// enriched still syncs with what it has: analysis degrades rather
		// than the whole cycle failing.
		switch normalized.MediaKind {
		case database.KindMovie:
			details, err := source.Call(ctx, c.caller, ServiceName, func(ctx context.Context) (*movieDetails, error) {
				return c.movieDetails(ctx, cfg, req.Media.TmdbID)
			})
			if err != nil {
				slog.Warn("Failed to resolve movie details, syncing bare request",
					"tmdb_id", req.Media.TmdbID, "error", err)
			} else {
				applyMovieDetails(&normalized, details)
			}
		default:
			details, err := source.Call(ctx, c.caller, ServiceName, func(ctx context.Context) (*tvDetails, error) {
				return c.tvDetails(ctx, cfg, req.Media.TmdbID)
			})
			if err != nil {
				slog.Warn("Failed to resolve tv details, syncing bare request",
					"tmdb_id", req.Media.TmdbID, "error", err)
			} else {
				applyTVDetails(&normalized, req, details, now)
			}
		}

		requests = append(requests, normalized)
	}

	return requests, nil
}

// listAll pages through the request endpoint until the reported page count
// is exhausted.
func (c *Client) listAll(ctx context.Context, cfg users.SourceConfig) ([]apiRequest, error) {
	var all []apiRequest

	for skip := 0; ; skip += pageSize {
		params := url.Values{}
		params.Set("take", strconv.Itoa(pageSize))
		params.Set("skip", strconv.Itoa(skip))
		params.Set("filter", "all")

		var page requestsResponse
		if err := c.get(ctx, cfg, "/api/v1/request", params, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Results...)

		if len(page.Results) == 0 || len(all) >= page.PageInfo.Results {
			return all, nil
		}
	}
}

func (c *Client) movieDetails(ctx context.Context, cfg users.SourceConfig, tmdbID int) (*movieDetails, error) {
	var details movieDetails
	if err := c.get(ctx, cfg, "/api/v1/movie/"+strconv.Itoa(tmdbID), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) tvDetails(ctx context.Context, cfg users.SourceConfig, tmdbID int) (*tvDetails, error) {
	var details tvDetails
	if err := c.get(ctx, cfg, "/api/v1/tv/"+strconv.Itoa(tmdbID), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// get performs one authenticated GET and decodes the JSON response, with
// the same one-shot failure classification as the library adapter.
func (c *Client) get(ctx context.Context, cfg users.SourceConfig, path string, params url.Values, out any) error {
	endpoint := strings.TrimRight(cfg.URL, "/") + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return source.Permanent(ServiceName, path, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("X-Api-Key", cfg.APIKey)
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
