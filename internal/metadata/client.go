// Package metadata fetches video statistics from the YouTube Data API.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Config controls the metadata API client.
type Config struct {
	APIKey  string
	BaseURL string
	// Timeout bounds each statistics lookup.
	Timeout time.Duration
	// QPS throttles lookups against the API quota; 0 disables throttling.
	QPS float64
}

// Client implements shorts.MetadataProvider against the YouTube Data API.
// Lookup failures surface as errors; the pipeline degrades them to a
// popularity of zero.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient builds a metadata client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.QPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.QPS), 1)
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		logger:     logger,
	}
}

type videosResponse struct {
	Items []struct {
		Statistics struct {
			LikeCount flexCount `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// flexCount decodes a count that the API may encode as a JSON string or a
// bare number.
type flexCount int64

func (c *flexCount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse like count %q: %w", s, err)
	}
	*c = flexCount(n)
	return nil
}

// Popularity returns the like count for a video id. A video with no
// statistics entry counts as zero likes.
func (c *Client) Popularity(ctx context.Context, videoID string) (int64, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("wait metadata quota: %w", err)
		}
	}

	endpoint := fmt.Sprintf("%s/videos?part=statistics&id=%s&key=%s",
		c.baseURL, url.QueryEscape(videoID), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build metadata request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch metadata for %s: %w", videoID, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("close metadata response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("metadata API returned status %d for %s", resp.StatusCode, videoID)
	}

	var payload videosResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode metadata response for %s: %w", videoID, err)
	}
	if len(payload.Items) == 0 {
		c.logger.Debug("no statistics for video", zap.String("video_id", videoID))
		return 0, nil
	}
	return int64(payload.Items[0].Statistics.LikeCount), nil
}
