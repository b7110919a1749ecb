// Package notifier forwards the best candidate to the downstream product
// metadata service.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dotblossom/shorts-radar/internal/shorts"
)

const defaultBaseURL = "https://dotblossom.today"

// Config controls the downstream notification client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements shorts.Notifier over HTTP POST. Delivery is
// fire-and-forget; the caller logs errors and moves on.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a notifier client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type notifyPayload struct {
	ProductID int          `json:"product_id"`
	Shorts    shortsFields `json:"shorts"`
}

type shortsFields struct {
	YoutubeURL          string `json:"youtube_url"`
	YoutubeThumbnailURL string `json:"youtube_thumbnail_url"`
	ShortsID            string `json:"shorts_id"`
}

// NotifyTopShort posts the winning candidate to the product metadata
// endpoint for the given product code.
func (c *Client) NotifyTopShort(ctx context.Context, productCode int, cand shorts.Candidate) error {
	payload := notifyPayload{
		ProductID: productCode,
		Shorts: shortsFields{
			YoutubeURL:          cand.URL,
			YoutubeThumbnailURL: cand.ThumbnailURL,
			ShortsID:            cand.VideoID,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notify payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/ai-api/metadata/product/shorts/%d", c.baseURL, productCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post notify request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("close notify response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify endpoint returned status %d", resp.StatusCode)
	}

	// Responses are small; read for the log, discard on failure.
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	c.logger.Info("top short forwarded downstream",
		zap.Int("product_code", productCode),
		zap.String("video_id", cand.VideoID),
		zap.ByteString("response", respBody),
	)
	return nil
}
