package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"attributely-core/internal/config"
	"attributely-core/internal/models"
)

// Client talks to the upstream quintuple-AI backend. Each platform exposes
// its own status endpoint with its own response shape; the client returns
// the decoded payload untouched and leaves interpretation to the normalizer.
type Client struct {
	client        *http.Client
	baseURL       string
	retryAttempts int
	logger        *logrus.Logger

	statusPaths map[models.Platform]string
}

func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		baseURL:       cfg.BackendBaseURL,
		retryAttempts: cfg.RetryAttempts,
		logger:        logger,
		statusPaths: map[models.Platform]string{
			models.PlatformMeta:        fmt.Sprintf("/meta-ai/advantage-plus-insights/%s", cfg.MetaAccountID),
			models.PlatformGoogle:      fmt.Sprintf("/google-ai/performance-max-insights/%s", cfg.GoogleCustomerID),
			models.PlatformTikTok:      fmt.Sprintf("/tiktok-ai/algorithm-insights/%s", cfg.TikTokAdvertiser),
			models.PlatformYouTube:     fmt.Sprintf("/youtube-ai/video-insights/%s", cfg.YouTubeChannelID),
			models.PlatformMicroBudget: fmt.Sprintf("/micro-budget-ai/optimize/%d", cfg.MicroBudgetAmount),
		},
	}
}

// FetchStatus retrieves the raw status payload for one platform. A failure
// carries no structured payload beyond being unavailable.
func (c *Client) FetchStatus(ctx context.Context, platform models.Platform) (models.RawStatus, error) {
	path, ok := c.statusPaths[platform]
	if !ok {
		return nil, fmt.Errorf("no status endpoint for platform %q", platform)
	}

	var raw models.RawStatus
	if err := c.retryGet(ctx, c.baseURL+path, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch %s status: %w", platform, err)
	}

	c.logger.WithFields(logrus.Fields{
		"platform": platform,
		"fields":   len(raw),
	}).Debug("Fetched platform status")
	return raw, nil
}

// FetchReadinessReport retrieves the quintuple-AI self-report used for the
// overall completion figure.
func (c *Client) FetchReadinessReport(ctx context.Context) (models.RawStatus, error) {
	var raw models.RawStatus
	if err := c.retryGet(ctx, c.baseURL+"/quintuple-ai/ultimate-optimizer", &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch readiness report: %w", err)
	}
	return raw, nil
}

// FetchAttributionSummary retrieves the dashboard totals feeding predictions.
func (c *Client) FetchAttributionSummary(ctx context.Context) (*models.AttributionSummary, error) {
	var payload struct {
		Summary models.AttributionSummary `json:"summary"`
	}
	if err := c.retryGet(ctx, c.baseURL+"/dashboard", &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch attribution summary: %w", err)
	}
	return &payload.Summary, nil
}

// PostJSON delivers a signed JSON payload to an arbitrary collaborator URL.
// Used by the lead sink forwarder.
func (c *Client) PostJSON(ctx context.Context, url string, data interface{}, signature string) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			backoffTime := time.Duration(attempt*attempt) * time.Second
			select {
			case <-time.After(backoffTime):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if signature != "" {
			req.Header.Set("X-Signature", signature)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("client error: %d", resp.StatusCode)
		}
		lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
	}

	return fmt.Errorf("post failed after retries: %w", lastErr)
}

func (c *Client) retryGet(ctx context.Context, url string, target interface{}) error {
	var lastErr error

	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			backoffTime := time.Duration(attempt*attempt) * time.Second
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"backoff": backoffTime,
				"url":     url,
			}).Warn("Retrying request after backoff")
			select {
			case <-time.After(backoffTime):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return fmt.Errorf("client error: %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		if err != nil {
			lastErr = err
			continue
		}

		if err := json.Unmarshal(body, target); err != nil {
			lastErr = err
			continue
		}

		return nil
	}

	return fmt.Errorf("all retry attempts failed, last error: %w", lastErr)
}
