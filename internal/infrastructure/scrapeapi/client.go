// Package scrapeapi implements the content scrape capability against a
// Firecrawl-compatible HTTP API.
package scrapeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"RegCollector/internal/config"
	"RegCollector/internal/domain"
	"RegCollector/internal/ports"
)

// Client scrapes article pages through the configured scrape service,
// retrying transient failures with a fixed backoff.
type Client struct {
	endpoint string
	apiKey   string
	retries  int
	backoff  time.Duration
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Scraper = (*Client)(nil)

// New builds a scrape client from config. Passing a nil httpClient uses a
// client with the configured timeout.
func New(cfg config.ScrapeAPIConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		retries:  retries,
		backoff:  cfg.RetryBackoff,
		client:   httpClient,
		logger:   logger,
	}
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string            `json:"markdown"`
		HTML     string            `json:"html"`
		Metadata map[string]string `json:"metadata"`
	} `json:"data"`
	Error string `json:"error"`
}

// Scrape fetches the page content for url. Transient failures (429, 5xx,
// network errors) are retried; the last error is wrapped in ScrapeError.
func (c *Client) Scrape(ctx context.Context, url string) (domain.ScrapedContent, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if attempt > 1 {
			c.logger.Debug("retrying scrape", "url", url, "attempt", attempt)
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return domain.ScrapedContent{}, &domain.ScrapeError{URL: url, Err: ctx.Err()}
			}
		}

		content, retryable, err := c.scrapeOnce(ctx, url)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return domain.ScrapedContent{}, &domain.ScrapeError{URL: url, Err: lastErr}
}

func (c *Client) scrapeOnce(ctx context.Context, url string) (domain.ScrapedContent, bool, error) {
	body, err := json.Marshal(scrapeRequest{URL: url, Formats: []string{"markdown", "html"}})
	if err != nil {
		return domain.ScrapedContent{}, false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return domain.ScrapedContent{}, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ScrapedContent{}, true, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return domain.ScrapedContent{}, true, fmt.Errorf("scrape service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return domain.ScrapedContent{}, false, fmt.Errorf("scrape service returned %d", resp.StatusCode)
	}

	var parsed scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.ScrapedContent{}, false, fmt.Errorf("decode response: %w", err)
	}
	if !parsed.Success {
		return domain.ScrapedContent{}, false, fmt.Errorf("scrape rejected: %s", parsed.Error)
	}
	if parsed.Data.Markdown == "" && parsed.Data.HTML == "" {
		return domain.ScrapedContent{}, false, fmt.Errorf("scrape returned empty content")
	}

	return domain.ScrapedContent{
		Markdown: parsed.Data.Markdown,
		HTML:     parsed.Data.HTML,
		Metadata: parsed.Data.Metadata,
	}, false, nil
}
