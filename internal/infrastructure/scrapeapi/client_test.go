package scrapeapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"RegCollector/internal/config"
	"RegCollector/internal/domain"
)

func testConfig(endpoint string) config.ScrapeAPIConfig {
	return config.ScrapeAPIConfig{
		Endpoint:     endpoint,
		APIKey:       "test-key",
		Retries:      3,
		RetryBackoff: 0,
	}
}

func TestScrapeSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/scrape" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}

		var req scrapeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.URL != "https://fcc.gov/a" || len(req.Formats) != 2 {
			t.Errorf("unexpected request %+v", req)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"markdown": "# Notice",
				"html":     "<h1>Notice</h1>",
				"metadata": map[string]string{"title": "Notice"},
			},
		})
	}))
	defer server.Close()

	client := New(testConfig(server.URL), server.Client(), slog.New(slog.DiscardHandler))

	content, err := client.Scrape(context.Background(), "https://fcc.gov/a")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if content.Markdown != "# Notice" || content.HTML != "<h1>Notice</h1>" {
		t.Fatalf("content = %+v", content)
	}
	if content.Metadata["title"] != "Notice" {
		t.Fatalf("metadata = %v", content.Metadata)
	}
}

func TestScrapeRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"markdown": "ok"},
		})
	}))
	defer server.Close()

	client := New(testConfig(server.URL), server.Client(), slog.New(slog.DiscardHandler))

	content, err := client.Scrape(context.Background(), "https://fcc.gov/a")
	if err != nil {
		t.Fatalf("Scrape after retries: %v", err)
	}
	if content.Markdown != "ok" {
		t.Fatalf("content = %+v", content)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestScrapeExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(testConfig(server.URL), server.Client(), slog.New(slog.DiscardHandler))

	_, err := client.Scrape(context.Background(), "https://fcc.gov/a")
	var serr *domain.ScrapeError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ScrapeError, got %v", err)
	}
	if serr.URL != "https://fcc.gov/a" {
		t.Fatalf("error url = %s", serr.URL)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestScrapeDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(testConfig(server.URL), server.Client(), slog.New(slog.DiscardHandler))

	if _, err := client.Scrape(context.Background(), "https://fcc.gov/a"); err == nil {
		t.Fatal("expected error on 401")
	}
	if calls.Load() != 1 {
		t.Fatalf("401 must not be retried, got %d attempts", calls.Load())
	}
}

func TestScrapeRejectsEmptyContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{}})
	}))
	defer server.Close()

	client := New(testConfig(server.URL), server.Client(), slog.New(slog.DiscardHandler))

	if _, err := client.Scrape(context.Background(), "https://fcc.gov/a"); err == nil {
		t.Fatal("expected error on empty content")
	}
}
