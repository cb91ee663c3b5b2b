package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"RegCollector/internal/daterange"
)

const fccListingHTML = `
<div class="view-content">
  <div class="views-row">
    <h3><a href="/document/spectrum-auction-notice">Spectrum Auction Public Notice</a></h3>
    <div class="views-field-field-release-date">January 15, 2025</div>
    <div class="views-field-field-document-type">Public Notice</div>
    <p>The Commission announces bidding procedures.</p>
  </div>
  <div class="views-row">
    <h3><a href="/document/old-order">Old Order</a></h3>
    <div class="views-field-field-release-date">December 3, 2024</div>
    <p>Out of range.</p>
  </div>
  <div class="views-row">
    <h3><a href="/document/spectrum-auction-notice">Spectrum Auction Public Notice</a></h3>
    <div class="views-field-field-release-date">January 15, 2025</div>
  </div>
</div>`

func TestFCCAdapterFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fccListingHTML))
	}))
	defer server.Close()

	adapter := NewFCCAdapter(server.URL, server.Client(), nil)

	rng, err := daterange.Parse("2025-01")
	if err != nil {
		t.Fatalf("parse range: %v", err)
	}

	articles, err := adapter.Fetch(context.Background(), Request{Range: rng, MaxArticles: 25})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(articles) != 1 {
		t.Fatalf("expected 1 article (in range, deduped), got %d", len(articles))
	}

	got := articles[0]
	if got.Title != "Spectrum Auction Public Notice" {
		t.Fatalf("unexpected title: %s", got.Title)
	}
	if got.URL != "https://www.fcc.gov/document/spectrum-auction-notice" {
		t.Fatalf("unexpected url: %s", got.URL)
	}
	if got.Source != "fcc" {
		t.Fatalf("unexpected source: %s", got.Source)
	}
	if got.DocumentType != "Public Notice" {
		t.Fatalf("unexpected document type: %s", got.DocumentType)
	}
	if got.PublishedDate == nil || got.PublishedDate.Format("2006-01-02") != "2025-01-15" {
		t.Fatalf("unexpected published date: %v", got.PublishedDate)
	}
	if got.IsDuplicate {
		t.Fatal("is_duplicate must be false until the dedup oracle evaluates it")
	}
}

func TestFCCAdapterEmptyListing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<div class="view-content"></div>`))
	}))
	defer server.Close()

	adapter := NewFCCAdapter(server.URL, server.Client(), nil)
	rng, _ := daterange.Parse("2025-01")

	articles, err := adapter.Fetch(context.Background(), Request{Range: rng})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("expected empty result, got %d", len(articles))
	}
}

func TestFCCAdapterServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewFCCAdapter(server.URL, server.Client(), nil)
	rng, _ := daterange.Parse("2025-01")

	if _, err := adapter.Fetch(context.Background(), Request{Range: rng}); err == nil {
		t.Fatal("expected error on 500 response")
	}
}
