// Package source contains the per-government-source adapters that query
// candidate articles for a date range.
package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"RegCollector/internal/daterange"
	"RegCollector/internal/domain"
)

// Request carries all parameters required to execute a fetch.
type Request struct {
	Range       daterange.Range
	MaxArticles int
	Keywords    []string
}

// Adapter captures a single source implementation (FCC, Ofcom, Soumu).
// Zero matching articles is not an error: adapters return an empty slice.
// No ordering is guaranteed; the preview aggregator imposes it later.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.ArticlePreview, error)
}

// Registry keeps a mapping from source names to their adapters.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

// Register adds or replaces an adapter.
func (r *Registry) Register(adapter Adapter) {
	if r.adapters == nil {
		r.adapters = map[string]Adapter{}
	}
	r.adapters[adapter.Name()] = adapter
}

// Resolve returns an adapter by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Adapter, error) {
	if adapter, ok := r.adapters[name]; ok {
		return adapter, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "RegCollector/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: 20 * time.Second}
	}
	return client
}
