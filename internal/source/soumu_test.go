package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"RegCollector/internal/daterange"
)

const soumuListingHTML = `
<div class="news-list">
  <ul>
    <li><span class="date">2025年1月17日</span><a href="/menu_news/s-news/01kiban14_post1.html">周波数再編アクションプランの公表</a></li>
    <li><span class="date">2025年1月10日</span><a href="/menu_news/s-news/budget.html">予算案の概要</a></li>
    <li><span class="date">2024年12月20日</span><a href="/menu_news/s-news/old.html">電波利用料の見直し</a></li>
  </ul>
</div>`

func TestSoumuAdapterKeywordFilter(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(soumuListingHTML))
	}))
	defer server.Close()

	adapter := NewSoumuAdapter(server.URL, []string{"周波数", "電波"}, server.Client(), nil)
	rng, err := daterange.Parse("2025-01")
	if err != nil {
		t.Fatalf("parse range: %v", err)
	}

	articles, err := adapter.Fetch(context.Background(), Request{Range: rng, MaxArticles: 25})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	// Budget item has no keyword match; the December item is out of range.
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}

	got := articles[0]
	if got.URL != "https://www.soumu.go.jp/menu_news/s-news/01kiban14_post1.html" {
		t.Fatalf("unexpected url: %s", got.URL)
	}
	if len(got.MatchedKeywords) != 1 || got.MatchedKeywords[0] != "周波数" {
		t.Fatalf("unexpected matched keywords: %v", got.MatchedKeywords)
	}
	if got.PublishedDate == nil || got.PublishedDate.Format("2006-01-02") != "2025-01-17" {
		t.Fatalf("unexpected published date: %v", got.PublishedDate)
	}
}

func TestSoumuAdapterRequestKeywordsOverride(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(soumuListingHTML))
	}))
	defer server.Close()

	adapter := NewSoumuAdapter(server.URL, []string{"周波数"}, server.Client(), nil)
	rng, _ := daterange.Parse("2025-01")

	articles, err := adapter.Fetch(context.Background(), Request{Range: rng, Keywords: []string{"予算"}})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(articles) != 1 || articles[0].Title != "予算案の概要" {
		t.Fatalf("expected only the budget article, got %+v", articles)
	}
}
