package extract

import (
	"context"
	"strings"
	"testing"

	"RegCollector/internal/domain"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Spectrum Auction Notice</title></head>
<body>
  <nav><a href="/">Home</a> <a href="/news">News</a></nav>
  <article>
    <h1>Spectrum Auction Notice</h1>
    <p>The Commission announces bidding procedures for the upcoming spectrum
    auction. Applications must be filed no later than March 1.</p>
    <p>Interested parties should review the attached public notice for full
    details on eligibility and upfront payments.</p>
  </article>
  <footer>Contact us</footer>
</body>
</html>`

func TestExtractFromHTML(t *testing.T) {
	t.Parallel()

	e := New()
	text, err := e.Extract(context.Background(), "https://fcc.gov/a", domain.ScrapedContent{HTML: articleHTML})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(text, "bidding procedures") {
		t.Fatalf("extracted text missing article body: %q", text)
	}
}

func TestExtractFallsBackToMarkdown(t *testing.T) {
	t.Parallel()

	e := New()
	text, err := e.Extract(context.Background(), "https://fcc.gov/a",
		domain.ScrapedContent{Markdown: "# Notice\n\nBody text."})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(text, "Body text.") {
		t.Fatalf("markdown fallback = %q", text)
	}
}

func TestExtractNothingToExtract(t *testing.T) {
	t.Parallel()

	e := New()
	if _, err := e.Extract(context.Background(), "https://fcc.gov/a", domain.ScrapedContent{}); err == nil {
		t.Fatal("expected error on empty content")
	}
}
