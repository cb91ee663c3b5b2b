// Package extract normalizes scraped pages into clean article text.
package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"RegCollector/internal/domain"
	"RegCollector/internal/ports"
)

// Extractor pulls the main article text out of scraped content. The HTML
// form goes through readability; when HTML is missing or yields nothing the
// scraped markdown is used as-is.
type Extractor struct{}

var _ ports.Extractor = (*Extractor)(nil)

// New returns an extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the clean text for an article page.
func (e *Extractor) Extract(ctx context.Context, pageURL string, content domain.ScrapedContent) (string, error) {
	if content.HTML != "" {
		parsedURL, err := url.Parse(pageURL)
		if err != nil {
			return "", fmt.Errorf("parse page url: %w", err)
		}
		article, err := readability.FromReader(strings.NewReader(content.HTML), parsedURL)
		if err == nil && strings.TrimSpace(article.TextContent) != "" {
			return strings.TrimSpace(article.TextContent), nil
		}
	}

	if strings.TrimSpace(content.Markdown) != "" {
		return strings.TrimSpace(content.Markdown), nil
	}

	return "", fmt.Errorf("no extractable content for %s", pageURL)
}
