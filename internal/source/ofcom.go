package source

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"RegCollector/internal/domain"
)

const ofcomBaseURL = "https://www.ofcom.org.uk"

// OfcomAdapter scrapes the Ofcom updates listing. Ofcom entries carry both a
// published and a last-updated date; the published date wins when present.
type OfcomAdapter struct {
	listURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ Adapter = (*OfcomAdapter)(nil)

// NewOfcomAdapter wires the configured listing URL and an HTTP client.
func NewOfcomAdapter(listURL string, client *http.Client, logger *slog.Logger) *OfcomAdapter {
	return &OfcomAdapter{listURL: listURL, client: defaultClient(client), logger: logger}
}

func (a *OfcomAdapter) Name() string { return "ofcom" }

// Fetch returns Ofcom updates published within the requested range.
func (a *OfcomAdapter) Fetch(ctx context.Context, req Request) ([]domain.ArticlePreview, error) {
	doc, err := fetchDocument(ctx, a.client, a.listURL)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ArticlePreview, 0)
	seen := map[string]struct{}{}

	doc.Find("li.search-result, div.search-result").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if req.MaxArticles > 0 && len(results) >= req.MaxArticles {
			return false
		}

		article, ok := a.parseResult(sel)
		if !ok {
			return true
		}
		if _, dup := seen[article.URL]; dup {
			return true
		}
		if article.PublishedDate != nil && !req.Range.Contains(*article.PublishedDate) {
			return true
		}

		seen[article.URL] = struct{}{}
		results = append(results, article)
		return true
	})

	if a.logger != nil {
		a.logger.Debug("ofcom fetch done", "articles", len(results))
	}
	return results, nil
}

func (a *OfcomAdapter) parseResult(sel *goquery.Selection) (domain.ArticlePreview, bool) {
	link := sel.Find("a").First()
	href, _ := link.Attr("href")
	title := strings.TrimSpace(link.Text())
	if href == "" || title == "" {
		return domain.ArticlePreview{}, false
	}

	article := domain.ArticlePreview{
		Title:        title,
		URL:          absoluteURL(ofcomBaseURL, href),
		Source:       "ofcom",
		Snippet:      strings.TrimSpace(sel.Find("p.search-result__summary, p").First().Text()),
		DocumentType: strings.TrimSpace(sel.Find(".search-result__type").First().Text()),
	}

	published := strings.TrimSpace(sel.Find(".search-result__published").First().Text())
	if published == "" {
		published = strings.TrimSpace(sel.Find("time").First().Text())
	}
	if t, ok := parseFlexibleDate(published); ok {
		article.PublishedDate = &t
	} else {
		updated := strings.TrimSpace(sel.Find(".search-result__updated").First().Text())
		if t, ok := parseFlexibleDate(updated); ok {
			article.PublishedDate = &t
		}
	}

	return article, true
}
