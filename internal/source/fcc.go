package source

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"RegCollector/internal/domain"
)

const fccBaseURL = "https://www.fcc.gov"

// FCCAdapter scrapes the FCC headlines listing (Drupal views rows).
type FCCAdapter struct {
	listURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ Adapter = (*FCCAdapter)(nil)

// NewFCCAdapter wires the configured listing URL and an HTTP client.
func NewFCCAdapter(listURL string, client *http.Client, logger *slog.Logger) *FCCAdapter {
	return &FCCAdapter{listURL: listURL, client: defaultClient(client), logger: logger}
}

func (a *FCCAdapter) Name() string { return "fcc" }

// Fetch returns FCC headlines published within the requested range.
func (a *FCCAdapter) Fetch(ctx context.Context, req Request) ([]domain.ArticlePreview, error) {
	doc, err := fetchDocument(ctx, a.client, a.listURL)
	if err != nil {
		return nil, err
	}

	containers := doc.Find("div.views-row")
	if containers.Length() == 0 {
		containers = doc.Find("article")
	}

	results := make([]domain.ArticlePreview, 0)
	seen := map[string]struct{}{}

	containers.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if req.MaxArticles > 0 && len(results) >= req.MaxArticles {
			return false
		}

		article, ok := a.parseRow(sel)
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
		a.logger.Debug("fcc fetch done", "articles", len(results))
	}
	return results, nil
}

func (a *FCCAdapter) parseRow(sel *goquery.Selection) (domain.ArticlePreview, bool) {
	link := sel.Find("h3 a").First()
	if link.Length() == 0 {
		link = sel.Find("a").First()
	}

	href, _ := link.Attr("href")
	title := strings.TrimSpace(link.Text())
	if href == "" || title == "" {
		return domain.ArticlePreview{}, false
	}
	href = absoluteURL(fccBaseURL, href)

	article := domain.ArticlePreview{
		Title:   title,
		URL:     href,
		Source:  "fcc",
		Snippet: strings.TrimSpace(sel.Find("p").First().Text()),
	}

	dateText := strings.TrimSpace(sel.Find(".views-field-field-release-date, time").First().Text())
	if published, ok := parseFlexibleDate(dateText); ok {
		article.PublishedDate = &published
	}

	docType := strings.TrimSpace(sel.Find(".views-field-field-document-type").First().Text())
	article.DocumentType = docType

	return article, true
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
