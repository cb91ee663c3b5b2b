package source

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"RegCollector/internal/domain"
)

const soumuBaseURL = "https://www.soumu.go.jp"

// SoumuAdapter scrapes the Soumu (MIC Japan) press release listing. Entries
// are filtered by the configured keywords; each returned preview records
// which keywords matched its title.
type SoumuAdapter struct {
	listURL  string
	keywords []string
	client   *http.Client
	logger   *slog.Logger
}

var _ Adapter = (*SoumuAdapter)(nil)

// NewSoumuAdapter wires the configured listing URL, default keywords and an
// HTTP client.
func NewSoumuAdapter(listURL string, keywords []string, client *http.Client, logger *slog.Logger) *SoumuAdapter {
	return &SoumuAdapter{
		listURL:  listURL,
		keywords: keywords,
		client:   defaultClient(client),
		logger:   logger,
	}
}

func (a *SoumuAdapter) Name() string { return "soumu" }

// Fetch returns Soumu press releases within the requested range that match
// at least one keyword. Request keywords override the configured defaults.
func (a *SoumuAdapter) Fetch(ctx context.Context, req Request) ([]domain.ArticlePreview, error) {
	doc, err := fetchDocument(ctx, a.client, a.listURL)
	if err != nil {
		return nil, err
	}

	keywords := req.Keywords
	if len(keywords) == 0 {
		keywords = a.keywords
	}

	results := make([]domain.ArticlePreview, 0)
	seen := map[string]struct{}{}

	doc.Find("div.news-list li, ul.news li").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if req.MaxArticles > 0 && len(results) >= req.MaxArticles {
			return false
		}

		article, ok := a.parseItem(sel, keywords)
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
		a.logger.Debug("soumu fetch done", "articles", len(results), "keywords", len(keywords))
	}
	return results, nil
}

func (a *SoumuAdapter) parseItem(sel *goquery.Selection, keywords []string) (domain.ArticlePreview, bool) {
	link := sel.Find("a").First()
	href, _ := link.Attr("href")
	title := strings.TrimSpace(link.Text())
	if href == "" || title == "" {
		return domain.ArticlePreview{}, false
	}

	matched := matchKeywords(title, keywords)
	if len(keywords) > 0 && len(matched) == 0 {
		return domain.ArticlePreview{}, false
	}

	article := domain.ArticlePreview{
		Title:           title,
		URL:             absoluteURL(soumuBaseURL, href),
		Source:          "soumu",
		MatchedKeywords: matched,
	}

	dateText := strings.TrimSpace(sel.Find("span.date, time").First().Text())
	if dateText == "" {
		// Date rendered as a leading text node on some listing variants.
		dateText = strings.TrimSpace(strings.TrimSuffix(sel.Text(), title))
	}
	if t, ok := parseJapaneseDate(dateText); ok {
		article.PublishedDate = &t
	}

	return article, true
}

func matchKeywords(title string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if kw != "" && strings.Contains(title, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}
