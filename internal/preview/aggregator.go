// Package preview implements the read-only, non-committing candidate query:
// fan out to the selected source adapters, mark duplicates against the
// article store and merge everything into one ordered list.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"RegCollector/internal/daterange"
	"RegCollector/internal/domain"
	"RegCollector/internal/ports"
	"RegCollector/internal/source"
)

// Request carries the caller's preview parameters.
type Request struct {
	Sources   []string `json:"sources"`
	DateRange string   `json:"date_range"`
	Keywords  []string `json:"keywords,omitempty"`
}

// Result is the aggregated preview. Data groups articles per source for
// display; Combined is the merged ordering (non-duplicates first, newest
// first, dateless last within each partition).
type Result struct {
	Data       map[string][]domain.ArticlePreview `json:"data"`
	Combined   []domain.ArticlePreview            `json:"combined"`
	Warnings   []string                           `json:"warnings"`
	TotalCount int                                `json:"total_count"`
	NewCount   int                                `json:"new_count"`
}

// Aggregator fans out to source adapters and folds their results.
type Aggregator struct {
	registry    *source.Registry
	store       ports.ArticleStore
	maxArticles int
	logger      *slog.Logger
}

// NewAggregator wires the source registry and the dedup-backing store.
func NewAggregator(registry *source.Registry, store ports.ArticleStore, maxArticles int, logger *slog.Logger) *Aggregator {
	if maxArticles <= 0 {
		maxArticles = 50
	}
	return &Aggregator{
		registry:    registry,
		store:       store,
		maxArticles: maxArticles,
		logger:      logger,
	}
}

type sourceOutcome struct {
	name     string
	articles []domain.ArticlePreview
	err      error
}

// Preview validates the request, queries all selected sources concurrently
// and returns the merged, duplicate-annotated result. One source failing
// contributes a warning, never an abort; only malformed input fails the call.
func (a *Aggregator) Preview(ctx context.Context, req Request) (Result, error) {
	sources := normalizeSources(req.Sources)
	if len(sources) == 0 {
		return Result{}, &domain.ValidationError{Msg: "at least one source is required"}
	}

	rng, err := daterange.Parse(req.DateRange)
	if err != nil {
		return Result{}, err
	}

	outcomes := a.fanOut(ctx, sources, req.Keywords, rng)

	result := Result{Data: make(map[string][]domain.ArticlePreview, len(outcomes))}
	var all []domain.ArticlePreview

	for _, out := range outcomes {
		if out.err != nil {
			ferr := &domain.SourceFetchError{Source: out.name, Err: out.err}
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s fetch failed: %v", strings.ToUpper(out.name), out.err))
			result.Data[out.name] = []domain.ArticlePreview{}
			if a.logger != nil {
				a.logger.Warn("source fetch failed", "source", out.name, "error", ferr)
			}
			continue
		}
		result.Data[out.name] = out.articles
		all = append(all, out.articles...)
	}

	if err := a.markDuplicates(ctx, result.Data, all); err != nil {
		return Result{}, fmt.Errorf("check duplicates: %w", err)
	}

	duplicates := 0
	for name := range result.Data {
		sortPreviews(result.Data[name])
	}

	result.Combined = make([]domain.ArticlePreview, 0, len(all))
	for _, name := range sortedKeys(result.Data) {
		result.Combined = append(result.Combined, result.Data[name]...)
	}
	sortPreviews(result.Combined)

	for _, article := range result.Combined {
		if article.IsDuplicate {
			duplicates++
		}
	}

	result.TotalCount = len(result.Combined)
	result.NewCount = result.TotalCount - duplicates

	if duplicates > 0 {
		warning := fmt.Sprintf("%d previously collected article(s) are marked as duplicates", duplicates)
		result.Warnings = append([]string{warning}, result.Warnings...)
	}

	if a.logger != nil {
		a.logger.Info("preview completed",
			"total", result.TotalCount, "new", result.NewCount, "warnings", len(result.Warnings))
	}

	return result, nil
}

// normalizeSources lower-cases, trims and de-duplicates the requested source
// names, preserving first-seen order. A source listed twice is queried once.
func normalizeSources(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	sources := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		sources = append(sources, name)
	}
	return sources
}

func (a *Aggregator) fanOut(ctx context.Context, sources, keywords []string, rng daterange.Range) []sourceOutcome {
	outcomes := make([]sourceOutcome, len(sources))

	var wg sync.WaitGroup
	for i, name := range sources {
		outcomes[i].name = name

		adapter, err := a.registry.Resolve(name)
		if err != nil {
			outcomes[i].err = err
			continue
		}

		wg.Add(1)
		go func(i int, adapter source.Adapter) {
			defer wg.Done()
			articles, err := adapter.Fetch(ctx, source.Request{
				Range:       rng,
				MaxArticles: a.maxArticles,
				Keywords:    keywords,
			})
			outcomes[i].articles = articles
			outcomes[i].err = err
		}(i, adapter)
	}
	wg.Wait()

	return outcomes
}

func (a *Aggregator) markDuplicates(ctx context.Context, data map[string][]domain.ArticlePreview, all []domain.ArticlePreview) error {
	if len(all) == 0 {
		return nil
	}

	urls := make([]string, 0, len(all))
	for _, article := range all {
		urls = append(urls, article.URL)
	}

	existing, err := a.store.ExistingURLs(ctx, urls)
	if err != nil {
		return err
	}

	for name, articles := range data {
		for i := range articles {
			articles[i].IsDuplicate = existing[articles[i].URL]
		}
		data[name] = articles
	}

	return nil
}

// sortPreviews orders non-duplicates before duplicates; within each
// partition by published date descending, dateless items last.
func sortPreviews(articles []domain.ArticlePreview) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if a.IsDuplicate != b.IsDuplicate {
			return !a.IsDuplicate
		}
		switch {
		case a.PublishedDate == nil && b.PublishedDate == nil:
			return false
		case a.PublishedDate == nil:
			return false
		case b.PublishedDate == nil:
			return true
		default:
			return a.PublishedDate.After(*b.PublishedDate)
		}
	})
}

func sortedKeys(data map[string][]domain.ArticlePreview) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
