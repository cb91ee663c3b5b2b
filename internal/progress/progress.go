// Package progress reconstructs per-article pipeline state from a job's
// progress event stream. The server never sends per-article state; readers
// fold the events themselves.
package progress

import (
	"sync"

	"RegCollector/internal/domain"
)

// StepStatus is the reconstructed state of one pipeline phase.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepProcessing StepStatus = "processing"
	StepCompleted  StepStatus = "completed"
	StepError      StepStatus = "error"
)

// OverallStatus is the reconstructed state of one article across all phases.
type OverallStatus string

const (
	OverallPending    OverallStatus = "pending"
	OverallProcessing OverallStatus = "processing"
	OverallCompleted  OverallStatus = "completed"
	OverallSkipped    OverallStatus = "skipped"
	OverallError      OverallStatus = "error"
)

// ArticleProgress is the folded state of a single article.
type ArticleProgress struct {
	URL       string
	Title     string
	Source    string
	Scrape    StepStatus
	Extract   StepStatus
	Translate StepStatus
	Overall   OverallStatus
	Err       string
}

// Summary is the job-level state after folding.
type Summary struct {
	Processed    int
	Total        int
	Done         bool
	Failed       bool
	SuccessCount int
	SkippedCount int
	ErrorCount   int
}

// Tracker folds progress events into per-article and job-level state. Safe
// for one goroutine applying events while others read snapshots.
type Tracker struct {
	mu       sync.Mutex
	articles map[string]*ArticleProgress
	order    []string
	summary  Summary
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{articles: make(map[string]*ArticleProgress)}
}

// Seed pre-registers the articles the job will process so the UI can show
// pending rows before the first event arrives.
func (t *Tracker) Seed(previews []domain.ArticlePreview) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range previews {
		a := t.article(p.URL)
		a.Title = p.Title
		a.Source = p.Source
	}
}

// Apply folds one event. Events carrying a CurrentURL mutate that article's
// state; events without one update only the job summary.
func (t *Tracker) Apply(event domain.ProgressEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.summary.Processed = event.Processed
	t.summary.Total = event.Total

	if event.Terminal() {
		t.summary.Done = true
		t.summary.Failed = event.Status == domain.EventFailed
		t.summary.SuccessCount = event.SuccessCount
		t.summary.SkippedCount = event.SkippedCount
		t.summary.ErrorCount = event.ErrorCount
		return
	}

	if event.CurrentURL == "" {
		return
	}

	a := t.article(event.CurrentURL)

	switch event.Status {
	case domain.EventProcessing:
		switch event.Step {
		case domain.StepScraped:
			a.Scrape = StepCompleted
		case domain.StepExtracting:
			a.Scrape = StepCompleted
			a.Extract = StepProcessing
		case domain.StepExtracted:
			a.Scrape = StepCompleted
			a.Extract = StepCompleted
		case domain.StepTranslating:
			a.Scrape = StepCompleted
			a.Extract = StepCompleted
			a.Translate = StepProcessing
		default:
			a.Scrape = StepProcessing
		}
		a.Overall = OverallProcessing
	case domain.EventSuccess:
		a.Scrape = StepCompleted
		a.Extract = StepCompleted
		a.Translate = StepCompleted
		a.Overall = OverallCompleted
	case domain.EventSkipped:
		a.Scrape = StepCompleted
		a.Extract = StepCompleted
		a.Translate = StepCompleted
		a.Overall = OverallSkipped
	case domain.EventError:
		// Step statuses keep whatever partial progress was reached.
		a.Overall = OverallError
		a.Err = event.Error
	}
}

// Articles returns per-article snapshots in first-seen order.
func (t *Tracker) Articles() []ArticleProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ArticleProgress, 0, len(t.order))
	for _, url := range t.order {
		out = append(out, *t.articles[url])
	}
	return out
}

// Article returns the snapshot for one URL.
func (t *Tracker) Article(url string) (ArticleProgress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.articles[url]
	if !ok {
		return ArticleProgress{}, false
	}
	return *a, true
}

// Summary returns the job-level snapshot.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary
}

func (t *Tracker) article(url string) *ArticleProgress {
	a, ok := t.articles[url]
	if !ok {
		a = &ArticleProgress{
			URL:       url,
			Scrape:    StepPending,
			Extract:   StepPending,
			Translate: StepPending,
			Overall:   OverallPending,
		}
		t.articles[url] = a
		t.order = append(t.order, url)
	}
	return a
}
