package progress

import (
	"testing"

	"RegCollector/internal/domain"
)

func TestTrackerSuccessPath(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	url := "https://fcc.gov/a"

	events := []domain.ProgressEvent{
		{Status: domain.EventProcessing, Total: 1},
		{Status: domain.EventProcessing, CurrentURL: url, Total: 1},
		{Status: domain.EventProcessing, CurrentURL: url, Step: domain.StepScraped, Total: 1},
		{Status: domain.EventProcessing, CurrentURL: url, Step: domain.StepExtracting, Total: 1},
		{Status: domain.EventProcessing, CurrentURL: url, Step: domain.StepExtracted, Total: 1},
		{Status: domain.EventProcessing, CurrentURL: url, Step: domain.StepTranslating, Total: 1},
		{Status: domain.EventSuccess, CurrentURL: url, Processed: 1, Total: 1},
	}
	for _, e := range events {
		tr.Apply(e)
	}

	a, ok := tr.Article(url)
	if !ok {
		t.Fatal("article not tracked")
	}
	if a.Scrape != StepCompleted || a.Extract != StepCompleted || a.Translate != StepCompleted {
		t.Fatalf("all steps must complete, got %+v", a)
	}
	if a.Overall != OverallCompleted {
		t.Fatalf("overall = %s, want completed", a.Overall)
	}
}

func TestTrackerIntermediateStates(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	url := "https://fcc.gov/a"

	tr.Apply(domain.ProgressEvent{Status: domain.EventProcessing, CurrentURL: url, Total: 1})
	a, _ := tr.Article(url)
	if a.Scrape != StepProcessing || a.Extract != StepPending || a.Overall != OverallProcessing {
		t.Fatalf("after scrape entry: %+v", a)
	}

	tr.Apply(domain.ProgressEvent{Status: domain.EventProcessing, CurrentURL: url, Step: domain.StepExtracting, Total: 1})
	a, _ = tr.Article(url)
	if a.Scrape != StepCompleted || a.Extract != StepProcessing || a.Translate != StepPending {
		t.Fatalf("after extracting: %+v", a)
	}

	tr.Apply(domain.ProgressEvent{Status: domain.EventProcessing, CurrentURL: url, Step: domain.StepTranslating, Total: 1})
	a, _ = tr.Article(url)
	if a.Extract != StepCompleted || a.Translate != StepProcessing {
		t.Fatalf("after translating: %+v", a)
	}
}

func TestTrackerErrorPreservesCompletedSteps(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	url := "https://fcc.gov/a"

	tr.Apply(domain.ProgressEvent{Status: domain.EventProcessing, CurrentURL: url, Total: 1})
	tr.Apply(domain.ProgressEvent{Status: domain.EventProcessing, CurrentURL: url, Step: domain.StepScraped, Total: 1})
	tr.Apply(domain.ProgressEvent{Status: domain.EventProcessing, CurrentURL: url, Step: domain.StepExtracting, Total: 1})
	tr.Apply(domain.ProgressEvent{Status: domain.EventError, CurrentURL: url, Error: "extract failed", Processed: 1, Total: 1})

	a, _ := tr.Article(url)
	if a.Scrape != StepCompleted {
		t.Fatalf("completed scrape must stay completed, got %s", a.Scrape)
	}
	if a.Extract != StepProcessing {
		t.Fatalf("in-flight extract keeps its last state, got %s", a.Extract)
	}
	if a.Translate != StepPending {
		t.Fatalf("never-started translate must stay pending, got %s", a.Translate)
	}
	if a.Overall != OverallError || a.Err != "extract failed" {
		t.Fatalf("overall error state: %+v", a)
	}
}

func TestTrackerErrorDuringTranslate(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	url := "https://fcc.gov/a"

	tr.Apply(domain.ProgressEvent{Status: domain.EventProcessing, CurrentURL: url, Total: 1})
	tr.Apply(domain.ProgressEvent{Status: domain.EventProcessing, CurrentURL: url, Step: domain.StepScraped, Total: 1})
	tr.Apply(domain.ProgressEvent{Status: domain.EventProcessing, CurrentURL: url, Step: domain.StepExtracting, Total: 1})
	tr.Apply(domain.ProgressEvent{Status: domain.EventProcessing, CurrentURL: url, Step: domain.StepExtracted, Total: 1})
	tr.Apply(domain.ProgressEvent{Status: domain.EventProcessing, CurrentURL: url, Step: domain.StepTranslating, Total: 1})
	tr.Apply(domain.ProgressEvent{Status: domain.EventError, CurrentURL: url, Error: "translate failed", Processed: 1, Total: 1})

	a, _ := tr.Article(url)
	if a.Scrape != StepCompleted || a.Extract != StepCompleted {
		t.Fatalf("completed steps must survive the error: %+v", a)
	}
	if a.Translate != StepProcessing {
		t.Fatalf("in-flight translate keeps its last state, got %s", a.Translate)
	}
	if a.Overall != OverallError || a.Err != "translate failed" {
		t.Fatalf("overall error state: %+v", a)
	}
}

func TestTrackerScrapeErrorBeforeAnyStep(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	url := "https://fcc.gov/a"

	tr.Apply(domain.ProgressEvent{Status: domain.EventProcessing, CurrentURL: url, Total: 1})
	tr.Apply(domain.ProgressEvent{Status: domain.EventError, CurrentURL: url, Error: "scrape failed", Processed: 1, Total: 1})

	a, _ := tr.Article(url)
	if a.Scrape != StepProcessing || a.Extract != StepPending || a.Translate != StepPending {
		t.Fatalf("scrape error must preserve step statuses as they were: %+v", a)
	}
	if a.Overall != OverallError {
		t.Fatalf("overall = %s, want error", a.Overall)
	}
}

func TestTrackerSkippedMarksAllCompleted(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	url := "https://fcc.gov/a"

	tr.Apply(domain.ProgressEvent{Status: domain.EventSkipped, CurrentURL: url, Processed: 1, Total: 1})

	a, _ := tr.Article(url)
	if a.Scrape != StepCompleted || a.Extract != StepCompleted || a.Translate != StepCompleted {
		t.Fatalf("skipped article shows every step completed, got %+v", a)
	}
	if a.Overall != OverallSkipped {
		t.Fatalf("overall = %s, want skipped", a.Overall)
	}
}

func TestTrackerTerminalSummary(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Apply(domain.ProgressEvent{
		Status: domain.EventCompleted, Processed: 5, Total: 5,
		SuccessCount: 3, SkippedCount: 1, ErrorCount: 1,
	})

	s := tr.Summary()
	if !s.Done || s.Failed {
		t.Fatalf("completed summary: %+v", s)
	}
	if s.SuccessCount+s.SkippedCount+s.ErrorCount != s.Total {
		t.Fatalf("terminal counts must sum to total: %+v", s)
	}
}

func TestTrackerSeedOrder(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Seed([]domain.ArticlePreview{
		{URL: "https://x/a", Title: "A", Source: "fcc"},
		{URL: "https://x/b", Title: "B", Source: "ofcom"},
	})

	articles := tr.Articles()
	if len(articles) != 2 {
		t.Fatalf("expected 2 seeded articles, got %d", len(articles))
	}
	if articles[0].URL != "https://x/a" || articles[0].Overall != OverallPending {
		t.Fatalf("seed order/state: %+v", articles[0])
	}
	if articles[1].Title != "B" || articles[1].Source != "ofcom" {
		t.Fatalf("seed metadata: %+v", articles[1])
	}
}
