package ports

import (
	"context"
	"time"

	"RegCollector/internal/domain"
)

// Scraper fetches the full content of a single article URL. Implementations
// own their retry policy and surface *domain.ScrapeError once exhausted.
type Scraper interface {
	Scrape(ctx context.Context, url string) (domain.ScrapedContent, error)
}

// Extractor normalizes scraped content into clean article text.
type Extractor interface {
	Extract(ctx context.Context, pageURL string, content domain.ScrapedContent) (string, error)
}

// Translator converts article title and body into the publication language.
type Translator interface {
	Translate(ctx context.Context, title, content string) (domain.Translation, error)
}

// ArticleFilter narrows an article store query.
type ArticleFilter struct {
	Sources     []string
	CountryCode string
	From        *time.Time
	To          *time.Time
	Limit       int
}

// ArticleStore persists collected articles. It is the single source of truth
// for "is this URL already collected": every dedup decision, preview-time and
// collection-time, goes through Exists/ExistingURLs.
type ArticleStore interface {
	Exists(ctx context.Context, url string) (bool, error)
	ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error)
	Save(ctx context.Context, article domain.Article) (string, error)
	SaveAttachments(ctx context.Context, articleID string, attachments []domain.Attachment) error
	Query(ctx context.Context, filter ArticleFilter) ([]domain.Article, error)
}

// AttachmentStore downloads linked documents to local storage.
type AttachmentStore interface {
	Download(ctx context.Context, url string) (domain.Attachment, error)
}

// JobStore tracks collection job records. Injected rather than ambient so
// tests can run against fakes without cross-test leakage.
type JobStore interface {
	Create(ctx context.Context, job domain.CollectionJob) error
	Get(ctx context.Context, id string) (domain.CollectionJob, bool, error)
	SetStatus(ctx context.Context, id string, status domain.JobStatus) error
	SetProgress(ctx context.Context, id string, processed int) error
}

// EventStream is the per-job progress event log: single writer (the job
// runner), multiple readers. Subscribe returns a receive channel and a cancel
// function; the channel is closed after the job's terminal event. When
// backlog is true the buffered event history is replayed first.
type EventStream interface {
	Publish(jobID string, event domain.ProgressEvent)
	Subscribe(jobID string, backlog bool) (<-chan domain.ProgressEvent, func())
}
