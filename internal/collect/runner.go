// Package collect runs collection jobs: for each selected article it
// scrapes, extracts and translates the content, persists the result and
// publishes progress events along the way.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"RegCollector/internal/country"
	"RegCollector/internal/domain"
	"RegCollector/internal/ports"
)

// RunnerDeps bundles everything a runner needs.
type RunnerDeps struct {
	Articles    ports.ArticleStore
	Jobs        ports.JobStore
	Events      ports.EventStream
	Scraper     ports.Scraper
	Extractor   ports.Extractor
	Translator  ports.Translator
	Attachments ports.AttachmentStore
	Workers     int
	Logger      *slog.Logger
}

// Runner executes collection jobs with bounded per-article concurrency.
type Runner struct {
	deps    RunnerDeps
	workers int
	logger  *slog.Logger
}

// NewRunner builds a runner. Workers below 1 falls back to 3.
func NewRunner(deps RunnerDeps) *Runner {
	workers := deps.Workers
	if workers < 1 {
		workers = 3
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{deps: deps, workers: workers, logger: logger}
}

// StartCollection registers a new job for the selected articles and launches
// it in the background. The returned job is in the pending state; progress is
// observed through the event stream.
func (r *Runner) StartCollection(ctx context.Context, selected []domain.ArticlePreview) (domain.CollectionJob, error) {
	articles := make([]domain.ArticlePreview, 0, len(selected))
	for _, a := range selected {
		if strings.TrimSpace(a.URL) == "" {
			continue
		}
		articles = append(articles, a)
	}
	if len(articles) == 0 {
		return domain.CollectionJob{}, &domain.ValidationError{Msg: "no articles selected"}
	}

	now := time.Now().UTC()
	job := domain.CollectionJob{
		ID:        uuid.NewString(),
		Status:    domain.JobPending,
		Total:     len(articles),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.deps.Jobs.Create(ctx, job); err != nil {
		return domain.CollectionJob{}, fmt.Errorf("create job: %w", err)
	}

	// The job outlives the request that started it.
	go r.run(context.WithoutCancel(ctx), job, articles)

	return job, nil
}

// counters accumulates per-article outcomes under one lock so every terminal
// per-article event carries a consistent processed count.
type counters struct {
	mu        sync.Mutex
	processed int
	success   int
	skipped   int
	errored   int
}

// finish records one terminal article outcome and invokes publish with the
// new processed count while still holding the lock, so terminal events leave
// the stream in increment order and counters never appear to regress.
func (c *counters) finish(status domain.EventStatus, publish func(processed int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed++
	switch status {
	case domain.EventSuccess:
		c.success++
	case domain.EventSkipped:
		c.skipped++
	case domain.EventError:
		c.errored++
	}
	publish(c.processed)
}

func (c *counters) snapshot() (processed, success, skipped, errored int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processed, c.success, c.skipped, c.errored
}

func (r *Runner) run(ctx context.Context, job domain.CollectionJob, articles []domain.ArticlePreview) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := r.logger.With("job_id", job.ID)
	log.Info("collection started", "total", job.Total, "workers", r.workers)

	if err := r.deps.Jobs.SetStatus(ctx, job.ID, domain.JobProcessing); err != nil {
		log.Error("set job status", "error", err)
	}
	r.deps.Events.Publish(job.ID, domain.ProgressEvent{
		Status: domain.EventProcessing,
		Total:  job.Total,
	})

	var (
		cnt       counters
		faultOnce sync.Once
		fault     error
		wg        sync.WaitGroup
	)
	sem := make(chan struct{}, r.workers)

	for _, article := range articles {
		wg.Add(1)
		go func(article domain.ArticlePreview) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			if ctx.Err() != nil {
				return
			}

			status, errMsg, perr := r.processArticle(ctx, job, article, &cnt)
			if perr != nil {
				// Infrastructure fault: stop siblings, fail the job.
				faultOnce.Do(func() {
					fault = perr
					cancel()
				})
				return
			}
			if ctx.Err() != nil {
				// Sibling fault cancelled this article mid-flight.
				return
			}

			cnt.finish(status, func(processed int) {
				if err := r.deps.Jobs.SetProgress(context.WithoutCancel(ctx), job.ID, processed); err != nil {
					log.Error("set job progress", "error", err)
				}
				r.deps.Events.Publish(job.ID, domain.ProgressEvent{
					Status:     status,
					CurrentURL: article.URL,
					Processed:  processed,
					Total:      job.Total,
					Error:      errMsg,
				})
			})
		}(article)
	}
	wg.Wait()

	processed, success, skipped, errored := cnt.snapshot()
	final := domain.ProgressEvent{
		Processed:    processed,
		Total:        job.Total,
		SuccessCount: success,
		SkippedCount: skipped,
		ErrorCount:   errored,
	}

	status := domain.JobCompleted
	final.Status = domain.EventCompleted
	if fault != nil {
		status = domain.JobFailed
		final.Status = domain.EventFailed
		final.Error = fault.Error()
		log.Error("collection failed", "error", fault, "processed", processed)
	} else {
		log.Info("collection completed",
			"success", success, "skipped", skipped, "errors", errored)
	}

	if err := r.deps.Jobs.SetStatus(context.WithoutCancel(ctx), job.ID, status); err != nil {
		log.Error("set job status", "error", err)
	}
	r.deps.Events.Publish(job.ID, final)
}

// processArticle runs one article through the pipeline. The returned status
// is the article's terminal state and errMsg its failure text; a non-nil
// error is a job-level fault.
func (r *Runner) processArticle(ctx context.Context, job domain.CollectionJob, article domain.ArticlePreview, cnt *counters) (status domain.EventStatus, errMsg string, fault error) {
	log := r.logger.With("job_id", job.ID, "url", article.URL)

	exists, err := r.deps.Articles.Exists(ctx, article.URL)
	if err != nil {
		return "", "", &domain.JobFaultError{Err: fmt.Errorf("check existing: %w", err)}
	}
	if exists {
		log.Info("article already collected, skipping")
		return domain.EventSkipped, "", nil
	}

	publish := func(step domain.Step) {
		processed, _, _, _ := cnt.snapshot()
		r.deps.Events.Publish(job.ID, domain.ProgressEvent{
			Status:     domain.EventProcessing,
			CurrentURL: article.URL,
			Step:       step,
			Processed:  processed,
			Total:      job.Total,
		})
	}
	publish("")

	content, err := r.deps.Scraper.Scrape(ctx, article.URL)
	if err != nil {
		log.Warn("scrape failed", "error", err)
		return domain.EventError, phaseError(article.URL, "scrape", err), nil
	}
	publish(domain.StepScraped)

	publish(domain.StepExtracting)
	text, err := r.deps.Extractor.Extract(ctx, article.URL, content)
	if err != nil {
		log.Warn("extract failed", "error", err)
		return domain.EventError, phaseError(article.URL, "extract", err), nil
	}
	publish(domain.StepExtracted)

	publish(domain.StepTranslating)
	translation, err := r.deps.Translator.Translate(ctx, article.Title, text)
	if err != nil {
		log.Warn("translate failed", "error", err)
		return domain.EventError, phaseError(article.URL, "translate", err), nil
	}

	code, _ := country.Map(article.Source)
	saved := domain.Article{
		URL:             article.URL,
		Title:           article.Title,
		Source:          article.Source,
		CountryCode:     string(code),
		PublishedDate:   article.PublishedDate,
		Content:         text,
		TranslatedTitle: translation.Title,
		TranslatedBody:  translation.Content,
		CollectedAt:     time.Now().UTC(),
	}
	articleID, err := r.deps.Articles.Save(ctx, saved)
	if err != nil {
		return "", "", &domain.JobFaultError{Err: fmt.Errorf("save article: %w", err)}
	}

	r.collectAttachments(ctx, log, articleID, article.URL, content.HTML)

	return domain.EventSuccess, "", nil
}

// collectAttachments downloads linked documents. Failures are logged and
// never affect the article's outcome.
func (r *Runner) collectAttachments(ctx context.Context, log *slog.Logger, articleID, pageURL, html string) {
	if r.deps.Attachments == nil || html == "" {
		return
	}

	links, err := DocumentLinks(html, pageURL)
	if err != nil {
		log.Warn("extract attachment links", "error", err)
		return
	}

	var attachments []domain.Attachment
	for _, link := range links {
		att, err := r.deps.Attachments.Download(ctx, link)
		if err != nil {
			log.Warn("download attachment", "attachment_url", link, "error", err)
			continue
		}
		attachments = append(attachments, att)
	}
	if len(attachments) == 0 {
		return
	}
	if err := r.deps.Articles.SaveAttachments(ctx, articleID, attachments); err != nil {
		log.Warn("save attachments", "error", err)
	}
}

func phaseError(url, phase string, err error) string {
	perr := &domain.ArticleProcessingError{URL: url, Phase: phase, Err: err}
	return perr.Error()
}
