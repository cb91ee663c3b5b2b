package domain

import "fmt"

// ValidationError rejects malformed input before any I/O happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// SourceFetchError isolates one source adapter's failure; the preview
// aggregator converts it into a warning instead of aborting.
type SourceFetchError struct {
	Source string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// ScrapeError is returned by the scrape capability after its own retries
// are exhausted.
type ScrapeError struct {
	URL string
	Err error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s: %v", e.URL, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// TranslationError is returned by the translate capability after its own
// retries are exhausted.
type TranslationError struct {
	Err error
}

func (e *TranslationError) Error() string { return fmt.Sprintf("translate: %v", e.Err) }

func (e *TranslationError) Unwrap() error { return e.Err }

// ArticleProcessingError records a single article's pipeline failure. It is
// isolated per article and never aborts sibling processing.
type ArticleProcessingError struct {
	URL   string
	Phase string
	Err   error
}

func (e *ArticleProcessingError) Error() string {
	return fmt.Sprintf("article %s: %s failed: %v", e.URL, e.Phase, e.Err)
}

func (e *ArticleProcessingError) Unwrap() error { return e.Err }

// JobFaultError is a fault outside any single article's control (for example
// the article store becoming unreachable); it aborts the whole job.
type JobFaultError struct {
	Err error
}

func (e *JobFaultError) Error() string { return fmt.Sprintf("job fault: %v", e.Err) }

func (e *JobFaultError) Unwrap() error { return e.Err }
