package domain

import "time"

// JobStatus enumerates collection job lifecycle states.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// CollectionJob is one run of the collector over a fixed article set.
// Processed counts articles that reached a terminal per-article state
// (success, skipped or error); individual article errors never fail the job.
type CollectionJob struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Total     int       `json:"total"`
	Processed int       `json:"processed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Step names a per-article pipeline transition carried by a progress event.
type Step string

const (
	StepScraped     Step = "scraped"
	StepExtracting  Step = "extracting"
	StepExtracted   Step = "extracted"
	StepTranslating Step = "translating"
)

// EventStatus is the status field of a progress event.
type EventStatus string

const (
	EventProcessing EventStatus = "processing"
	EventSuccess    EventStatus = "success"
	EventError      EventStatus = "error"
	EventSkipped    EventStatus = "skipped"
	EventCompleted  EventStatus = "completed"
	EventFailed     EventStatus = "failed"
)

// ProgressEvent is one append-only record in a job's event log. Events
// without CurrentURL are job-lifecycle events. The aggregate counts are
// populated on the terminal completed/failed event only.
type ProgressEvent struct {
	Processed    int         `json:"processed"`
	Total        int         `json:"total"`
	CurrentURL   string      `json:"current_url,omitempty"`
	Step         Step        `json:"step,omitempty"`
	Status       EventStatus `json:"status"`
	Error        string      `json:"error,omitempty"`
	SuccessCount int         `json:"success_count,omitempty"`
	SkippedCount int         `json:"skipped_count,omitempty"`
	ErrorCount   int         `json:"error_count,omitempty"`
}

// Terminal reports whether the event ends the job's event log.
func (e ProgressEvent) Terminal() bool {
	return e.Status == EventCompleted || e.Status == EventFailed
}
