package storage

import (
	"context"
	"sync"
	"time"

	"RegCollector/internal/domain"
	"RegCollector/internal/ports"
)

// JobStore keeps collection job records in memory. Jobs are transient run
// state, not business data; they do not survive a restart.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.CollectionJob
}

var _ ports.JobStore = (*JobStore)(nil)

// NewJobStore returns an empty in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]domain.CollectionJob)}
}

// Create registers a new job record.
func (s *JobStore) Create(ctx context.Context, job domain.CollectionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

// Get returns the job record and whether it exists.
func (s *JobStore) Get(ctx context.Context, id string) (domain.CollectionJob, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok, nil
}

// SetStatus updates a job's lifecycle status.
func (s *JobStore) SetStatus(ctx context.Context, id string, status domain.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = status
		job.UpdatedAt = time.Now().UTC()
		s.jobs[id] = job
	}
	return nil
}

// SetProgress updates a job's processed count.
func (s *JobStore) SetProgress(ctx context.Context, id string, processed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Processed = processed
		job.UpdatedAt = time.Now().UTC()
		s.jobs[id] = job
	}
	return nil
}
