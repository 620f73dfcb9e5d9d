package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rahulvm/dashbrain/internal/jobs"
)

// Store keeps job state in memory so callers can poll extraction results.
// Data is lost on restart.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ExtractStatementJob
}

// NewStore creates an empty in-memory job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.ExtractStatementJob),
	}
}

// SaveJob saves or updates a job. The stored copy is detached from the
// caller's pointer.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ExtractStatementJob) error {
	if job.JobID == "" {
		return fmt.Errorf("SaveJob: job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ExtractStatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("GetJob: job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs retrieves jobs matching filter, newest first.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExtractStatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*jobs.ExtractStatementJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		result = append(result, &jobCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.ExtractStatementJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// UpdateJobStatus updates one job's lifecycle state.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("UpdateJobStatus: job not found: %s", jobID)
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	return nil
}

var _ jobs.JobStore = (*Store)(nil)
