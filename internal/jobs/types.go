package jobs

import (
	"context"
	"time"

	"github.com/rahulvm/dashbrain/internal/record"
)

// JobType identifies the kind of work a job carries.
type JobType string

const (
	// JobTypeExtractStatement is a multi-page bank statement extraction job.
	JobTypeExtractStatement JobType = "extract_statement"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ExtractStatementJob is a queued request to run a multi-page statement
// through the model, one page at a time. Pages are base64 data URIs; the
// merged transactions land in Result when the job completes.
type ExtractStatementJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Pages holds the statement page images, in document order.
	Pages []string `json:"pages"`

	// Result holds the merged transactions once the job completes.
	Result []record.ExtractedTransaction `json:"result,omitempty"`

	// Status is the current lifecycle state.
	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds failure details when Status is failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is the generic view the queue workers operate on.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ExtractStatementJob) GetID() string        { return j.JobID }
func (j *ExtractStatementJob) GetType() JobType     { return JobTypeExtractStatement }
func (j *ExtractStatementJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs. The abstraction allows swapping the in-memory
// queue for a hosted broker without touching the handlers.
type Publisher interface {
	// PublishExtractStatement enqueues a statement extraction job.
	PublishExtractStatement(ctx context.Context, job *ExtractStatementJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer pulls jobs off the queue and runs them through a handler.
type Consumer interface {
	// Start begins consuming jobs. The handler is called for each job.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to finish.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error marks the job for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore persists job state so callers can poll for results.
type JobStore interface {
	SaveJob(ctx context.Context, job *ExtractStatementJob) error
	GetJob(ctx context.Context, jobID string) (*ExtractStatementJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExtractStatementJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	// Status filters jobs by lifecycle state.
	Status JobStatus

	// Limit caps the number of results.
	Limit int

	// Offset skips results for pagination.
	Offset int
}
