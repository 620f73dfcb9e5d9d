package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rahulvm/dashbrain/internal/jobs"
)

// Queue is an in-memory job publisher and consumer backed by a channel.
// It is safe for concurrent use and suited to single-instance deployments;
// a hosted broker can replace it behind the same interfaces.
//
// Extraction jobs run on a single worker: the model provider is paced per
// page, and running statements concurrently would double-spend the quota.
const workerCount = 1

type Queue struct {
	jobChan   chan *jobs.ExtractStatementJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	closed    bool
}

// NewQueue creates an in-memory queue. bufferSize is how many jobs can wait
// before PublishExtractStatement blocks.
func NewQueue(bufferSize int, store jobs.JobStore) *Queue {
	return &Queue{
		jobChan:   make(chan *jobs.ExtractStatementJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
	}
}

// PublishExtractStatement implements jobs.Publisher. It fills in the job's
// identity and bookkeeping fields, persists it, and enqueues it.
func (q *Queue) PublishExtractStatement(ctx context.Context, job *jobs.ExtractStatementJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("PublishExtractStatement: queue is closed")
	}
	if len(job.Pages) == 0 {
		return fmt.Errorf("PublishExtractStatement: job has no pages")
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = 3
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("PublishExtractStatement: save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("PublishExtractStatement: queue is closed")
	}
}

// Start implements jobs.Consumer.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("Start: queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < workerCount; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.processJob(ctx, job, handler)
		}
	}
}

// processJob runs one job through the handler and records the outcome.
// Failed jobs are re-enqueued with linear backoff until MaxRetries.
func (q *Queue) processJob(ctx context.Context, job *jobs.ExtractStatementJob, handler jobs.JobHandler) {
	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Error = err.Error()

		if job.RetryCount < job.MaxRetries {
			job.Status = jobs.JobStatusRetrying

			// Re-enqueue a detached copy with linear backoff. The worker keeps
			// mutating job after this point, and the per-call ctx may be gone
			// by the time the timer fires.
			retry := *job
			retry.RetryCount++
			retry.Status = jobs.JobStatusPending
			retry.StartedAt = nil
			retry.CompletedAt = nil

			backoff := time.Duration(retry.RetryCount) * time.Second
			time.AfterFunc(backoff, func() {
				_ = q.PublishExtractStatement(context.Background(), &retry)
			})
		} else {
			job.Status = jobs.JobStatusFailed
		}
	} else {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
	}

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}
}

// Stop implements jobs.Consumer. It waits for in-flight jobs to finish,
// bounded by ctx.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements jobs.Publisher.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
