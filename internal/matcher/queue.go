package matcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"petmatch/internal/logging"
	"petmatch/internal/models"
)

// Runner executes one match run.
type Runner interface {
	IdentifyAndMatch(ctx context.Context, postID int64, postType models.PostType) (*Report, error)
}

// TriggerGuard admits the first trigger for a post and rejects repeats.
// Release hands the post back when an admitted trigger never reached a worker.
type TriggerGuard interface {
	Acquire(ctx context.Context, postID int64) (bool, error)
	Release(ctx context.Context, postID int64) error
}

type QueueOptions struct {
	Size    int
	Workers int
	// Guard is optional.
	Guard TriggerGuard
}

// Job is a submitted match run. Done is closed once the run has finished.
type Job struct {
	ID       uuid.UUID
	PostID   int64
	PostType models.PostType

	done   chan struct{}
	report *Report
	err    error
}

func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Report is valid after Done is closed.
func (j *Job) Report() *Report {
	return j.report
}

// Err is valid after Done is closed.
func (j *Job) Err() error {
	return j.err
}

// Queue runs match jobs on a fixed set of workers. Submit never blocks.
type Queue struct {
	runner  Runner
	guard   TriggerGuard
	workers int
	logger  logging.Logger

	jobs   chan *Job
	mu     sync.RWMutex
	closed bool
	start  sync.Once
	wg     sync.WaitGroup
}

func NewQueue(runner Runner, opts QueueOptions, logger logging.Logger) *Queue {
	if opts.Size <= 0 {
		opts.Size = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	return &Queue{
		runner:  runner,
		guard:   opts.Guard,
		workers: opts.Workers,
		logger:  logger,
		jobs:    make(chan *Job, opts.Size),
	}
}

// Start launches the workers. Jobs run with ctx's values but are not
// cancelled with it; use Shutdown to stop the queue.
func (q *Queue) Start(ctx context.Context) {
	q.start.Do(func() {
		jobCtx := context.WithoutCancel(ctx)
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func() {
				defer q.wg.Done()
				for job := range q.jobs {
					q.run(jobCtx, job)
				}
			}()
		}
		q.logger.Info(ctx, "match queue started", "workers", q.workers, "size", cap(q.jobs))
	})
}

// Submit enqueues a match run for a freshly committed post.
func (q *Queue) Submit(ctx context.Context, postID int64, postType models.PostType) (*Job, error) {
	if q.isClosed() {
		return nil, ErrQueueClosed
	}

	acquired := false
	if q.guard != nil {
		ok, err := q.guard.Acquire(ctx, postID)
		switch {
		case err != nil:
			q.logger.Warn(ctx, "trigger guard unavailable, enqueueing anyway", "post_id", postID, "error", err)
		case !ok:
			return nil, fmt.Errorf("post %d: %w", postID, ErrDuplicateTrigger)
		default:
			acquired = true
		}
	}

	job := &Job{
		ID:       uuid.New(),
		PostID:   postID,
		PostType: postType,
		done:     make(chan struct{}),
	}

	if err := q.enqueue(job); err != nil {
		if acquired {
			q.release(ctx, postID)
		}
		return nil, err
	}
	return job, nil
}

func (q *Queue) enqueue(job *Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) release(ctx context.Context, postID int64) {
	if q.guard == nil {
		return
	}
	if err := q.guard.Release(ctx, postID); err != nil {
		q.logger.Warn(ctx, "failed to release trigger guard", "post_id", postID, "error", err)
	}
}

// Shutdown stops intake and waits for queued and running jobs to finish or
// for ctx to expire. On a queue that was never started, pending jobs are
// finished with ErrQueueClosed and a later Start does nothing.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	q.start.Do(func() {
		for job := range q.jobs {
			job.err = ErrQueueClosed
			close(job.done)
			q.release(ctx, job.PostID)
		}
	})

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("match queue shutdown: %w", ctx.Err())
	}
}

func (q *Queue) isClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *Queue) run(ctx context.Context, job *Job) {
	defer close(job.done)
	defer func() {
		if r := recover(); r != nil {
			job.err = fmt.Errorf("match job panicked: %v", r)
			q.logger.Error(ctx, "match job panicked", "job_id", job.ID.String(), "post_id", job.PostID, "panic", r)
		}
	}()

	job.report, job.err = q.runner.IdentifyAndMatch(ctx, job.PostID, job.PostType)
}
