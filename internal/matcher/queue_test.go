package matcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"petmatch/internal/logging"
	"petmatch/internal/models"
)

func waitJob(t *testing.T, job *Job) {
	t.Helper()
	select {
	case <-job.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("job for post %d did not finish", job.PostID)
	}
}

func TestQueue_RunsJob(t *testing.T) {
	runner := new(MockRunner)
	want := &Report{PostID: 100027, PostType: models.PostTypeLost, Outcome: OutcomeMatched}
	runner.On("IdentifyAndMatch", mock.Anything, int64(100027), models.PostTypeLost).Return(want, nil).Once()

	q := NewQueue(runner, QueueOptions{Size: 4, Workers: 2}, logging.Nop())
	q.Start(context.Background())

	job, err := q.Submit(context.Background(), 100027, models.PostTypeLost)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID.String())

	waitJob(t, job)
	assert.NoError(t, job.Err())
	assert.Same(t, want, job.Report())

	require.NoError(t, q.Shutdown(context.Background()))
	runner.AssertExpectations(t)
}

func TestQueue_Full(t *testing.T) {
	runner := new(MockRunner)
	q := NewQueue(runner, QueueOptions{Size: 1, Workers: 1}, logging.Nop())

	// Not started: the single buffer slot stays occupied.
	_, err := q.Submit(context.Background(), 100001, models.PostTypeLost)
	require.NoError(t, err)

	_, err = q.Submit(context.Background(), 100002, models.PostTypeLost)
	assert.ErrorIs(t, err, ErrQueueFull)
}

// setGuard admits each post once until it is released.
type setGuard struct {
	mu   sync.Mutex
	held map[int64]bool
}

func newSetGuard() *setGuard {
	return &setGuard{held: make(map[int64]bool)}
}

func (g *setGuard) Acquire(_ context.Context, postID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[postID] {
		return false, nil
	}
	g.held[postID] = true
	return true, nil
}

func (g *setGuard) Release(_ context.Context, postID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, postID)
	return nil
}

func TestQueue_FullReleasesGuard(t *testing.T) {
	runner := new(MockRunner)
	runner.On("IdentifyAndMatch", mock.Anything, mock.Anything, mock.Anything).Return(&Report{}, nil)

	q := NewQueue(runner, QueueOptions{Size: 1, Workers: 1, Guard: newSetGuard()}, logging.Nop())

	first, err := q.Submit(context.Background(), 100001, models.PostTypeLost)
	require.NoError(t, err)

	_, err = q.Submit(context.Background(), 100002, models.PostTypeLost)
	require.ErrorIs(t, err, ErrQueueFull)

	q.Start(context.Background())
	waitJob(t, first)

	retry, err := q.Submit(context.Background(), 100002, models.PostTypeLost)
	require.NoError(t, err, "a rejected trigger must be retryable")
	waitJob(t, retry)

	_, err = q.Submit(context.Background(), 100002, models.PostTypeLost)
	assert.ErrorIs(t, err, ErrDuplicateTrigger)

	require.NoError(t, q.Shutdown(context.Background()))
	runner.AssertNumberOfCalls(t, "IdentifyAndMatch", 2)
}

func TestQueue_ReleaseErrorIsLogged(t *testing.T) {
	guard := new(MockGuard)
	guard.On("Acquire", mock.Anything, int64(100001)).Return(true, nil).Once()
	guard.On("Acquire", mock.Anything, int64(100002)).Return(true, nil).Once()
	guard.On("Release", mock.Anything, int64(100002)).Return(errors.New("redis down")).Once()

	q := NewQueue(new(MockRunner), QueueOptions{Size: 1, Workers: 1, Guard: guard}, logging.Nop())

	_, err := q.Submit(context.Background(), 100001, models.PostTypeLost)
	require.NoError(t, err)

	_, err = q.Submit(context.Background(), 100002, models.PostTypeLost)
	assert.ErrorIs(t, err, ErrQueueFull)
	guard.AssertExpectations(t)
}

func TestQueue_ShutdownWithoutStart(t *testing.T) {
	runner := new(MockRunner)
	guard := newSetGuard()
	q := NewQueue(runner, QueueOptions{Size: 2, Workers: 1, Guard: guard}, logging.Nop())

	first, err := q.Submit(context.Background(), 100001, models.PostTypeLost)
	require.NoError(t, err)
	second, err := q.Submit(context.Background(), 200001, models.PostTypeFound)
	require.NoError(t, err)

	require.NoError(t, q.Shutdown(context.Background()))

	for _, job := range []*Job{first, second} {
		waitJob(t, job)
		assert.ErrorIs(t, job.Err(), ErrQueueClosed)
		assert.Nil(t, job.Report())
	}
	assert.Empty(t, guard.held)

	// Start after Shutdown has nothing left to run.
	q.Start(context.Background())
	runner.AssertNotCalled(t, "IdentifyAndMatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestQueue_ClosedAfterShutdown(t *testing.T) {
	q := NewQueue(new(MockRunner), QueueOptions{Size: 1, Workers: 1}, logging.Nop())
	q.Start(context.Background())

	require.NoError(t, q.Shutdown(context.Background()))
	require.NoError(t, q.Shutdown(context.Background()))

	_, err := q.Submit(context.Background(), 100001, models.PostTypeLost)
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueue_Guard(t *testing.T) {
	runner := new(MockRunner)
	runner.On("IdentifyAndMatch", mock.Anything, mock.Anything, mock.Anything).Return(&Report{}, nil)

	guard := new(MockGuard)
	guard.On("Acquire", mock.Anything, int64(200005)).Return(true, nil).Once()
	guard.On("Acquire", mock.Anything, int64(200005)).Return(false, nil).Once()
	guard.On("Acquire", mock.Anything, int64(200006)).Return(false, errors.New("redis down")).Once()

	q := NewQueue(runner, QueueOptions{Size: 4, Workers: 1, Guard: guard}, logging.Nop())
	q.Start(context.Background())

	job, err := q.Submit(context.Background(), 200005, models.PostTypeFound)
	require.NoError(t, err)
	waitJob(t, job)

	_, err = q.Submit(context.Background(), 200005, models.PostTypeFound)
	assert.ErrorIs(t, err, ErrDuplicateTrigger)

	job, err = q.Submit(context.Background(), 200006, models.PostTypeFound)
	require.NoError(t, err, "guard errors must not block matching")
	waitJob(t, job)

	require.NoError(t, q.Shutdown(context.Background()))
	guard.AssertExpectations(t)
	runner.AssertNumberOfCalls(t, "IdentifyAndMatch", 2)
}

func TestQueue_RecoversPanics(t *testing.T) {
	runner := new(MockRunner)
	runner.On("IdentifyAndMatch", mock.Anything, int64(100001), mock.Anything).
		Run(func(mock.Arguments) { panic("boom") })
	runner.On("IdentifyAndMatch", mock.Anything, int64(100002), mock.Anything).Return(&Report{}, nil)

	q := NewQueue(runner, QueueOptions{Size: 2, Workers: 1}, logging.Nop())
	q.Start(context.Background())

	first, err := q.Submit(context.Background(), 100001, models.PostTypeLost)
	require.NoError(t, err)
	waitJob(t, first)
	assert.ErrorContains(t, first.Err(), "panicked")

	second, err := q.Submit(context.Background(), 100002, models.PostTypeLost)
	require.NoError(t, err)
	waitJob(t, second)
	assert.NoError(t, second.Err())

	require.NoError(t, q.Shutdown(context.Background()))
}

func TestQueue_ShutdownWaitsForRunningJob(t *testing.T) {
	release := make(chan struct{})
	runner := new(MockRunner)
	runner.On("IdentifyAndMatch", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).Return(&Report{}, nil)

	q := NewQueue(runner, QueueOptions{Size: 1, Workers: 1}, logging.Nop())
	q.Start(context.Background())

	job, err := q.Submit(context.Background(), 100001, models.PostTypeLost)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Shutdown(ctx), context.DeadlineExceeded)

	close(release)
	waitJob(t, job)
	require.NoError(t, q.Shutdown(context.Background()))
}

func TestQueue_JobsOutliveStartContext(t *testing.T) {
	ctxErr := errors.New("job did not run")
	runner := new(MockRunner)
	runner.On("IdentifyAndMatch", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { ctxErr = args.Get(0).(context.Context).Err() }).
		Return(&Report{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue(runner, QueueOptions{Size: 1, Workers: 1}, logging.Nop())
	q.Start(ctx)
	cancel()

	job, err := q.Submit(context.Background(), 100001, models.PostTypeLost)
	require.NoError(t, err)
	waitJob(t, job)
	assert.NoError(t, ctxErr)

	require.NoError(t, q.Shutdown(context.Background()))
}
