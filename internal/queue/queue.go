// Package queue runs conversion jobs on a fixed pool of workers.
//
// Each submitted job gets an opaque handle. A handle can be revoked at
// any time: a pending job is dropped before it runs, a running job has
// its context cancelled, which kills the underlying ffmpeg process.
// Revoking an unknown or already-finished handle is a no-op.
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"media-converter/internal/logging"
	"media-converter/internal/metrics"
)

// ErrQueueFull is returned by Submit when the pending buffer is full.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by Submit after Stop has been called.
var ErrStopped = errors.New("job queue is stopped")

// Handle identifies a submitted job.
type Handle string

// Job is the unit of work. The context is cancelled when the job is
// revoked or the queue shuts down; implementations must pass it to
// anything long-running.
type Job func(ctx context.Context, h Handle) error

type submission struct {
	handle Handle
	job    Job
}

// Queue is a bounded job queue backed by a worker pool.
type Queue struct {
	workers int
	jobs    chan submission

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	revoked map[Handle]struct{}
	running map[Handle]context.CancelFunc
	stopped bool
}

// New creates a queue with the given worker count and pending buffer
// size. Call Start before submitting.
func New(workers, size int) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		workers: workers,
		jobs:    make(chan submission, size),
		baseCtx: ctx,
		cancel:  cancel,
		revoked: make(map[Handle]struct{}),
		running: make(map[Handle]context.CancelFunc),
	}
}

// Start launches the worker pool.
func (q *Queue) Start() {
	logging.Info("Starting job queue with %d workers", q.workers)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Submit enqueues a job and returns its handle.
func (q *Queue) Submit(job Job) (Handle, error) {
	handle := Handle(uuid.NewString())

	// The lock pairs the stopped check with the send. Stop closes the
	// channel under the same lock, so a racing Submit either lands in
	// the buffer before the close or sees stopped. The send is
	// non-blocking, holding the lock across it is safe.
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return "", ErrStopped
	}

	select {
	case q.jobs <- submission{handle: handle, job: job}:
		metrics.QueueDepth.Inc()
		logging.Debug("Job %s queued", handle)
		return handle, nil
	default:
		return "", ErrQueueFull
	}
}

// Revoke cancels the job with the given handle. A pending job is
// dropped before it runs; a running job has its context cancelled.
// Unknown handles, finished jobs and the empty handle are ignored.
func (q *Queue) Revoke(h Handle) {
	if h == "" {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if cancel, ok := q.running[h]; ok {
		logging.Debug("Job %s revoked while running", h)
		cancel()
		return
	}
	q.revoked[h] = struct{}{}
}

// Stop prevents further submissions and waits for queued and running
// jobs to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	logging.Info("Job queue stopped")
}

// Kill prevents further submissions, cancels every running job and
// waits for the workers to exit. Used when shutdown cannot wait for
// encodes to complete.
func (q *Queue) Kill() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		q.cancel()
		q.wg.Wait()
		return
	}
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
	logging.Info("Job queue killed")
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for sub := range q.jobs {
		metrics.QueueDepth.Dec()

		q.mu.Lock()
		if _, ok := q.revoked[sub.handle]; ok {
			delete(q.revoked, sub.handle)
			q.mu.Unlock()
			metrics.JobsTotal.WithLabelValues("revoked").Inc()
			logging.Debug("Worker %d: job %s revoked before start", id, sub.handle)
			continue
		}
		ctx, cancel := context.WithCancel(q.baseCtx)
		q.running[sub.handle] = cancel
		q.mu.Unlock()

		metrics.JobsInProgress.Inc()
		err := sub.job(ctx, sub.handle)
		metrics.JobsInProgress.Dec()

		q.mu.Lock()
		delete(q.running, sub.handle)
		q.mu.Unlock()
		cancel()

		switch {
		case err == nil:
			metrics.JobsTotal.WithLabelValues("success").Inc()
		case ctx.Err() != nil:
			metrics.JobsTotal.WithLabelValues("revoked").Inc()
			logging.Info("Worker %d: job %s cancelled", id, sub.handle)
		default:
			metrics.JobsTotal.WithLabelValues("failure").Inc()
			logging.Warn("Worker %d: job %s failed: %v", id, sub.handle, err)
		}
	}
}
