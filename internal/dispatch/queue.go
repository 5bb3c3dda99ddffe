package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"pixgen/internal/metrics"
)

// ErrQueueFull is returned when the submission buffer is at capacity.
var ErrQueueFull = errors.New("dispatch queue full")

// ErrQueueClosed is returned when submitting after Close.
var ErrQueueClosed = errors.New("dispatch queue closed")

// Task is one detached provider dispatch. Run is attempted at most once; a
// failure is logged and counted but never retried, so the corresponding job
// record stays Pending until the provider calls back or forever (a known
// orphan condition).
type Task struct {
	Kind  string
	JobID string
	Run   func(ctx context.Context) error
}

// Queue delivers tasks through a bounded channel and a fixed worker pool,
// decoupling outbound dispatches from the request/response lifecycle. Submit
// never blocks the caller: when the buffer is full the task is dropped with a
// log line and a counter increment.
type Queue struct {
	tasks   chan Task
	timeout time.Duration
	logger  zerolog.Logger
	metrics *metrics.Registry

	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewQueue starts workers and returns the running queue.
func NewQueue(workers, buffer int, timeout time.Duration, logger zerolog.Logger, m *metrics.Registry) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 64
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	q := &Queue{
		tasks:   make(chan Task, buffer),
		timeout: timeout,
		logger:  logger.With().Str("component", "dispatch").Logger(),
		metrics: m,
	}
	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.worker()
	}
	q.logger.Info().Int("workers", workers).Int("buffer", buffer).Msg("dispatch queue started")
	return q
}

// Submit enqueues a task without blocking. Errors are advisory; callers have
// already committed the job record and only log the outcome.
func (q *Queue) Submit(t Task) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	select {
	case q.tasks <- t:
		return nil
	default:
		if q.metrics != nil {
			q.metrics.DispatchesTotal.WithLabelValues(t.Kind, metrics.OutcomeDropped).Inc()
		}
		q.logger.Warn().Str("kind", t.Kind).Str("job_id", t.JobID).Msg("dispatch dropped, buffer full")
		return ErrQueueFull
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for t := range q.tasks {
		q.run(t)
	}
}

func (q *Queue) run(t Task) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := t.Run(ctx); err != nil {
		if q.metrics != nil {
			q.metrics.DispatchesTotal.WithLabelValues(t.Kind, metrics.OutcomeRejected).Inc()
		}
		q.logger.Error().Err(err).Str("kind", t.Kind).Str("job_id", t.JobID).Msg("dispatch failed, job stays pending")
		return
	}
	if q.metrics != nil {
		q.metrics.DispatchesTotal.WithLabelValues(t.Kind, metrics.OutcomeAccepted).Inc()
	}
	q.logger.Debug().Str("kind", t.Kind).Str("job_id", t.JobID).Msg("dispatch accepted")
}

// Close stops accepting tasks and waits for in-flight ones, bounded by ctx.
func (q *Queue) Close(ctx context.Context) error {
	if q.closed.Swap(true) {
		return nil
	}
	close(q.tasks)

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
