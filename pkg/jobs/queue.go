// Package jobs runs background work on a fixed pool of workers. Jobs that share a Key
// are always handled by the same worker, so work for one student is processed in order.
package jobs

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job represents a queued background task.
type Job struct {
	ID       string
	Key      string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue is an in-memory job dispatcher backed by goroutines, one channel per worker.
type Queue struct {
	name    string
	handler Handler

	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	shards  []chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	shards := make([]chan Job, cfg.Workers)
	for i := range shards {
		shards[i] = make(chan Job, cfg.BufferSize)
	}

	return &Queue{
		name:       name,
		handler:    handler,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		shards:     shards,
	}
}

// Start begins worker consumption. Calling it again is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := range q.shards {
		q.wg.Add(1)
		go q.worker(q.shards[i])
	}
	q.started = true
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", len(q.shards)))
}

// Stop cancels workers and waits for them to exit. Jobs still buffered are dropped.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue pushes a job onto the worker owning its key. It blocks while that worker's buffer is full.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.shardFor(job.Key) <- job:
		return nil
	}
}

// Depth returns the number of jobs buffered across all workers.
func (q *Queue) Depth() int {
	depth := 0
	for _, shard := range q.shards {
		depth += len(shard)
	}
	return depth
}

func (q *Queue) shardFor(key string) chan Job {
	if len(q.shards) == 1 {
		return q.shards[0]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return q.shards[h.Sum32()%uint32(len(q.shards))]
}

func (q *Queue) worker(jobs <-chan Job) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-jobs:
			q.run(job)
		}
	}
}

// run retries in place so later jobs for the same key cannot overtake a failing one.
func (q *Queue) run(job Job) {
	for {
		err := q.handler(q.ctx, job)
		if err == nil {
			return
		}
		if job.Attempt >= q.maxRetries {
			q.logger.Error("job exceeded retries",
				zap.String("queue", q.name), zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Error(err))
			return
		}
		job.Attempt++
		q.logger.Warn("job failed, retrying",
			zap.String("queue", q.name), zap.String("job_id", job.ID), zap.String("type", job.Type),
			zap.Int("attempt", job.Attempt), zap.Error(err))

		timer := time.NewTimer(q.retryDelay)
		select {
		case <-q.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
