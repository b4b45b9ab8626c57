package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrStopped = errors.New("worker pool stopped")

// Job is a single store call executed on a pool worker.
type Job func(ctx context.Context) error

type request struct {
	ctx  context.Context
	job  Job
	done chan error
}

// Pool runs submitted jobs on a fixed number of goroutines. Results are
// delivered on the channel returned by Submit; jobs submitted concurrently
// complete in no particular order.
type Pool struct {
	logger *zap.Logger
	count  int
	jobs   chan request
	wg     sync.WaitGroup
	stop   chan struct{}
	once   sync.Once

	mu      sync.RWMutex
	stopped bool
}

func NewPool(logger *zap.Logger, count int) *Pool {
	if count < 1 {
		count = 1
	}
	return &Pool{
		logger: logger,
		count:  count,
		jobs:   make(chan request, count),
		stop:   make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	p.once.Do(func() {
		p.logger.Info("Stopping worker pool...")
		close(p.stop)
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		p.wg.Wait()

		// Anything still queued will never run.
		for {
			select {
			case req := <-p.jobs:
				req.done <- ErrStopped
			default:
				p.logger.Info("Worker pool stopped")
				return
			}
		}
	})
}

// Submit queues job and returns a channel that receives exactly one value:
// the job's error, or the reason it never ran.
func (p *Pool) Submit(ctx context.Context, job Job) <-chan error {
	done := make(chan error, 1)

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		done <- ErrStopped
		return done
	}

	select {
	case p.jobs <- request{ctx: ctx, job: job, done: done}:
	case <-p.stop:
		done <- ErrStopped
	case <-ctx.Done():
		done <- ctx.Err()
	}
	return done
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case req := <-p.jobs:
			p.run(id, req)
		}
	}
}

func (p *Pool) run(workerID int, req request) {
	if err := req.ctx.Err(); err != nil {
		req.done <- err
		return
	}

	start := time.Now()
	err := req.job(req.ctx)
	if err != nil {
		p.logger.Debug("job failed",
			zap.Int("worker", workerID),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
	}
	req.done <- err
}
