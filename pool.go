package fpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/yongpi/putil/plog"
)

type defaultLogger struct {
}

func (d *defaultLogger) Debugf(format string, args ...interface{}) {
	plog.Debugf(format, args...)
}

func (d *defaultLogger) Errorf(format string, args ...interface{}) {
	plog.Errorf(format, args...)
}

// DefaultLogger returns the plog backed logger a Pool uses when WithLogger is not given.
func DefaultLogger() Logger {
	return new(defaultLogger)
}

// Pool runs jobs on a fixed set of worker goroutines fed by a shared JobQueue.
type Pool struct {
	size    int
	state   atomic.Int32
	active  atomic.Int32
	queue   *JobQueue
	workers *workerGroup
	config  *Options

	drainOnce sync.Once
	done      chan struct{}
}

// New starts a pool of size workers. It fails with ErrInvalidWorkerCount when size is not
// positive, and with an error wrapping ErrSpawnFailed when a worker cannot be started; in
// that case every worker already started has been stopped and joined before New returns.
func New(size int, options ...Option) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkerCount, size)
	}

	pool := &Pool{
		size:   size,
		config: new(Options),
		done:   make(chan struct{}),
	}
	pool.state.Store(int32(StateConstructing))

	for _, option := range options {
		option(pool.config)
	}
	if pool.config.Logger == nil {
		pool.config.Logger = new(defaultLogger)
	}
	if pool.config.Spawner == nil {
		pool.config.Spawner = goSpawner
	}

	pool.queue = NewJobQueue(pool.config.QueueCapacity, pool.config.Backpressure)
	pool.workers = newWorkerGroup(size)

	for i := 0; i < size; i++ {
		if err := pool.workers.spawn(newWorker(i, pool), pool.config.Spawner); err != nil {
			pool.config.Logger.Errorf("[FPool:New]: spawn worker %d failed, err = %v", i, err)
			pool.queue.Close()
			pool.workers.Wait()
			pool.state.Store(int32(StateTerminated))
			close(pool.done)
			return nil, fmt.Errorf("%w: worker %d: %v", ErrSpawnFailed, i, err)
		}
	}

	pool.state.Store(int32(StateAccepting))
	pool.config.Logger.Debugf("[FPool:New]: pool started, size = %d, queue cap = %d", size, pool.queue.Cap())
	return pool, nil
}

// Submit queues job for execution and returns without waiting for it to run.
// Once Shutdown has begun it returns ErrPoolClosed and the job is never queued.
func (p *Pool) Submit(job Job) error {
	if job == nil {
		return ErrNilJob
	}
	if p.State() != StateAccepting {
		p.config.Metrics.rejected()
		return ErrPoolClosed
	}

	err := p.queue.Send(job)
	switch {
	case err == nil:
		p.config.Metrics.submitted(p.queue)
		return nil
	case errors.Is(err, ErrQueueClosed):
		p.config.Metrics.rejected()
		return ErrPoolClosed
	default:
		p.config.Metrics.rejected()
		return err
	}
}

func (p *Pool) SubmitFunc(fn func()) error {
	if fn == nil {
		return ErrNilJob
	}
	return p.Submit(Task(fn))
}

// Shutdown stops accepting jobs and blocks until every queued and running job has finished
// and all workers have exited. Calling it again, or concurrently, waits for the same drain.
// It must not be called from inside a job.
func (p *Pool) Shutdown() {
	_ = p.ShutdownContext(context.Background())
}

// ShutdownContext is Shutdown that gives up waiting when ctx ends. The drain keeps going in
// the background and a later Shutdown still waits for it.
func (p *Pool) ShutdownContext(ctx context.Context) error {
	p.drainOnce.Do(func() {
		p.state.Store(int32(StateDraining))
		p.queue.Close()
		p.config.Logger.Debugf("[FPool:Shutdown]: draining, pending = %d", p.queue.Len())

		go func() {
			p.workers.Wait()
			p.state.Store(int32(StateTerminated))
			p.config.Logger.Debugf("[FPool:Shutdown]: all workers joined")
			close(p.done)
		}()
	})

	select {
	case <-p.done:
		return nil
	default:
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the pool is terminated.
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

func (p *Pool) State() State {
	return State(p.state.Load())
}

func (p *Pool) IsClosed() bool {
	return p.State() >= StateDraining
}

// Size is the number of workers the pool was built with.
func (p *Pool) Size() int {
	return p.size
}

// Workers is the number of worker goroutines that have not exited yet.
func (p *Pool) Workers() int {
	return p.workers.Live()
}

// Active is the number of workers currently running a job.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Pending is the number of queued jobs not yet picked up by a worker.
func (p *Pool) Pending() int {
	return p.queue.Len()
}
