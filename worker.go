package fpool

import (
	"runtime"
	"time"
)

const stackSize = 4096

// failureObserver is implemented by jobs that want to learn about their own failure,
// such as the job behind a Future.
type failureObserver interface {
	jobFailed(f *JobFailure)
}

type worker struct {
	id   int
	pool *Pool
}

func newWorker(id int, pool *Pool) *worker {
	return &worker{
		id:   id,
		pool: pool,
	}
}

func (w *worker) run() {
	w.pool.config.Logger.Debugf("[FPool:worker]: worker %d started", w.id)

	for {
		job, ok := w.pool.queue.Receive()
		if !ok {
			w.pool.config.Logger.Debugf("[FPool:worker]: worker %d stopped, queue drained", w.id)
			return
		}
		w.execute(job)
	}
}

func (w *worker) execute(job Job) {
	p := w.pool
	p.active.Add(1)
	p.config.Metrics.started(p.queue)

	start := time.Now()
	failure := w.runJob(job)

	p.active.Add(-1)
	p.config.Metrics.finished(time.Since(start), failure != nil)

	if failure != nil {
		if o, ok := job.(failureObserver); ok {
			o.jobFailed(failure)
		}
		w.report(failure)
	}
}

func (w *worker) runJob(job Job) (failure *JobFailure) {
	defer func() {
		if r := recover(); r != nil {
			var buf [stackSize]byte
			n := runtime.Stack(buf[:], false)

			failure = &JobFailure{
				WorkerID: w.id,
				Panic:    r,
				Stack:    append([]byte(nil), buf[:n]...),
			}
			if err, ok := r.(error); ok {
				failure.Err = err
			}
		}
	}()

	if err := job.Run(); err != nil {
		return &JobFailure{WorkerID: w.id, Err: err}
	}
	return nil
}

// report hands f to the configured handlers, or logs it when there are none.
// A panicking handler must not take the worker down with it.
func (w *worker) report(f *JobFailure) {
	cfg := w.pool.config
	defer func() {
		if r := recover(); r != nil {
			cfg.Logger.Errorf("[FPool:worker]: worker %d failure handler panic = %v", w.id, r)
		}
	}()

	handled := false
	if f.Panic != nil && cfg.PanicHandler != nil {
		cfg.PanicHandler(f.Panic)
		handled = true
	}
	if cfg.FailureHandler != nil {
		cfg.FailureHandler(f)
		handled = true
	}
	if handled {
		return
	}

	if f.Panic != nil {
		cfg.Logger.Errorf("[FPool:worker]: worker %d job panic = %v, stack = %s", w.id, f.Panic, string(f.Stack))
		return
	}
	cfg.Logger.Errorf("[FPool:worker]: worker %d job error = %v", w.id, f.Err)
}
