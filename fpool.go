package fpool

import (
	"errors"
	"fmt"
)

// Job is a unit of deferred work. A job is run exactly once by exactly one worker.
type Job interface {
	Run() error
}

// Task adapts a plain function to a Job.
type Task func()

func (t Task) Run() error {
	t()
	return nil
}

// TaskE adapts a function that can fail to a Job.
type TaskE func() error

func (t TaskE) Run() error {
	return t()
}

type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type State int32

const (
	StateConstructing State = iota
	StateAccepting
	StateDraining
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConstructing:
		return "constructing"
	case StateAccepting:
		return "accepting"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidWorkerCount = errors.New("fpool: worker count must be positive")
	ErrSpawnFailed        = errors.New("fpool: failed to spawn worker")
	ErrPoolClosed         = errors.New("fpool: pool is closed")
	ErrQueueClosed        = errors.New("fpool: queue is closed")
	ErrQueueFull          = errors.New("fpool: queue is full")
	ErrNilJob             = errors.New("fpool: nil job")
)

// JobFailure describes a job that returned an error or panicked.
// Panic holds the recovered value and Stack the goroutine stack when the job panicked.
type JobFailure struct {
	WorkerID int
	Err      error
	Panic    interface{}
	Stack    []byte
}

func (f *JobFailure) Error() string {
	if f.Panic != nil {
		return fmt.Sprintf("fpool: job panicked on worker %d: %v", f.WorkerID, f.Panic)
	}
	return fmt.Sprintf("fpool: job failed on worker %d: %v", f.WorkerID, f.Err)
}

func (f *JobFailure) Unwrap() error {
	return f.Err
}
