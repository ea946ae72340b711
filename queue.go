package fpool

import "sync"

const compactThreshold = 1024

// JobQueue is a multi-producer, multi-consumer FIFO of jobs with a one-time close.
//
// Every job that Send accepts is returned by exactly one Receive. After Close, Send fails
// but jobs already queued are still handed out until the queue is empty.
type JobQueue struct {
	lock     spinLock
	notEmpty *sync.Cond
	notFull  *sync.Cond

	items    []Job
	head     int
	capacity int
	policy   Backpressure
	closed   bool
}

// NewJobQueue creates a queue holding at most capacity jobs. A capacity of zero or less
// means unbounded, in which case policy is ignored.
func NewJobQueue(capacity int, policy Backpressure) *JobQueue {
	if capacity < 0 {
		capacity = 0
	}
	q := &JobQueue{
		capacity: capacity,
		policy:   policy,
	}
	q.notEmpty = sync.NewCond(&q.lock)
	q.notFull = sync.NewCond(&q.lock)
	return q
}

func (q *JobQueue) Send(job Job) error {
	if job == nil {
		return ErrNilJob
	}

	q.lock.Lock()
	for !q.closed && q.full() {
		if q.policy == BackpressureReject {
			q.lock.Unlock()
			return ErrQueueFull
		}
		q.notFull.Wait()
	}
	if q.closed {
		q.lock.Unlock()
		return ErrQueueClosed
	}

	q.items = append(q.items, job)
	q.lock.Unlock()

	q.notEmpty.Signal()
	return nil
}

// Receive blocks until a job is available or the queue is closed and empty.
// The second result is false only in the latter case.
func (q *JobQueue) Receive() (Job, bool) {
	q.lock.Lock()
	for q.size() == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if q.size() == 0 {
		q.lock.Unlock()
		return nil, false
	}

	job := q.pop()
	q.lock.Unlock()

	if q.capacity > 0 {
		q.notFull.Signal()
	}
	return job, true
}

// Close reports whether this call closed the queue.
func (q *JobQueue) Close() bool {
	q.lock.Lock()
	if q.closed {
		q.lock.Unlock()
		return false
	}
	q.closed = true
	q.lock.Unlock()

	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
	return true
}

func (q *JobQueue) Closed() bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.closed
}

func (q *JobQueue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.size()
}

func (q *JobQueue) Cap() int {
	return q.capacity
}

func (q *JobQueue) size() int {
	return len(q.items) - q.head
}

func (q *JobQueue) full() bool {
	return q.capacity > 0 && q.size() >= q.capacity
}

func (q *JobQueue) pop() Job {
	job := q.items[q.head]
	q.items[q.head] = nil
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		for i := n; i < len(q.items); i++ {
			q.items[i] = nil
		}
		q.items = q.items[:n]
		q.head = 0
	}
	return job
}
