package fpool

import "sync"

type Spaceship func() (interface{}, error)

// Future is the pending result of a job submitted with Travel.
type Future struct {
	once  sync.Once
	done  chan struct{}
	value interface{}
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(value interface{}, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Get blocks until the job has finished. A job that panicked yields a *JobFailure.
func (f *Future) Get() (interface{}, error) {
	<-f.done
	return f.value, f.err
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

type futureJob struct {
	ship   Spaceship
	future *Future
}

func (j *futureJob) Run() error {
	value, err := j.ship()
	j.future.resolve(value, err)
	return err
}

func (j *futureJob) jobFailed(f *JobFailure) {
	j.future.resolve(nil, f)
}

// Travel submits ship and returns a Future for its result.
// When the pool refuses the job the error is returned and the Future is nil.
func (p *Pool) Travel(ship Spaceship) (*Future, error) {
	if ship == nil {
		return nil, ErrNilJob
	}

	future := newFuture()
	if err := p.Submit(&futureJob{ship: ship, future: future}); err != nil {
		return nil, err
	}
	return future, nil
}

// TravelSafe is Travel that never returns a nil Future: a refused job resolves it with the
// submit error straight away.
func (p *Pool) TravelSafe(ship Spaceship) *Future {
	future, err := p.Travel(ship)
	if err != nil {
		future = newFuture()
		future.resolve(nil, err)
	}
	return future
}
