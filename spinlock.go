package fpool

import (
	"runtime"
	"sync/atomic"
)

const maxBackOff = 64

// spinLock guards the queue's dequeue/enqueue critical sections, which are only a few
// slice operations long. It satisfies sync.Locker so it can back a sync.Cond.
type spinLock struct {
	held atomic.Uint32
}

func (s *spinLock) Lock() {
	backOff := 1
	for !s.held.CompareAndSwap(0, 1) {
		for i := 0; i < backOff; i++ {
			runtime.Gosched()
		}
		if backOff < maxBackOff {
			backOff <<= 1
		}
	}
}

func (s *spinLock) Unlock() {
	s.held.Store(0)
}
