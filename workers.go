package fpool

import (
	"sync"
	"sync/atomic"
)

// workerGroup owns the worker goroutines of a pool until they are joined.
type workerGroup struct {
	items []*worker
	wg    sync.WaitGroup
	live  atomic.Int32
}

func newWorkerGroup(size int) *workerGroup {
	return &workerGroup{items: make([]*worker, 0, size)}
}

// spawn starts w through s. The worker counts as live from this call until its loop returns.
func (g *workerGroup) spawn(w *worker, s Spawner) error {
	g.wg.Add(1)
	g.live.Add(1)

	err := s(func() {
		defer func() {
			g.live.Add(-1)
			g.wg.Done()
		}()
		w.run()
	})
	if err != nil {
		g.live.Add(-1)
		g.wg.Done()
		return err
	}

	g.items = append(g.items, w)
	return nil
}

func (g *workerGroup) Len() int {
	return len(g.items)
}

func (g *workerGroup) Live() int {
	return int(g.live.Load())
}

func (g *workerGroup) Wait() {
	g.wg.Wait()
}
