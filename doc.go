/*
Package fpool runs jobs on a fixed number of long-lived worker goroutines.

Jobs are handed to the pool with Submit and wait in a shared JobQueue until one of the
workers picks them up; every submitted job runs exactly once. A job that returns an error or
panics is reported through the failure handler or the logger and never stops its worker.
Shutdown stops accepting jobs, lets the queue drain and joins every worker.

	pool, err := fpool.New(4)
	if err != nil {
		return err
	}
	defer pool.Shutdown()

	_ = pool.SubmitFunc(func() {
		// do work
	})

The queue is unbounded unless WithQueueCapacity is given, in which case WithBackpressure
decides whether Submit blocks or fails with ErrQueueFull while the queue is full.
*/
package fpool
