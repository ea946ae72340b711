package fpool

import (
	"errors"
	"testing"
)

func TestWorkerRunJob(t *testing.T) {
	errBad := errors.New("bad")
	w := newWorker(7, nil)

	tests := []struct {
		name      string
		job       Job
		wantFail  bool
		wantPanic bool
		wantErr   error
	}{
		{name: "Success", job: Task(func() {})},
		{name: "ReturnedError", job: TaskE(func() error { return errBad }), wantFail: true, wantErr: errBad},
		{name: "PanicValue", job: Task(func() { panic("boom") }), wantFail: true, wantPanic: true},
		{name: "PanicError", job: Task(func() { panic(errBad) }), wantFail: true, wantPanic: true, wantErr: errBad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := w.runJob(tt.job)
			if (f != nil) != tt.wantFail {
				t.Fatalf("expected failure = %v, got %v", tt.wantFail, f)
			}
			if f == nil {
				return
			}
			if f.WorkerID != 7 {
				t.Errorf("expected worker id 7, got %d", f.WorkerID)
			}
			if (f.Panic != nil) != tt.wantPanic {
				t.Errorf("expected panic = %v, got %v", tt.wantPanic, f.Panic)
			}
			if tt.wantPanic && len(f.Stack) == 0 {
				t.Error("expected a stack for a panic")
			}
			if tt.wantErr != nil && !errors.Is(f, tt.wantErr) {
				t.Errorf("expected failure to wrap %v, got %v", tt.wantErr, f)
			}
		})
	}
}

func TestWorkerExitsOnClosedQueue(t *testing.T) {
	p := &Pool{config: &Options{Logger: new(recordLogger)}, queue: NewJobQueue(0, BackpressureBlock)}

	ran := 0
	_ = p.queue.Send(Task(func() { ran++ }))
	_ = p.queue.Send(Task(func() { ran++ }))
	p.queue.Close()

	// run returns only once the closed queue is drained
	newWorker(0, p).run()

	if ran != 2 {
		t.Errorf("expected 2 queued jobs to run before exit, got %d", ran)
	}
	if p.Active() != 0 {
		t.Errorf("expected no active jobs, got %d", p.Active())
	}
}

func TestJobFailureError(t *testing.T) {
	f := &JobFailure{WorkerID: 3, Err: errors.New("bad")}
	if got := f.Error(); got != "fpool: job failed on worker 3: bad" {
		t.Errorf("unexpected message %q", got)
	}

	f = &JobFailure{WorkerID: 1, Panic: "boom"}
	if got := f.Error(); got != "fpool: job panicked on worker 1: boom" {
		t.Errorf("unexpected message %q", got)
	}
}
