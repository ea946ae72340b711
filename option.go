package fpool

type Option func(options *Options)

// Backpressure decides what Submit does when a bounded queue is full.
type Backpressure int32

const (
	BackpressureBlock Backpressure = iota
	BackpressureReject
)

// Spawner starts run on a new goroutine. It returns an error when it cannot.
type Spawner func(run func()) error

func goSpawner(run func()) error {
	go run()
	return nil
}

type Options struct {
	QueueCapacity  int
	Backpressure   Backpressure
	PanicHandler   func(interface{})
	FailureHandler func(*JobFailure)
	Logger         Logger
	Metrics        *Metrics
	Spawner        Spawner
}

// WithQueueCapacity bounds the job queue. Zero or less means unbounded.
func WithQueueCapacity(n int) Option {
	return func(options *Options) {
		options.QueueCapacity = n
	}
}

func WithBackpressure(b Backpressure) Option {
	return func(options *Options) {
		options.Backpressure = b
	}
}

// WithPanicHandler is called with the recovered value of every panicking job.
func WithPanicHandler(handler func(interface{})) Option {
	return func(options *Options) {
		options.PanicHandler = handler
	}
}

// WithFailureHandler is called for every failed job, whether it panicked or returned an error.
func WithFailureHandler(handler func(*JobFailure)) Option {
	return func(options *Options) {
		options.FailureHandler = handler
	}
}

func WithLogger(logger Logger) Option {
	return func(options *Options) {
		options.Logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(options *Options) {
		options.Metrics = m
	}
}

func WithSpawner(s Spawner) Option {
	return func(options *Options) {
		options.Spawner = s
	}
}
