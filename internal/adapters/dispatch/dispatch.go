// Package dispatch launches configured shell actions for matched gestures
// without ever blocking gesture classification.
//
// A bounded queue feeds a single consumer goroutine, so actions for the
// same device start in gesture completion order. Enqueueing never waits:
// when the queue is full the launch request is dropped and counted.
package dispatch

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gestured/gestured/pkg/logger"
	"github.com/gestured/gestured/pkg/metrics"
)

// DefaultQueueSize bounds pending launch requests per dispatcher.
const DefaultQueueSize = 32

// Runner launches one action. Implementations return once the action has
// been started; they never wait for it to finish.
type Runner interface {
	Run(ctx context.Context, action string) error
}

// Request is one action launch order.
type Request struct {
	ID     uuid.UUID
	Device string
	Action string
}

// Dispatcher owns the launch queue and its single consumer.
type Dispatcher struct {
	runner    Runner
	queueSize int
	requests  chan Request
	log       logger.Logger

	mu      sync.RWMutex
	closed  bool
	started bool

	done chan struct{}
}

// New creates a dispatcher around the given runner. Start must be called
// before queued requests are consumed.
func New(runner Runner, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		runner:    runner,
		queueSize: DefaultQueueSize,
		done:      make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	if d.log == nil {
		d.log = logger.Get().Named("dispatch")
	}

	d.requests = make(chan Request, d.queueSize)

	// Initialize metrics
	metrics.UpdateDispatchQueueCapacity(d.queueSize)
	metrics.UpdateDispatchQueueDepth(0)

	return d
}

// Start launches the consumer goroutine. Requests are processed strictly
// in queue order until Close is called or the context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()

	go d.consume(ctx)
}

// Dispatch enqueues a launch request without blocking. It reports whether
// the request was accepted; a full or closed queue drops it.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.RecordDispatchDropped()
		return false
	}

	select {
	case d.requests <- req:
		metrics.UpdateDispatchQueueDepth(len(d.requests))
		return true
	case <-ctx.Done():
		metrics.RecordDispatchDropped()
		return false
	default:
		metrics.RecordDispatchDropped()
		d.log.Warn(ctx, "dispatch queue full, dropping action",
			logger.String("device", req.Device),
			logger.String("action", req.Action))
		return false
	}
}

// Len returns the number of requests waiting in the queue.
func (d *Dispatcher) Len() int { return len(d.requests) }

// Close stops intake and lets the consumer drain what was already queued.
// It returns once the consumer goroutine has exited.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	started := d.started
	close(d.requests)
	d.mu.Unlock()

	if started {
		<-d.done
	}
	return nil
}

// consume drains the queue one request at a time.
func (d *Dispatcher) consume(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case req, ok := <-d.requests:
			if !ok {
				return
			}
			metrics.UpdateDispatchQueueDepth(len(d.requests))
			d.launch(ctx, req)
		case <-ctx.Done():
			return
		}
	}
}

// launch hands one request to the runner. Failures are logged and counted;
// they never stop the consumer.
func (d *Dispatcher) launch(ctx context.Context, req Request) {
	if err := d.runner.Run(ctx, req.Action); err != nil {
		metrics.RecordActionFailure()
		d.log.Error(ctx, "action failed to launch",
			logger.String("id", req.ID.String()),
			logger.String("device", req.Device),
			logger.String("action", req.Action),
			logger.Error(err))
		return
	}

	metrics.RecordActionDispatched()
	d.log.Debug(ctx, "action launched",
		logger.String("id", req.ID.String()),
		logger.String("device", req.Device),
		logger.String("action", req.Action))
}
