package dispatch

import "github.com/gestured/gestured/pkg/logger"

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithQueueSize bounds how many launch requests may wait at once.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// WithLogger sets the logger used by the dispatcher.
func WithLogger(log logger.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}
