package gesture

import "time"

// Option represents a functional option for configuring the recognizer.
type Option func(*Recognizer)

// WithTapDistance sets the travel threshold separating taps from swipes,
// in device units. Values at or below zero are ignored.
func WithTapDistance(d float64) Option {
	return func(r *Recognizer) {
		if d > 0 {
			r.tapDistance = d
		}
	}
}

// WithDirectionBias sets the weight of vertical travel when deciding a
// swipe's direction. Values above one favor vertical readings. Values at
// or below zero are ignored.
func WithDirectionBias(b float64) Option {
	return func(r *Recognizer) {
		if b > 0 {
			r.bias = b
		}
	}
}

// WithDebounce sets the minimum gap between emitted gestures. Zero
// disables debouncing; negative values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(r *Recognizer) {
		if d >= 0 {
			r.debounce = d
		}
	}
}
