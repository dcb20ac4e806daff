package eventsim

import "time"

// Option configures a sequence builder.
type Option func(*Sequence)

// WithStart sets the simulated time of the first frame.
func WithStart(t time.Time) Option {
	return func(s *Sequence) {
		s.now = t
	}
}

// WithStep sets the simulated time between sync frames.
func WithStep(d time.Duration) Option {
	return func(s *Sequence) {
		if d > 0 {
			s.step = d
		}
	}
}
