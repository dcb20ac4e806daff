package touch

// Option represents a functional option for configuring the tracker.
type Option func(*Tracker)

// WithMaxSlots sets how many hardware slots the tracker follows. Values
// below one are ignored.
func WithMaxSlots(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.maxSlots = n
		}
	}
}
