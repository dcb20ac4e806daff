package history

// Option applies a configuration option to the Log.
type Option func(*Log)

// WithCapacity sets the fixed ring size. Values below one are ignored.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.buf = make([]Record, n)
		}
	}
}
