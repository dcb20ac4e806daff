package monitor

import (
	"github.com/gestured/gestured/pkg/logger"
)

// Option configures the monitor server.
type Option func(*Server)

// WithLogger sets the logger used by the server.
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithStreamBuffer sets how many records a stream client may lag before
// it is disconnected.
func WithStreamBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.streamBuffer = n
		}
	}
}
