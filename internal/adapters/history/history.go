// Package history keeps a bounded in-memory record of classified gestures
// for the monitor surface.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity bounds the ring when no capacity is configured.
const DefaultCapacity = 64

// Record is one classified gesture and what became of it.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Device    string    `json:"device"`
	Kind      string    `json:"kind"`
	Fingers   int       `json:"fingers"`
	Direction string    `json:"direction,omitempty"`
	Magnitude float64   `json:"magnitude"`
	// Action is empty when no rule matched the gesture.
	Action string `json:"action,omitempty"`
	// Dispatched reports whether the action was accepted for launch.
	Dispatched bool      `json:"dispatched"`
	Time       time.Time `json:"time"`
}

// Log is a fixed-capacity ring of recent records. Appends overwrite the
// oldest entry once the ring is full. Safe for concurrent use.
type Log struct {
	mu   sync.RWMutex
	buf  []Record
	next int
	full bool
}

// New creates a ring log with the given options.
func New(opts ...Option) *Log {
	l := &Log{buf: make([]Record, DefaultCapacity)}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Append adds a record, evicting the oldest when the ring is full.
func (l *Log) Append(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf[l.next] = r
	l.next++
	if l.next == len(l.buf) {
		l.next = 0
		l.full = true
	}
}

// Recent returns up to n records, newest first. A non-positive n returns
// everything retained.
func (l *Log) Recent(n int) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	size := l.size()
	if n <= 0 || n > size {
		n = size
	}

	out := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		idx := l.next - i
		if idx < 0 {
			idx += len(l.buf)
		}
		out = append(out, l.buf[idx])
	}
	return out
}

// Len returns how many records are currently retained.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size()
}

// Capacity returns the fixed ring size.
func (l *Log) Capacity() int {
	return len(l.buf)
}

// size must be called with the lock held.
func (l *Log) size() int {
	if l.full {
		return len(l.buf)
	}
	return l.next
}
