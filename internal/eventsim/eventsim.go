// Package eventsim builds synthetic touch update sequences. Tests and
// the simulate command use it to drive the engine without a device.
package eventsim

import (
	"context"
	"time"

	"github.com/gestured/gestured/internal/domain/gesture"
	"github.com/gestured/gestured/internal/domain/touch"
)

// Base coordinates and spacing for canned gestures.
const (
	baseX         = 200
	baseY         = 300
	fingerSpacing = 40
	jitter        = 2
	baseID        = 100
)

// DefaultStep is the simulated time between sync frames.
const DefaultStep = 10 * time.Millisecond

// Sequence accumulates updates with a simulated clock that advances on
// every sync frame.
type Sequence struct {
	updates []touch.Update
	now     time.Time
	step    time.Duration
}

// New creates an empty sequence.
func New(opts ...Option) *Sequence {
	s := &Sequence{
		now:  time.Unix(0, 0),
		step: DefaultStep,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Sequence) add(op touch.Op, value int32) *Sequence {
	s.updates = append(s.updates, touch.Update{Op: op, Value: value, Time: s.now})
	return s
}

// Select switches the active slot.
func (s *Sequence) Select(slot int) *Sequence {
	return s.add(touch.OpSelect, int32(slot))
}

// Land places a new contact in slot at the given position.
func (s *Sequence) Land(slot int, id, x, y int32) *Sequence {
	return s.Select(slot).add(touch.OpTrackingID, id).add(touch.OpPositionX, x).add(touch.OpPositionY, y)
}

// Move updates the position of the contact in slot.
func (s *Sequence) Move(slot int, x, y int32) *Sequence {
	return s.Select(slot).add(touch.OpPositionX, x).add(touch.OpPositionY, y)
}

// Lift releases the contact in slot.
func (s *Sequence) Lift(slot int) *Sequence {
	return s.Select(slot).add(touch.OpTrackingID, touch.ReleasedID)
}

// Reset injects a stream desynchronization marker.
func (s *Sequence) Reset() *Sequence {
	return s.add(touch.OpReset, 0)
}

// Sync closes the frame and advances the simulated clock.
func (s *Sequence) Sync() *Sequence {
	s.add(touch.OpSync, 0)
	s.now = s.now.Add(s.step)
	return s
}

// Updates returns the accumulated batch.
func (s *Sequence) Updates() []touch.Update {
	return s.updates
}

// Tap returns a complete n-finger tap with negligible travel.
func Tap(fingers int) []touch.Update {
	s := New()
	for i := 0; i < fingers; i++ {
		s.Land(i, baseID+int32(i), baseX+int32(i)*fingerSpacing, baseY)
	}
	s.Sync()
	for i := 0; i < fingers; i++ {
		s.Move(i, baseX+int32(i)*fingerSpacing+jitter, baseY+jitter)
	}
	s.Sync()
	for i := 0; i < fingers; i++ {
		s.Lift(i)
	}
	s.Sync()

	return s.Updates()
}

// Swipe returns a complete n-finger swipe travelling distance device
// units in the given direction.
func Swipe(fingers int, dir gesture.Direction, distance int32) []touch.Update {
	var dx, dy int32
	switch dir {
	case gesture.DirectionRight:
		dx = distance
	case gesture.DirectionLeft:
		dx = -distance
	case gesture.DirectionDown:
		dy = distance
	case gesture.DirectionUp:
		dy = -distance
	}

	s := New()
	for i := 0; i < fingers; i++ {
		s.Land(i, baseID+int32(i), baseX+int32(i)*fingerSpacing, baseY)
	}
	s.Sync()
	for i := 0; i < fingers; i++ {
		s.Move(i, baseX+int32(i)*fingerSpacing+dx/2, baseY+dy/2)
	}
	s.Sync()
	for i := 0; i < fingers; i++ {
		s.Move(i, baseX+int32(i)*fingerSpacing+dx, baseY+dy)
	}
	s.Sync()
	for i := 0; i < fingers; i++ {
		s.Lift(i)
	}
	s.Sync()

	return s.Updates()
}

// Stream plays a batch through emit, stopping on cancellation or the
// first emit error. It has the same shape as a device stream.
func Stream(ctx context.Context, updates []touch.Update, emit func(touch.Update) error) error {
	for _, u := range updates {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := emit(u); err != nil {
			return err
		}
	}

	return nil
}
