package touch

import "time"

// invalidSlot marks a selection pointing outside the tracked range. All
// slot-addressed updates are ignored until the device selects a valid slot
// again, so a rogue selection cannot corrupt another contact's state.
const invalidSlot = -1

// slotState holds everything known about one hardware slot.
type slotState struct {
	active   bool
	tracking int32
	hasX     bool
	hasY     bool
	started  bool
	start    Point
	pos      Point
}

// Tracker maintains the active contact set for one device. It is not safe
// for concurrent use; a device session owns exactly one tracker.
type Tracker struct {
	maxSlots int
	slots    []slotState
	selected int
	dropped  uint64
}

// NewTracker creates a tracker with the given options.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{maxSlots: DefaultMaxSlots}

	for _, opt := range opts {
		opt(t)
	}

	t.slots = make([]slotState, t.maxSlots)
	return t
}

// Apply folds one update into the tracker. When u closes a frame, the
// assembled snapshot is returned with ok set; all other updates only
// mutate internal state.
func (t *Tracker) Apply(u Update) (frame Frame, ok bool) {
	switch u.Op {
	case OpSelect:
		if int(u.Value) < 0 || int(u.Value) >= len(t.slots) {
			t.selected = invalidSlot
			t.dropped++
			return Frame{}, false
		}
		t.selected = int(u.Value)

	case OpTrackingID:
		s := t.slot()
		if s == nil {
			return Frame{}, false
		}
		switch {
		case s.active && u.Value == s.tracking:
			// Same contact restated; nothing changed.
		case u.Value < 0:
			*s = slotState{}
		default:
			*s = slotState{active: true, tracking: u.Value}
		}

	case OpPositionX:
		s := t.slot()
		if s == nil || !s.active {
			return Frame{}, false
		}
		s.pos.X = u.Value
		s.hasX = true

	case OpPositionY:
		s := t.slot()
		if s == nil || !s.active {
			return Frame{}, false
		}
		s.pos.Y = u.Value
		s.hasY = true

	case OpSync:
		return t.snapshot(u.Time), true

	case OpReset:
		t.Reset()
	}

	return Frame{}, false
}

// slot returns the selected slot, counting the update as dropped when the
// selection points outside the tracked range.
func (t *Tracker) slot() *slotState {
	if t.selected == invalidSlot {
		t.dropped++
		return nil
	}
	return &t.slots[t.selected]
}

// snapshot assembles the frame visible at a sync marker. A contact joins
// frames only once both of its coordinates have been reported; its position
// in that first frame becomes its start.
func (t *Tracker) snapshot(at time.Time) Frame {
	f := Frame{Time: at}
	for i := range t.slots {
		s := &t.slots[i]
		if !s.active || !s.hasX || !s.hasY {
			continue
		}
		if !s.started {
			s.started = true
			s.start = s.pos
		}
		f.Slots = append(f.Slots, ActiveSlot{Slot: i, Start: s.start, Pos: s.pos})
	}
	return f
}

// Reset drops all contact state and reselects slot zero. The dropped
// counter is cumulative and survives resets.
func (t *Tracker) Reset() {
	for i := range t.slots {
		t.slots[i] = slotState{}
	}
	t.selected = 0
}

// Dropped returns how many updates were ignored for addressing slots
// outside the tracked range.
func (t *Tracker) Dropped() uint64 { return t.dropped }

// MaxSlots returns the number of hardware slots the tracker follows.
func (t *Tracker) MaxSlots() int { return len(t.slots) }
