// Package touch reconstructs per-contact state from the raw multi-touch
// protocol stream of a single input device.
//
// Devices report changes as a flat sequence of slot-addressed updates
// terminated by a sync marker. The tracker folds that sequence back into
// consistent frames: the set of contacts on the surface, each with the
// position where it landed and the position it has moved to.
package touch

import "time"

// ReleasedID is the tracking id a device reports when the contact in the
// selected slot lifts off the surface.
const ReleasedID = -1

// DefaultMaxSlots matches the slot range of common touchpads and is used
// when a device does not report its own.
const DefaultMaxSlots = 5

// Op identifies one primitive update in the multi-touch protocol stream.
type Op uint8

const (
	// OpSelect chooses the slot subsequent updates apply to.
	OpSelect Op = iota
	// OpTrackingID assigns a contact id to the selected slot. ReleasedID
	// clears the slot.
	OpTrackingID
	// OpPositionX reports the absolute X position of the selected slot.
	OpPositionX
	// OpPositionY reports the absolute Y position of the selected slot.
	OpPositionY
	// OpSync marks the end of a frame. All preceding updates since the
	// last sync become visible at once.
	OpSync
	// OpReset discards all contact state. Emitted when the device signals
	// a desynchronized stream.
	OpReset
)

// Update is one primitive change reported by a device.
type Update struct {
	Op    Op
	Value int32
	Time  time.Time
}

// Point is a position on the touch surface in device units.
type Point struct {
	X int32
	Y int32
}

// ActiveSlot is one touching contact inside a frame snapshot.
type ActiveSlot struct {
	// Slot is the hardware slot index the contact occupies.
	Slot int
	// Start is the contact's position in the first frame it appeared in.
	Start Point
	// Pos is the contact's position as of this frame.
	Pos Point
}

// Frame is the consistent snapshot of all touching contacts at a sync
// marker. Slots are ordered by ascending slot index.
type Frame struct {
	Time  time.Time
	Slots []ActiveSlot
}

// Empty reports whether no contact is touching the surface.
func (f Frame) Empty() bool { return len(f.Slots) == 0 }
