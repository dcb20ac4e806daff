// Package gesture classifies completed touch sequences into tap and swipe
// descriptors.
package gesture

import (
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the gesture shapes the classifier can produce.
type Kind uint8

const (
	// KindTap is a short touch with no meaningful travel.
	KindTap Kind = iota
	// KindSwipe is a directed movement across the surface.
	KindSwipe
)

// String returns the configuration spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindTap:
		return "tap"
	case KindSwipe:
		return "swipe"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind parses the configuration spelling of a gesture kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tap":
		return KindTap, nil
	case "swipe":
		return KindSwipe, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Direction is the dominant axis direction of a swipe.
type Direction uint8

const (
	// DirectionNone is reported for gestures without travel, i.e. taps.
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
	DirectionLeft
	DirectionRight
)

// String returns the configuration spelling of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "none"
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection parses the configuration spelling of a swipe direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirectionUp, nil
	case "down":
		return DirectionDown, nil
	case "left":
		return DirectionLeft, nil
	case "right":
		return DirectionRight, nil
	default:
		return DirectionNone, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// Descriptor summarizes one completed gesture.
type Descriptor struct {
	Kind    Kind
	Fingers int
	// Direction is DirectionNone for taps.
	Direction Direction
	// Magnitude is the aggregate travel distance in device units.
	Magnitude float64
	// Start is when the first contact landed, End when the last lifted.
	Start time.Time
	End   time.Time
}

// String renders the descriptor the way rules spell gestures.
func (d Descriptor) String() string {
	if d.Kind == KindSwipe {
		return fmt.Sprintf("%d-finger swipe %s", d.Fingers, d.Direction)
	}
	return fmt.Sprintf("%d-finger %s", d.Fingers, d.Kind)
}
