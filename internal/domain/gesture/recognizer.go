package gesture

import (
	"math"
	"time"

	"github.com/gestured/gestured/internal/domain/touch"
)

// Defaults chosen for touchpads reporting in raw device units.
const (
	// DefaultTapDistance is the travel below which a touch still counts
	// as a tap, and at or above which it becomes a swipe.
	DefaultTapDistance = 100.0

	// DefaultDirectionBias weights horizontal against vertical travel
	// when deciding a swipe's direction. 1.0 treats the axes equally;
	// exact ties go vertical.
	DefaultDirectionBias = 1.0

	// DefaultDebounce suppresses gestures that complete too soon after
	// the previous emission.
	DefaultDebounce = 100 * time.Millisecond
)

// state is the classifier phase.
type state uint8

const (
	stateIdle state = iota
	stateInProgress
)

// slotTravel accumulates how far one contact strayed from where it landed.
type slotTravel struct {
	start touch.Point
	max   float64
}

// Result reports what a frame did to the gesture in progress.
type Result struct {
	// Descriptor is valid only when Emitted is set.
	Descriptor Descriptor
	// Emitted means a gesture completed and classified this frame.
	Emitted bool
	// Completed means all contacts lifted this frame, whether or not a
	// descriptor came out of it.
	Completed bool
	// Debounced means the completed gesture was suppressed for following
	// the previous emission too closely.
	Debounced bool
}

// Recognizer runs the tap/swipe state machine over frame snapshots. It is
// not safe for concurrent use; a device session owns exactly one recognizer.
type Recognizer struct {
	tapDistance float64
	bias        float64
	debounce    time.Duration

	st      state
	peak    int
	rep     int
	repLast touch.Point
	travel  map[int]*slotTravel
	dx, dy  float64
	started time.Time

	// lastEmit survives resets so the debounce window also covers
	// gestures completing right after an abandoned one.
	lastEmit time.Time
}

// New creates a recognizer with the given options.
func New(opts ...Option) *Recognizer {
	r := &Recognizer{
		tapDistance: DefaultTapDistance,
		bias:        DefaultDirectionBias,
		debounce:    DefaultDebounce,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Advance feeds the next frame snapshot through the state machine.
func (r *Recognizer) Advance(f touch.Frame) Result {
	switch {
	case r.st == stateIdle && f.Empty():
		return Result{}
	case r.st == stateIdle:
		r.begin(f)
		return Result{}
	case !f.Empty():
		r.extend(f)
		return Result{}
	default:
		return r.finish(f)
	}
}

// InProgress reports whether a gesture is currently being tracked.
func (r *Recognizer) InProgress() bool { return r.st == stateInProgress }

// Reset abandons any gesture in progress. The debounce clock is kept, so a
// gesture completing right after a reset is still debounced against the
// last emission.
func (r *Recognizer) Reset() { r.resetProgress() }

// begin opens a gesture on the first non-empty frame. The lowest occupied
// slot becomes the representative whose travel is aggregated.
func (r *Recognizer) begin(f touch.Frame) {
	r.st = stateInProgress
	r.peak = len(f.Slots)
	r.travel = make(map[int]*slotTravel, len(f.Slots))
	r.started = f.Time
	r.rep = f.Slots[0].Slot
	r.repLast = f.Slots[0].Pos
	r.track(f)
}

// extend folds a non-empty frame into the gesture in progress.
func (r *Recognizer) extend(f touch.Frame) {
	if len(f.Slots) > r.peak {
		r.peak = len(f.Slots)
	}
	r.track(f)
	r.follow(f)
}

// track updates the per-slot travel peaks. A slot whose start position
// changed holds a new contact and starts over.
func (r *Recognizer) track(f touch.Frame) {
	for _, s := range f.Slots {
		tv := r.travel[s.Slot]
		if tv == nil || tv.start != s.Start {
			tv = &slotTravel{start: s.Start}
			r.travel[s.Slot] = tv
		}
		if d := dist(tv.start, s.Pos); d > tv.max {
			tv.max = d
		}
	}
}

// follow aggregates the representative's travel. When the representative
// lifts, the lowest remaining slot takes over at its current position, so
// the positional jump between the two contacts never counts as travel.
func (r *Recognizer) follow(f touch.Frame) {
	for _, s := range f.Slots {
		if s.Slot == r.rep {
			r.dx += float64(s.Pos.X - r.repLast.X)
			r.dy += float64(s.Pos.Y - r.repLast.Y)
			r.repLast = s.Pos
			return
		}
	}
	r.rep = f.Slots[0].Slot
	r.repLast = f.Slots[0].Pos
}

// finish closes the gesture on the first empty frame and classifies it.
func (r *Recognizer) finish(f touch.Frame) Result {
	defer r.resetProgress()

	res := Result{Completed: true}

	if r.debounce > 0 && !r.lastEmit.IsZero() && f.Time.Sub(r.lastEmit) < r.debounce {
		res.Debounced = true
		return res
	}

	d, ok := r.classify(f.Time)
	if !ok {
		return res
	}

	res.Descriptor = d
	res.Emitted = true
	r.lastEmit = f.Time
	return res
}

// classify decides what the completed touch sequence was. Travel at or
// beyond the tap distance makes a swipe. Below it, a lone finger is always
// a tap, while a multi-finger touch is a tap only if every contact stayed
// near where it landed. Anything else is discarded.
func (r *Recognizer) classify(end time.Time) (Descriptor, bool) {
	d := Descriptor{
		Fingers:   r.peak,
		Magnitude: math.Hypot(r.dx, r.dy),
		Start:     r.started,
		End:       end,
	}

	switch {
	case d.Magnitude >= r.tapDistance:
		d.Kind = KindSwipe
		d.Direction = r.direction()
	case r.peak == 1:
		d.Kind = KindTap
	case r.steady():
		d.Kind = KindTap
	default:
		return Descriptor{}, false
	}

	return d, true
}

// steady reports whether every contact stayed below the tap distance.
func (r *Recognizer) steady() bool {
	for _, tv := range r.travel {
		if tv.max >= r.tapDistance {
			return false
		}
	}
	return true
}

// direction picks the dominant axis of the aggregate travel. Horizontal
// wins only when it exceeds the weighted vertical component; positive Y
// points down the surface.
func (r *Recognizer) direction() Direction {
	if math.Abs(r.dx) > r.bias*math.Abs(r.dy) {
		if r.dx > 0 {
			return DirectionRight
		}
		return DirectionLeft
	}
	if r.dy > 0 {
		return DirectionDown
	}
	return DirectionUp
}

func (r *Recognizer) resetProgress() {
	r.st = stateIdle
	r.peak = 0
	r.rep = 0
	r.repLast = touch.Point{}
	r.travel = nil
	r.dx, r.dy = 0, 0
	r.started = time.Time{}
}

func dist(a, b touch.Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}
