package touch_test

import (
	"testing"
	"time"

	"github.com/gestured/gestured/internal/domain/touch"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func sel(n int32) touch.Update    { return touch.Update{Op: touch.OpSelect, Value: n} }
func track(id int32) touch.Update { return touch.Update{Op: touch.OpTrackingID, Value: id} }
func posX(v int32) touch.Update   { return touch.Update{Op: touch.OpPositionX, Value: v} }
func posY(v int32) touch.Update   { return touch.Update{Op: touch.OpPositionY, Value: v} }
func syncAt(t time.Time) touch.Update {
	return touch.Update{Op: touch.OpSync, Time: t}
}

// feed applies updates in order and returns every completed frame.
func feed(tr *touch.Tracker, updates ...touch.Update) []touch.Frame {
	var frames []touch.Frame
	for _, u := range updates {
		if f, ok := tr.Apply(u); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

func TestTrackerLifecycle(t *testing.T) {
	Convey("Given a fresh tracker", t, func() {
		tr := touch.NewTracker()

		Convey("When one contact lands, moves and lifts", func() {
			frames := feed(tr,
				sel(0), track(7), posX(500), posY(500), syncAt(base),
				posX(520), syncAt(base.Add(10*time.Millisecond)),
				track(touch.ReleasedID), syncAt(base.Add(20*time.Millisecond)),
			)

			Convey("Then every sync yields a frame", func() {
				So(frames, ShouldHaveLength, 3)
			})

			Convey("And the first frame carries the landing position", func() {
				So(frames[0].Slots, ShouldHaveLength, 1)
				So(frames[0].Slots[0].Slot, ShouldEqual, 0)
				So(frames[0].Slots[0].Start, ShouldResemble, touch.Point{X: 500, Y: 500})
				So(frames[0].Slots[0].Pos, ShouldResemble, touch.Point{X: 500, Y: 500})
				So(frames[0].Time, ShouldEqual, base)
			})

			Convey("And movement updates the position but not the start", func() {
				So(frames[1].Slots[0].Pos, ShouldResemble, touch.Point{X: 520, Y: 500})
				So(frames[1].Slots[0].Start, ShouldResemble, touch.Point{X: 500, Y: 500})
			})

			Convey("And the release frame is empty", func() {
				So(frames[2].Empty(), ShouldBeTrue)
			})
		})

		Convey("When updates arrive without an explicit slot selection", func() {
			frames := feed(tr, track(3), posX(10), posY(20), syncAt(base))

			Convey("Then they apply to slot zero", func() {
				So(frames[0].Slots, ShouldHaveLength, 1)
				So(frames[0].Slots[0].Slot, ShouldEqual, 0)
			})
		})

		Convey("When an axis is reported twice within one frame", func() {
			frames := feed(tr, track(3), posX(100), posX(180), posY(50), syncAt(base))

			Convey("Then the last write wins", func() {
				So(frames[0].Slots[0].Pos, ShouldResemble, touch.Point{X: 180, Y: 50})
				So(frames[0].Slots[0].Start, ShouldResemble, touch.Point{X: 180, Y: 50})
			})
		})

		Convey("When a contact has reported only one axis", func() {
			frames := feed(tr,
				track(3), posX(100), syncAt(base),
				posY(40), syncAt(base.Add(10*time.Millisecond)),
			)

			Convey("Then it stays out of frames until both axes are known", func() {
				So(frames[0].Empty(), ShouldBeTrue)
				So(frames[1].Slots, ShouldHaveLength, 1)
				So(frames[1].Slots[0].Start, ShouldResemble, touch.Point{X: 100, Y: 40})
			})
		})
	})
}

func TestTrackerMultipleContacts(t *testing.T) {
	Convey("Given a tracker with two contacts down", t, func() {
		tr := touch.NewTracker()
		frames := feed(tr,
			sel(0), track(7), posX(100), posY(100),
			sel(1), track(8), posX(300), posY(100),
			syncAt(base),
		)
		So(frames[0].Slots, ShouldHaveLength, 2)

		Convey("When one contact lifts before the sync marker", func() {
			frames := feed(tr,
				sel(0), track(touch.ReleasedID),
				sel(1), posX(320),
				syncAt(base.Add(10*time.Millisecond)),
			)

			Convey("Then the assembled frame holds only the survivor", func() {
				So(frames[0].Slots, ShouldHaveLength, 1)
				So(frames[0].Slots[0].Slot, ShouldEqual, 1)
				So(frames[0].Slots[0].Pos, ShouldResemble, touch.Point{X: 320, Y: 100})
			})
		})

		Convey("When the selection carries over into the next frame", func() {
			// Slot 1 stays selected from the previous burst.
			frames := feed(tr, posX(350), syncAt(base.Add(10*time.Millisecond)))

			Convey("Then unselected updates keep applying to it", func() {
				So(frames[0].Slots, ShouldHaveLength, 2)
				So(frames[0].Slots[1].Slot, ShouldEqual, 1)
				So(frames[0].Slots[1].Pos, ShouldResemble, touch.Point{X: 350, Y: 100})
				So(frames[0].Slots[0].Pos, ShouldResemble, touch.Point{X: 100, Y: 100})
			})
		})

		Convey("When frames are assembled", func() {
			Convey("Then slots are ordered by ascending index", func() {
				So(frames[0].Slots[0].Slot, ShouldEqual, 0)
				So(frames[0].Slots[1].Slot, ShouldEqual, 1)
			})
		})
	})
}

func TestTrackerOutOfRange(t *testing.T) {
	Convey("Given a tracker with the default slot range", t, func() {
		tr := touch.NewTracker()
		So(tr.MaxSlots(), ShouldEqual, touch.DefaultMaxSlots)

		Convey("When the device selects a slot outside the range", func() {
			frames := feed(tr,
				sel(0), track(7), posX(100), posY(100),
				sel(9), track(8), posX(300), posY(300),
				syncAt(base),
			)

			Convey("Then the stray updates are ignored and counted", func() {
				So(tr.Dropped(), ShouldEqual, 4)
			})

			Convey("And in-range state stays intact", func() {
				So(frames[0].Slots, ShouldHaveLength, 1)
				So(frames[0].Slots[0].Slot, ShouldEqual, 0)
				So(frames[0].Slots[0].Pos, ShouldResemble, touch.Point{X: 100, Y: 100})
			})
		})

		Convey("When a valid selection follows an invalid one", func() {
			feed(tr, sel(9), posX(300), sel(1), track(4), posX(50), posY(60))
			frames := feed(tr, syncAt(base))

			Convey("Then tracking resumes normally", func() {
				So(frames[0].Slots, ShouldHaveLength, 1)
				So(frames[0].Slots[0].Slot, ShouldEqual, 1)
				So(frames[0].Slots[0].Pos, ShouldResemble, touch.Point{X: 50, Y: 60})
			})
		})
	})
}

func TestTrackerIdentityChanges(t *testing.T) {
	Convey("Given a tracker with one settled contact", t, func() {
		tr := touch.NewTracker()
		feed(tr, track(7), posX(100), posY(100), syncAt(base))

		Convey("When the device restates the same tracking id", func() {
			frames := feed(tr, track(7), posX(150), syncAt(base.Add(10*time.Millisecond)))

			Convey("Then the contact keeps its start position", func() {
				So(frames[0].Slots[0].Start, ShouldResemble, touch.Point{X: 100, Y: 100})
				So(frames[0].Slots[0].Pos, ShouldResemble, touch.Point{X: 150, Y: 100})
			})
		})

		Convey("When a new tracking id replaces the old one without a release", func() {
			frames := feed(tr, track(9), posX(400), posY(400), syncAt(base.Add(10*time.Millisecond)))

			Convey("Then the slot restarts as a fresh contact", func() {
				So(frames[0].Slots[0].Start, ShouldResemble, touch.Point{X: 400, Y: 400})
			})
		})
	})
}

func TestTrackerReset(t *testing.T) {
	Convey("Given a tracker with active contacts", t, func() {
		tr := touch.NewTracker(touch.WithMaxSlots(3))
		feed(tr,
			sel(0), track(7), posX(100), posY(100),
			sel(2), track(8), posX(300), posY(300),
			syncAt(base),
		)

		Convey("When a reset update arrives", func() {
			frames := feed(tr,
				touch.Update{Op: touch.OpReset},
				syncAt(base.Add(10*time.Millisecond)),
			)

			Convey("Then the following frame is empty", func() {
				So(frames[0].Empty(), ShouldBeTrue)
			})

			Convey("And the selection falls back to slot zero", func() {
				frames := feed(tr, track(5), posX(10), posY(10), syncAt(base.Add(20*time.Millisecond)))
				So(frames[0].Slots[0].Slot, ShouldEqual, 0)
			})
		})
	})
}

func TestTrackerOptions(t *testing.T) {
	Convey("Given tracker options", t, func() {
		Convey("When configuring a custom slot range", func() {
			tr := touch.NewTracker(touch.WithMaxSlots(10))

			Convey("Then the range is applied", func() {
				So(tr.MaxSlots(), ShouldEqual, 10)
			})
		})

		Convey("When configuring a nonsensical slot range", func() {
			tr := touch.NewTracker(touch.WithMaxSlots(0))

			Convey("Then the default is kept", func() {
				So(tr.MaxSlots(), ShouldEqual, touch.DefaultMaxSlots)
			})
		})
	})
}
