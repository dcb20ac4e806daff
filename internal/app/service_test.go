package service_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	service "github.com/gestured/gestured/internal/app"
	"github.com/gestured/gestured/internal/config"
	"github.com/gestured/gestured/internal/domain/gesture"
	"github.com/gestured/gestured/internal/domain/match"
	"github.com/gestured/gestured/internal/domain/touch"
	"github.com/gestured/gestured/internal/eventsim"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeDevice plays a canned batch and then ends the stream.
type fakeDevice struct {
	name    string
	updates []touch.Update
}

func (f *fakeDevice) Stream(ctx context.Context, emit func(touch.Update) error) error {
	return eventsim.Stream(ctx, f.updates, emit)
}

func (f *fakeDevice) Name() string  { return f.name }
func (f *fakeDevice) MaxSlots() int { return 5 }
func (f *fakeDevice) Close() error  { return nil }

func TestServiceNew(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is ready to configure", func() {
			So(svc, ShouldNotBeNil)
			So(svc.MonitorAddr(), ShouldBeEmpty)
		})
	})
}

func TestServiceRun(t *testing.T) {
	Convey("Given a service over two fake devices", t, func() {
		runner := &recordingRunner{}

		settings := config.New()
		settings.DebounceMS = 0

		devices := []config.Device{
			{Path: "/dev/input/event7", Rules: []match.Rule{
				{Kind: gesture.KindSwipe, Fingers: 3, Direction: gesture.DirectionRight, Action: "echo seven"},
			}},
			{Path: "/dev/input/event9", Rules: []match.Rule{
				{Kind: gesture.KindTap, Fingers: 2, Action: "echo nine"},
			}},
		}

		opener := service.OpenerFunc(func(_ context.Context, path string) (service.Device, error) {
			switch path {
			case "/dev/input/event7":
				return &fakeDevice{name: "pad-7", updates: eventsim.Swipe(3, gesture.DirectionRight, 300)}, nil
			case "/dev/input/event9":
				return &fakeDevice{name: "pad-9", updates: eventsim.Tap(2)}, nil
			default:
				return nil, errors.New("unknown device")
			}
		})

		svc := service.New(
			service.WithSettings(settings),
			service.WithDevices(devices),
			service.WithRunner(runner),
			service.WithOpener(opener),
		)

		Convey("When the service runs to completion", func() {
			err := svc.Run(context.Background())

			Convey("Then both device actions launched", func() {
				So(err, ShouldBeNil)
				got := runner.got()
				sort.Strings(got)
				So(got, ShouldResemble, []string{"echo nine", "echo seven"})
			})

			Convey("And the device status reflects the finished sessions", func() {
				statuses := svc.Devices(context.Background())
				So(statuses, ShouldHaveLength, 2)
				byPath := make(map[string]bool, 2)
				for _, st := range statuses {
					byPath[st.Path] = true
					So(st.Running, ShouldBeFalse)
				}
				So(byPath["/dev/input/event7"], ShouldBeTrue)
				So(byPath["/dev/input/event9"], ShouldBeTrue)
			})

			Convey("And both gestures were retained in history", func() {
				records := svc.Recent(context.Background(), 0)
				So(records, ShouldHaveLength, 2)
			})
		})
	})
}

func TestServiceRunWithoutDevices(t *testing.T) {
	Convey("Given a service with no configured devices", t, func() {
		svc := service.New(service.WithRunner(&recordingRunner{}))

		Convey("When it runs", func() {
			err := svc.Run(context.Background())

			Convey("Then it refuses with ErrNoDevices", func() {
				So(errors.Is(err, service.ErrNoDevices), ShouldBeTrue)
			})
		})
	})
}

func TestServiceRunAllOpensFail(t *testing.T) {
	Convey("Given a service whose devices cannot be opened", t, func() {
		devices := []config.Device{
			{Path: "/dev/input/event7"},
			{Path: "/dev/input/event9"},
		}
		opener := service.OpenerFunc(func(_ context.Context, _ string) (service.Device, error) {
			return nil, errors.New("permission denied")
		})

		svc := service.New(
			service.WithDevices(devices),
			service.WithRunner(&recordingRunner{}),
			service.WithOpener(opener),
		)

		Convey("When it runs", func() {
			err := svc.Run(context.Background())

			Convey("Then it fails with ErrNoSessions and reports the devices as stopped", func() {
				So(errors.Is(err, service.ErrNoSessions), ShouldBeTrue)
				statuses := svc.Devices(context.Background())
				So(statuses, ShouldHaveLength, 2)
				So(statuses[0].Running, ShouldBeFalse)
			})
		})
	})
}
