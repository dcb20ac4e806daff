package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			registryOpt := WithPrometheusRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})

			Convey("And its metrics should land on that registry", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, " "), ShouldContainSubstring, "gestured_engine_frames_processed_total")
				So(strings.Join(names, " "), ShouldContainSubstring, "gestured_engine_dispatch_queue_depth")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test-namespace")
				So(manager.subsystem, ShouldEqual, "test-subsystem")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording pipeline metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					RecordFrame()
					RecordUpdateDropped()
					RecordFrameLatency(42.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording gesture metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					RecordGestureClassified("swipe")
					RecordGestureClassified("tap")
					RecordGestureDiscarded()
					RecordGestureDebounced()
					RecordStaleReset()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording matching and dispatch metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					RecordRuleMatched()
					RecordGestureUnmatched()
					RecordActionDispatched()
					RecordActionFailure()
					RecordDispatchDropped()
					UpdateDispatchQueueDepth(3)
					UpdateDispatchQueueCapacity(32)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording session and monitor metrics", func() {
			Convey("Then it should record without panicking", func() {
				So(func() {
					UpdateActiveSessions(2)
					RecordDeviceError()
					RecordHTTPRequest("/healthz", "GET", "200")
					UpdateStreamClients(1)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("When retrieving it", func() {
			registry := GetRegistry()

			Convey("Then it should not be nil", func() {
				So(registry, ShouldNotBeNil)
			})

			Convey("And it should gather without error", func() {
				_, err := registry.Gather()
				So(err, ShouldBeNil)
			})
		})
	})
}
