package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// clearEnv removes every variable the loader reads so tests start from
// defaults regardless of the invoking shell.
func clearEnv() {
	os.Unsetenv(EnvConfig)
	for _, key := range []string{
		"GESTURED_LOG_LEVEL",
		"GESTURED_LOG_FORMAT",
		"GESTURED_MAX_TAP_DISTANCE",
		"GESTURED_DIRECTION_BIAS",
		"GESTURED_DEBOUNCE_MS",
		"GESTURED_RESET_TIMEOUT_MS",
		"GESTURED_DEFAULT_MAX_SLOTS",
		"GESTURED_DISPATCH_QUEUE_SIZE",
		"GESTURED_HISTORY_SIZE",
		"GESTURED_MONITOR_ADDR",
		"GESTURED_GRAB",
	} {
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	Convey("Given no file and no environment overrides", t, func() {
		clearEnv()

		Convey("When settings are loaded", func() {
			cfg, err := Load(context.Background())

			Convey("Then every field carries its default", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.LogFormat, ShouldEqual, "text")
				So(cfg.MaxTapDistance, ShouldEqual, 100.0)
				So(cfg.DirectionBias, ShouldEqual, 1.0)
				So(cfg.DebounceMS, ShouldEqual, 100)
				So(cfg.ResetTimeoutMS, ShouldEqual, 0)
				So(cfg.DefaultMaxSlots, ShouldEqual, 5)
				So(cfg.DispatchQueueSize, ShouldEqual, 32)
				So(cfg.HistorySize, ShouldEqual, 64)
				So(cfg.MonitorAddr, ShouldBeEmpty)
				So(cfg.Grab, ShouldBeFalse)
			})
		})
	})
}

func TestLoadLayering(t *testing.T) {
	Convey("Given a settings file and environment overrides", t, func() {
		clearEnv()
		defer clearEnv()

		path := filepath.Join(t.TempDir(), "settings.yaml")
		body := []byte("log_format: json\ndebounce_ms: 250\nmonitor_addr: 127.0.0.1:9680\n")
		So(os.WriteFile(path, body, 0o600), ShouldBeNil)
		So(os.Setenv(EnvConfig, path), ShouldBeNil)
		So(os.Setenv("GESTURED_DEBOUNCE_MS", "300"), ShouldBeNil)
		So(os.Setenv("GESTURED_MAX_TAP_DISTANCE", "72.5"), ShouldBeNil)
		So(os.Setenv("GESTURED_GRAB", "true"), ShouldBeNil)

		Convey("When settings are loaded", func() {
			cfg, err := Load(context.Background())

			Convey("Then the file fills fields and the environment wins conflicts", func() {
				So(err, ShouldBeNil)
				So(cfg.LogFormat, ShouldEqual, "json")
				So(cfg.MonitorAddr, ShouldEqual, "127.0.0.1:9680")
				So(cfg.DebounceMS, ShouldEqual, 300)
				So(cfg.MaxTapDistance, ShouldEqual, 72.5)
				So(cfg.Grab, ShouldBeTrue)
				So(cfg.DefaultMaxSlots, ShouldEqual, 5)
			})
		})
	})
}

func TestLoadValidation(t *testing.T) {
	Convey("Given environment values the engine cannot run with", t, func() {
		clearEnv()
		defer clearEnv()

		Convey("When the tap distance is not positive", func() {
			So(os.Setenv("GESTURED_MAX_TAP_DISTANCE", "-5"), ShouldBeNil)
			cfg, err := Load(context.Background())

			Convey("Then loading fails with ErrInvalidSettings", func() {
				So(cfg, ShouldBeNil)
				So(errors.Is(err, ErrInvalidSettings), ShouldBeTrue)
			})
		})

		Convey("When the direction bias is zero", func() {
			So(os.Setenv("GESTURED_DIRECTION_BIAS", "0"), ShouldBeNil)
			cfg, err := Load(context.Background())

			Convey("Then loading fails with ErrInvalidSettings", func() {
				So(cfg, ShouldBeNil)
				So(errors.Is(err, ErrInvalidSettings), ShouldBeTrue)
			})
		})

		Convey("When the dispatch queue size is zero", func() {
			So(os.Setenv("GESTURED_DISPATCH_QUEUE_SIZE", "0"), ShouldBeNil)
			cfg, err := Load(context.Background())

			Convey("Then loading fails with ErrInvalidSettings", func() {
				So(cfg, ShouldBeNil)
				So(errors.Is(err, ErrInvalidSettings), ShouldBeTrue)
			})
		})

		Convey("When the debounce window is negative", func() {
			So(os.Setenv("GESTURED_DEBOUNCE_MS", "-1"), ShouldBeNil)
			cfg, err := Load(context.Background())

			Convey("Then loading fails with ErrInvalidSettings", func() {
				So(cfg, ShouldBeNil)
				So(errors.Is(err, ErrInvalidSettings), ShouldBeTrue)
			})
		})

		Convey("When the settings file does not exist", func() {
			So(os.Setenv(EnvConfig, filepath.Join(t.TempDir(), "missing.yaml")), ShouldBeNil)
			cfg, err := Load(context.Background())

			Convey("Then loading fails with ErrLoadSettings", func() {
				So(cfg, ShouldBeNil)
				So(errors.Is(err, ErrLoadSettings), ShouldBeTrue)
			})
		})
	})
}

func TestSettingsDurations(t *testing.T) {
	Convey("Given settings with millisecond windows", t, func() {
		cfg := New()
		cfg.DebounceMS = 250
		cfg.ResetTimeoutMS = 1500

		Convey("When the duration helpers are read", func() {
			Convey("Then they convert to time.Duration", func() {
				So(cfg.Debounce().Milliseconds(), ShouldEqual, 250)
				So(cfg.ResetTimeout().Milliseconds(), ShouldEqual, 1500)
			})
		})
	})
}
