package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gestured/gestured/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const testRules = `[[devices]]
device = "/dev/input/event7"

[[devices.gestures]]
type = "swipe"
fingers = 3
direction = "right"
execute = "echo next-workspace"

[[devices.gestures]]
type = "tap"
fingers = 2
execute = "echo context-menu"
`

func writeRuleFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gestured.toml")
	if err := os.WriteFile(path, []byte(testRules), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	Convey("Given the root command", t, func() {
		cmd := newRootCmd()

		Convey("Then it should be named gestured", func() {
			So(cmd.Use, ShouldEqual, "gestured")
		})

		Convey("Then it should carry the maintenance subcommands", func() {
			names := make([]string, 0, len(cmd.Commands()))
			for _, sub := range cmd.Commands() {
				names = append(names, sub.Name())
			}
			So(names, ShouldContain, "devices")
			So(names, ShouldContain, "check")
			So(names, ShouldContain, "simulate")
			So(names, ShouldContain, "version")
		})
	})
}

func TestVersionCommand(t *testing.T) {
	Convey("Given the version command", t, func() {
		Convey("When it runs", func() {
			out, err := execute("version")

			Convey("Then it should print the build string", func() {
				So(err, ShouldBeNil)
				So(out, ShouldStartWith, "gestured ")
				So(out, ShouldContainSubstring, "(go")
			})
		})
	})
}

func TestCheckCommand(t *testing.T) {
	Convey("Given a rule file", t, func() {
		path := writeRuleFile(t)

		Convey("When check runs against it", func() {
			out, err := execute("check", "--config", path)

			Convey("Then it should summarize settings and rules", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "settings: tap distance 100")
				So(out, ShouldContainSubstring, "/dev/input/event7: 2 rules")
				So(out, ShouldContainSubstring, "3-finger swipe right -> echo next-workspace")
				So(out, ShouldContainSubstring, "2-finger tap -> echo context-menu")
			})
		})

		Convey("When check runs against a missing file", func() {
			_, err := execute("check", "--config", filepath.Join(t.TempDir(), "absent.toml"))

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestSimulateCommand(t *testing.T) {
	Convey("Given a rule file", t, func() {
		path := writeRuleFile(t)

		Convey("When a matching swipe is simulated", func() {
			out, err := execute("simulate", "--config", path,
				"--type", "swipe", "--fingers", "3", "--direction", "right", "--distance", "300")

			Convey("Then it should classify and name the action", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "classified: 3-finger swipe right")
				So(out, ShouldContainSubstring, "/dev/input/event7 would run: echo next-workspace")
			})
		})

		Convey("When a matching tap is simulated", func() {
			out, err := execute("simulate", "--config", path,
				"--type", "tap", "--fingers", "2")

			Convey("Then it should classify and name the action", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "classified: 2-finger tap")
				So(out, ShouldContainSubstring, "would run: echo context-menu")
			})
		})

		Convey("When a swipe travels less than the tap threshold", func() {
			out, err := execute("simulate", "--config", path,
				"--type", "swipe", "--fingers", "4", "--direction", "right", "--distance", "40")

			Convey("Then it should classify as a tap with no match", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "classified: 4-finger tap")
				So(out, ShouldContainSubstring, "no configured rule matches")
			})
		})

		Convey("When the gesture type is unknown", func() {
			out, err := execute("simulate", "--config", path, "--type", "pinch")

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
				So(strings.Contains(out, "would run"), ShouldBeFalse)
			})
		})

		Convey("When the finger count is invalid", func() {
			_, err := execute("simulate", "--config", path, "--fingers", "0")

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
