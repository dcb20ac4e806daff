package evdev

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/gestured/gestured/internal/domain/touch"
)

// pollTimeoutMs bounds how long a poll sleeps, so context cancellation is
// noticed even on a silent device.
const pollTimeoutMs = 500

// readBufSize is a multiple of both input_event layouts.
const readBufSize = 4096

// Device streams touch updates from one /dev/input event node.
type Device struct {
	path     string
	file     *os.File
	name     string
	maxSlots int
	grab     bool
}

// Open opens an event node and interrogates it for its name and slot
// range. Devices that do not report a slot range keep the fallback.
func Open(path string, opts ...Option) (*Device, error) {
	d := &Device{path: path, maxSlots: touch.DefaultMaxSlots}

	for _, opt := range opts {
		opt(d)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening device: %w", err)
	}
	fd := int(f.Fd())

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("setting nonblocking mode: %w", err)
	}

	d.file = f

	d.name = deviceName(fd)
	if d.name == "" {
		d.name = filepath.Base(path)
	}

	if info, err := getAbsInfo(fd, ABS_MT_SLOT); err == nil && info.Max > 0 {
		d.maxSlots = int(info.Max) + 1
	}

	if d.grab {
		tryGrab(fd)
	}

	return d, nil
}

// Path returns the event node path the device was opened from.
func (d *Device) Path() string { return d.path }

// Name returns the kernel-reported device name.
func (d *Device) Name() string { return d.name }

// MaxSlots returns the slot range the device reported, or the fallback.
func (d *Device) MaxSlots() int { return d.maxSlots }

// Close releases the device. A grabbed device is ungrabbed implicitly when
// the descriptor closes.
func (d *Device) Close() error { return d.file.Close() }

// Stream reads the device until the context is cancelled, the device goes
// away, or emit returns an error. Every relevant record is handed to emit
// in stream order.
func (d *Device) Stream(ctx context.Context, emit func(touch.Update) error) error {
	fd := int(d.file.Fd())
	parser := &recordParser{}
	buf := make([]byte, readBufSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("polling device: %w", err)
		}
		if n == 0 {
			continue
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return ErrDeviceGone
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		nr, err := unix.Read(fd, buf)
		switch {
		case err == unix.EAGAIN:
			continue
		case err == unix.ENODEV:
			return ErrDeviceGone
		case err != nil:
			return fmt.Errorf("reading device: %w", err)
		case nr == 0:
			return ErrDeviceGone
		}

		var emitErr error
		parser.feed(buf[:nr], func(e rawEvent) {
			if emitErr != nil {
				return
			}
			if u, ok := translate(e); ok {
				emitErr = emit(u)
			}
		})
		if emitErr != nil {
			return emitErr
		}
	}
}
