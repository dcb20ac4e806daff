package evdev

import "errors"

// Errors for device streaming.
var (
	// ErrDeviceGone indicates the kernel closed the event node, usually
	// because the device was unplugged.
	ErrDeviceGone = errors.New("input device gone")
)
