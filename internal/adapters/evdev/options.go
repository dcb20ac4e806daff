package evdev

// Option applies a configuration option when opening a device.
type Option func(*Device)

// WithGrab requests exclusive access to the device so other listeners stop
// seeing its events. Grabbing is best effort.
func WithGrab(grab bool) Option {
	return func(d *Device) {
		d.grab = grab
	}
}

// WithFallbackSlots sets the slot range assumed when the device does not
// report one. Values below one are ignored.
func WithFallbackSlots(n int) Option {
	return func(d *Device) {
		if n > 0 {
			d.maxSlots = n
		}
	}
}
