package service

import (
	"context"

	"github.com/gestured/gestured/internal/adapters/evdev"
	"github.com/gestured/gestured/internal/domain/touch"
)

// Source streams touch updates into an emit callback until the context
// is cancelled, the stream ends, or emit returns an error.
type Source interface {
	Stream(ctx context.Context, emit func(touch.Update) error) error
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, emit func(touch.Update) error) error

// Stream implements Source.
func (f SourceFunc) Stream(ctx context.Context, emit func(touch.Update) error) error {
	return f(ctx, emit)
}

// Device is an opened event source with identity and lifecycle.
type Device interface {
	Source

	// Name returns the human-readable device name.
	Name() string

	// MaxSlots returns the contact capacity the device reports.
	MaxSlots() int

	Close() error
}

// Opener opens the event stream behind a device path.
type Opener interface {
	Open(ctx context.Context, path string) (Device, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, path string) (Device, error)

// Open implements Opener.
func (f OpenerFunc) Open(ctx context.Context, path string) (Device, error) {
	return f(ctx, path)
}

// deviceOpener opens real event devices.
type deviceOpener struct {
	grab          bool
	fallbackSlots int
}

func (o deviceOpener) Open(_ context.Context, path string) (Device, error) {
	return evdev.Open(path,
		evdev.WithGrab(o.grab),
		evdev.WithFallbackSlots(o.fallbackSlots),
	)
}
