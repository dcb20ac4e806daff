package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gestured/gestured/internal/adapters/dispatch"
	"github.com/gestured/gestured/internal/adapters/history"
	"github.com/gestured/gestured/internal/domain/gesture"
	"github.com/gestured/gestured/internal/domain/match"
	"github.com/gestured/gestured/internal/domain/touch"
	"github.com/gestured/gestured/pkg/logger"
	"github.com/gestured/gestured/pkg/metrics"
)

// Session drives one device: updates in, frames tracked, gestures
// classified, rules matched, actions dispatched. A session owns its
// tracker and recognizer and must be driven from a single goroutine.
type Session struct {
	device string
	name   string
	source Source
	rules  []match.Rule
	disp   *dispatch.Dispatcher

	maxSlots int
	recOpts  []gesture.Option
	resetGap time.Duration
	hist     *history.Log
	publish  func(history.Record)
	log      logger.Logger

	tracker *touch.Tracker
	rec     *gesture.Recognizer

	lastUpdate time.Time
	dropped    uint64
}

// SessionOption applies a configuration option to a Session.
type SessionOption func(*Session)

// WithDeviceName sets the human-readable device name used in logs.
func WithDeviceName(name string) SessionOption {
	return func(s *Session) {
		if name != "" {
			s.name = name
		}
	}
}

// WithMaxSlots sets the contact capacity tracked for the device.
func WithMaxSlots(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.maxSlots = n
		}
	}
}

// WithRecognizerOptions configures the session's gesture recognizer.
func WithRecognizerOptions(opts ...gesture.Option) SessionOption {
	return func(s *Session) {
		s.recOpts = append(s.recOpts, opts...)
	}
}

// WithResetTimeout abandons an in-progress gesture when the device goes
// silent for longer than d. Zero disables the timeout.
func WithResetTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		if d >= 0 {
			s.resetGap = d
		}
	}
}

// WithHistory records completed gestures into the given log.
func WithHistory(h *history.Log) SessionOption {
	return func(s *Session) {
		s.hist = h
	}
}

// WithPublish forwards completed gesture records to fn.
func WithPublish(fn func(history.Record)) SessionOption {
	return func(s *Session) {
		s.publish = fn
	}
}

// WithSessionLogger sets a custom logger for the session.
func WithSessionLogger(log logger.Logger) SessionOption {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSession builds a session for one device path.
func NewSession(device string, source Source, rules []match.Rule, disp *dispatch.Dispatcher, opts ...SessionOption) *Session {
	s := &Session{
		device:   device,
		name:     device,
		source:   source,
		rules:    rules,
		disp:     disp,
		maxSlots: touch.DefaultMaxSlots,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.Get().Named("session")
	}
	s.tracker = touch.NewTracker(touch.WithMaxSlots(s.maxSlots))
	s.rec = gesture.New(s.recOpts...)

	return s
}

// Device returns the device path the session is bound to.
func (s *Session) Device() string { return s.device }

// Name returns the human-readable device name.
func (s *Session) Name() string { return s.name }

// Run streams the source through the engine until the stream ends. The
// returned error is the source's.
func (s *Session) Run(ctx context.Context) error {
	return s.source.Stream(ctx, func(u touch.Update) error {
		s.handle(ctx, u)
		return nil
	})
}

// handle advances the engine by one update.
func (s *Session) handle(ctx context.Context, u touch.Update) {
	start := time.Now()

	if s.resetGap > 0 && !s.lastUpdate.IsZero() && u.Time.Sub(s.lastUpdate) > s.resetGap && s.rec.InProgress() {
		s.tracker.Reset()
		s.rec.Reset()
		metrics.RecordStaleReset()
		s.log.Debug(ctx, "stale gesture abandoned",
			logger.String("device", s.device),
			logger.Duration("gap", u.Time.Sub(s.lastUpdate)))
	}
	s.lastUpdate = u.Time

	// A desynchronized stream abandons the in-progress gesture along
	// with the slot state.
	if u.Op == touch.OpReset {
		s.rec.Reset()
	}

	frame, ok := s.tracker.Apply(u)
	for dropped := s.tracker.Dropped(); s.dropped < dropped; s.dropped++ {
		metrics.RecordUpdateDropped()
	}
	if !ok {
		return
	}

	metrics.RecordFrame()
	res := s.rec.Advance(frame)
	metrics.RecordFrameLatency(float64(time.Since(start).Microseconds()))

	switch {
	case res.Debounced:
		metrics.RecordGestureDebounced()
		s.log.Debug(ctx, "gesture debounced", logger.String("device", s.device))
	case res.Emitted:
		s.emit(ctx, res.Descriptor)
	case res.Completed:
		metrics.RecordGestureDiscarded()
		s.log.Debug(ctx, "gesture discarded", logger.String("device", s.device))
	}
}

// emit records a classified gesture and dispatches its action, if any
// rule matches.
func (s *Session) emit(ctx context.Context, d gesture.Descriptor) {
	metrics.RecordGestureClassified(d.Kind.String())

	rec := history.Record{
		ID:        uuid.New(),
		Device:    s.device,
		Kind:      d.Kind.String(),
		Fingers:   d.Fingers,
		Magnitude: d.Magnitude,
		Time:      d.End,
	}
	if d.Kind == gesture.KindSwipe {
		rec.Direction = d.Direction.String()
	}

	rule, ok := match.First(s.rules, d)
	if !ok {
		metrics.RecordGestureUnmatched()
		s.log.Debug(ctx, "no rule for gesture",
			logger.String("device", s.device),
			logger.String("gesture", d.String()))
		s.record(rec)
		return
	}

	metrics.RecordRuleMatched()
	rec.Action = rule.Action
	rec.Dispatched = s.disp.Dispatch(ctx, dispatch.Request{
		ID:     rec.ID,
		Device: s.device,
		Action: rule.Action,
	})

	s.log.Info(ctx, "gesture matched",
		logger.String("id", rec.ID.String()),
		logger.String("device", s.device),
		logger.String("gesture", d.String()),
		logger.String("action", rule.Action),
		logger.Bool("dispatched", rec.Dispatched))

	s.record(rec)
}

func (s *Session) record(rec history.Record) {
	if s.hist != nil {
		s.hist.Append(rec)
	}
	if s.publish != nil {
		s.publish(rec)
	}
}
