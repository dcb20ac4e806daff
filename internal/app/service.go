// Package service wires device sessions, dispatchers and the monitor
// into one runnable gesture engine.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gestured/gestured/internal/adapters/dispatch"
	"github.com/gestured/gestured/internal/adapters/history"
	"github.com/gestured/gestured/internal/adapters/monitor"
	"github.com/gestured/gestured/internal/config"
	"github.com/gestured/gestured/internal/domain/gesture"
	"github.com/gestured/gestured/pkg/logger"
	"github.com/gestured/gestured/pkg/metrics"
)

const monitorShutdownTimeout = 5 * time.Second

// Service runs one session per configured device and carries the shared
// history and monitor surface.
type Service struct {
	mu sync.RWMutex

	// Configuration
	settings *config.Settings
	devices  []config.Device
	runner   dispatch.Runner
	opener   Opener
	log      logger.Logger

	// State
	status map[string]*deviceState
	active int
	hist   *history.Log
	mon    *monitor.Server
}

// deviceState is what the monitor reports about one configured device.
type deviceState struct {
	name    string
	rules   int
	running bool
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSettings sets the engine settings.
func WithSettings(settings *config.Settings) Option {
	return func(s *Service) {
		if settings != nil {
			s.settings = settings
		}
	}
}

// WithDevices sets the configured devices and their rules.
func WithDevices(devices []config.Device) Option {
	return func(s *Service) {
		s.devices = devices
	}
}

// WithRunner sets the action runner shared by all sessions.
func WithRunner(runner dispatch.Runner) Option {
	return func(s *Service) {
		if runner != nil {
			s.runner = runner
		}
	}
}

// WithOpener sets how device paths are opened.
func WithOpener(opener Opener) Option {
	return func(s *Service) {
		if opener != nil {
			s.opener = opener
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		settings: config.New(),
		runner:   dispatch.ShellRunner{},
		status:   make(map[string]*deviceState),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.Get().Named("service")
	}

	return s
}

// Run starts a session per configured device and blocks until every
// session has ended. It is one-shot; build a fresh Service to run again.
func (s *Service) Run(ctx context.Context) error {
	if len(s.devices) == 0 {
		return ErrNoDevices
	}

	opener := s.opener
	if opener == nil {
		opener = deviceOpener{
			grab:          s.settings.Grab,
			fallbackSlots: s.settings.DefaultMaxSlots,
		}
	}

	if s.settings.HistorySize > 0 {
		s.mu.Lock()
		s.hist = history.New(history.WithCapacity(s.settings.HistorySize))
		s.mu.Unlock()
	}

	if s.settings.MonitorAddr != "" {
		mon := monitor.New(s.settings.MonitorAddr, s, monitor.WithLogger(s.log.Named("monitor")))
		if err := mon.Start(ctx); err != nil {
			return err
		}
		s.mu.Lock()
		s.mon = mon
		s.mu.Unlock()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), monitorShutdownTimeout)
			defer cancel()
			if err := mon.Shutdown(shutdownCtx); err != nil {
				s.log.Error(ctx, "monitor shutdown failed", logger.Error(err))
			}
		}()
	}

	var wg sync.WaitGroup
	started := 0

	for _, dev := range s.devices {
		dev := dev

		device, err := opener.Open(ctx, dev.Path)
		if err != nil {
			metrics.RecordDeviceError()
			s.log.Error(ctx, "opening device failed",
				logger.String("device", dev.Path),
				logger.Error(err))
			s.setState(dev.Path, &deviceState{rules: len(dev.Rules)})
			continue
		}

		s.setState(dev.Path, &deviceState{name: device.Name(), rules: len(dev.Rules), running: true})

		disp := dispatch.New(s.runner,
			dispatch.WithQueueSize(s.settings.DispatchQueueSize),
			dispatch.WithLogger(s.log.Named("dispatch")))
		disp.Start(ctx)

		session := NewSession(dev.Path, device, dev.Rules, disp,
			WithDeviceName(device.Name()),
			WithMaxSlots(device.MaxSlots()),
			WithRecognizerOptions(
				gesture.WithTapDistance(s.settings.MaxTapDistance),
				gesture.WithDirectionBias(s.settings.DirectionBias),
				gesture.WithDebounce(s.settings.Debounce()),
			),
			WithResetTimeout(s.settings.ResetTimeout()),
			WithHistory(s.hist),
			WithPublish(s.publish),
			WithSessionLogger(s.log.Named("session")),
		)

		s.log.Info(ctx, "device session starting",
			logger.String("device", dev.Path),
			logger.String("name", device.Name()),
			logger.Int("rules", len(dev.Rules)),
			logger.Int("slots", device.MaxSlots()))

		started++
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				_ = device.Close()
				_ = disp.Close()
				s.markStopped(dev.Path)
			}()

			err := session.Run(ctx)
			switch {
			case err == nil || errors.Is(err, context.Canceled):
				s.log.Info(ctx, "device session ended", logger.String("device", dev.Path))
			default:
				metrics.RecordDeviceError()
				s.log.Error(ctx, "device session failed",
					logger.String("device", dev.Path),
					logger.Error(err))
			}
		}()
	}

	if started == 0 {
		return ErrNoSessions
	}

	s.log.Info(ctx, "engine running", logger.Int("devices", started))
	wg.Wait()

	return nil
}

// MonitorAddr returns the monitor's bound address while running, or
// empty when the monitor is disabled.
func (s *Service) MonitorAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mon == nil {
		return ""
	}
	return s.mon.Addr()
}

// Devices reports every configured device session for the monitor.
func (s *Service) Devices(_ context.Context) []monitor.DeviceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]monitor.DeviceStatus, 0, len(s.devices))
	for _, dev := range s.devices {
		st := s.status[dev.Path]
		if st == nil {
			out = append(out, monitor.DeviceStatus{Path: dev.Path, Rules: len(dev.Rules)})
			continue
		}
		out = append(out, monitor.DeviceStatus{
			Path:    dev.Path,
			Name:    st.name,
			Rules:   st.rules,
			Running: st.running,
		})
	}

	return out
}

// Recent returns up to n gesture records for the monitor, newest first.
func (s *Service) Recent(_ context.Context, n int) []history.Record {
	s.mu.RLock()
	hist := s.hist
	s.mu.RUnlock()

	if hist == nil {
		return nil
	}
	return hist.Recent(n)
}

// publish forwards a record to the monitor stream when one is running.
func (s *Service) publish(rec history.Record) {
	s.mu.RLock()
	mon := s.mon
	s.mu.RUnlock()

	if mon != nil {
		mon.Publish(rec)
	}
}

func (s *Service) setState(path string, st *deviceState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status[path] = st
	if st.running {
		s.active++
		metrics.UpdateActiveSessions(s.active)
	}
}

func (s *Service) markStopped(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status[path]
	if st == nil || !st.running {
		return
	}
	st.running = false
	s.active--
	metrics.UpdateActiveSessions(s.active)
}
