// Package monitor serves the observability surface of the daemon:
// health, Prometheus metrics, configured device status, recent gesture
// records and a websocket stream of records as they are dispatched.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gestured/gestured/internal/adapters/history"
	"github.com/gestured/gestured/pkg/logger"
	"github.com/gestured/gestured/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Recent query bounds.
const (
	defaultRecent = 32
	maxRecent     = 256
)

// Dependencies required by the monitor handlers. An interface bundle
// keeps the handler layer loosely coupled to the session owner.
type Dependencies interface {
	// Devices reports every configured device session.
	Devices(ctx context.Context) []DeviceStatus

	// Recent returns up to n gesture records, newest first.
	Recent(ctx context.Context, n int) []history.Record
}

// DeviceStatus is the read shape returned by device queries.
type DeviceStatus struct {
	Path    string `json:"path"`
	Name    string `json:"name,omitempty"`
	Rules   int    `json:"rules"`
	Running bool   `json:"running"`
}

// Server wires the monitor routes and owns the listener lifecycle.
type Server struct {
	addr         string
	deps         Dependencies
	log          logger.Logger
	streamBuffer int
	hub          *hub
	httpSrv      *http.Server
	boundAddr    string
}

// New creates a monitor server for the given listen address.
func New(addr string, deps Dependencies, opts ...Option) *Server {
	s := &Server{
		addr:         addr,
		deps:         deps,
		streamBuffer: defaultStreamBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("monitor")
	}
	s.hub = newHub()

	return s
}

// Register attaches all monitor routes to mux. The stream route skips
// the metrics middleware because its wrapper hides http.Hijacker from
// the websocket upgrader.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", metricsMiddleware(s.handleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/v1/devices", metricsMiddleware(s.handleDevices, "devices"))
	mux.HandleFunc("/v1/recent", metricsMiddleware(s.handleRecent, "recent"))
	mux.HandleFunc("/v1/stream", s.handleStream)

	// Embedded status page at root.
	mux.Handle("/", http.FileServer(FS()))
}

// Start binds the listener and begins serving in the background. Bind
// errors are returned synchronously; serve errors after that are logged.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	s.Register(ctx, mux)

	s.httpSrv = &http.Server{
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrListen, err)
	}
	s.boundAddr = ln.Addr().String()

	go func() {
		s.log.Info(ctx, "monitor listening", logger.String("addr", s.boundAddr))
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(ctx, "monitor server failed", logger.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound listen address once Start has succeeded.
func (s *Server) Addr() string {
	return s.boundAddr
}

// Shutdown disconnects stream clients and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()
	if s.httpSrv == nil {
		return nil
	}
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down monitor: %w", err)
	}

	return nil
}

// Publish fans a gesture record out to connected stream clients.
func (s *Server) Publish(rec history.Record) {
	s.hub.publish(rec)
}

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth handles GET /healthz requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// handleMetrics serves the custom metrics registry.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// handleDevices handles GET /v1/devices requests.
func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	devices := s.deps.Devices(r.Context())
	if devices == nil {
		devices = []DeviceStatus{}
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleRecent handles GET /v1/recent?limit=N requests.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := defaultRecent
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		n = parsed
	}
	if n > maxRecent {
		n = maxRecent
	}
	records := s.deps.Recent(r.Context(), n)
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// metricsMiddleware wraps monitor handlers to record request metrics.
func metricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(wrapped.statusCode))
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
