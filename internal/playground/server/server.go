package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	flog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/script"
	"github.com/msto63/frege/internal/history/store"
	"github.com/msto63/frege/pkg/core/cache"
	"github.com/msto63/frege/pkg/core/health"
	"github.com/msto63/frege/pkg/core/version"
)

// Server is the playground HTTP and WebSocket server
type Server struct {
	httpServer *http.Server
	engine     *script.Engine
	history    store.RunStore
	health     *health.Registry
	runner     *runner
	logger     *flog.Logger
	config     Config

	done     chan struct{}
	stopOnce sync.Once
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	RunTimeout     time.Duration
	MaxMessageSize int64
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// CacheSize bounds the result cache; 0 disables it
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           8420,
		RunTimeout:     5 * time.Second,
		MaxMessageSize: 128 * 1024,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		CacheSize:      256,
		CacheTTL:       10 * time.Minute,
	}
}

// Options carries the collaborators of the server
type Options struct {
	Engine  *script.Engine
	History store.RunStore // optional
	Logger  *flog.Logger
}

// New creates a new playground server
func New(cfg Config, opts Options) (*Server, error) {
	if opts.Engine == nil {
		return nil, errors.New("playground server requires an engine")
	}
	if opts.Logger == nil {
		opts.Logger = flog.GetDefault()
	}
	logger := opts.Logger.WithField("component", "playground-server")

	s := &Server{
		engine:  opts.Engine,
		history: opts.History,
		logger:  logger,
		config:  cfg,
		done:    make(chan struct{}),
		runner: &runner{
			engine:  opts.Engine,
			history: opts.History,
			timeout: cfg.RunTimeout,
			logger:  logger,
		},
	}

	if cfg.CacheSize > 0 {
		s.runner.results = cache.New[cachedRun](cache.Config{MaxItems: cfg.CacheSize, TTL: cfg.CacheTTL})
	}

	s.health = health.NewRegistry("frege-playground", version.Platform)
	s.health.Register(health.ProbeCheck("engine", s.probeEngine))
	if s.history != nil {
		s.health.Register(health.OptionalProbeCheck("history", func(ctx context.Context) error {
			_, err := s.history.Stats(ctx)
			return err
		}))
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", newWebSocketHandler(s.runner, cfg.MaxMessageSize, opts.Logger))
	mux.Handle("/healthz", health.Handler(s.health, 2*time.Second))
	mux.HandleFunc("POST /api/v1/run", s.handleRun)
	mux.HandleFunc("GET /api/v1/history", s.handleHistoryList)
	mux.HandleFunc("GET /api/v1/history/{id}", s.handleHistoryGet)

	s.httpServer = &http.Server{
		Addr:         s.Address(),
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// probeEngine runs the demo program and checks its output
func (s *Server) probeEngine(ctx context.Context) error {
	result, err := s.engine.Run(ctx, script.DemoProgram)
	if err != nil {
		return err
	}
	if len(result.Output) != 1 || result.Output[0] != "8" {
		return fmt.Errorf("demo program printed %v, want [8]", result.Output)
	}
	return nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *flog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request", flog.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapper.statusCode,
			"duration": time.Since(start).String(),
		})
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and the WebSocket upgrader reach the
// underlying writer
func (w *responseWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack is required by the WebSocket upgrade
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRequestError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, WSResponse{
		Type: TypeError,
		Payload: ErrorPayload{
			Kind:    KindRequest,
			Code:    code,
			Message: message,
			Output:  []string{},
		},
	})
}

// handleRun runs one program over plain HTTP. Script errors are reported
// with status 200 and an error payload; only malformed requests get 4xx.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody())

	var payload RunPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeRequestError(w, http.StatusBadRequest, "invalid_payload", "Invalid run payload")
		return
	}

	respType, respPayload := s.runner.run(r.Context(), payload.Source)
	writeJSON(w, http.StatusOK, WSResponse{Type: respType, Payload: respPayload})
}

func (s *Server) maxBody() int64 {
	if s.config.MaxMessageSize > 0 {
		return s.config.MaxMessageSize
	}
	return DefaultConfig().MaxMessageSize
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeRequestError(w, http.StatusNotFound, "history_disabled", "Run history is disabled")
		return
	}

	filter := store.RunFilter{Limit: 20}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeRequestError(w, http.StatusBadRequest, "invalid_limit", "Invalid limit: "+v)
			return
		}
		filter.Limit = limit
	}
	if r.URL.Query().Get("failed") == "true" {
		filter.OnlyFailed = true
	}
	filter.Origin = store.Origin(r.URL.Query().Get("origin"))

	runs, err := s.history.List(r.Context(), filter)
	if err != nil {
		s.logger.LogError("failed to list runs", err)
		writeRequestError(w, http.StatusInternalServerError, "history_error", "Failed to list runs")
		return
	}
	if runs == nil {
		runs = []*store.RunRecord{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeRequestError(w, http.StatusNotFound, "history_disabled", "Run history is disabled")
		return
	}

	rec, err := s.history.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeRequestError(w, http.StatusNotFound, "not_found", "Run not found")
		return
	}
	if err != nil {
		s.logger.LogError("failed to get run", err)
		writeRequestError(w, http.StatusInternalServerError, "history_error", "Failed to get run")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting playground", flog.Fields{"address": s.Address()})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Serve serves on an existing listener
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Starting playground", flog.Fields{"address": l.Addr().String()})
	if err := s.httpServer.Serve(l); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping playground")
	s.stopOnce.Do(func() {
		close(s.done)
		if results := s.runner.results; results != nil {
			results.Close()
			hits, misses, rate := results.Stats()
			s.logger.Info("Result cache closed", flog.Fields{
				"entries":  results.Size(),
				"hits":     hits,
				"misses":   misses,
				"hit_rate": rate,
			})
		}
	})
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address
func (s *Server) Address() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
