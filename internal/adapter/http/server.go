package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/rainwater-estimator-service/internal/assessment"
	"github.com/couchcryptid/rainwater-estimator-service/internal/auth"
	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
	"github.com/couchcryptid/rainwater-estimator-service/internal/observability"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Assessor runs assessments and the lookups behind the form's auto-fill.
type Assessor interface {
	Assess(ctx context.Context, req assessment.Request) (assessment.Outcome, error)
	Rainfall(ctx context.Context, lat, lon float64) (domain.RawRainfall, error)
	Search(ctx context.Context, text string) (domain.Coordinates, error)
	Reverse(ctx context.Context, lat, lon float64) (domain.Address, error)
	GroundwaterByLatitude(lat float64) (domain.GroundwaterRecord, error)
	GroundwaterByDistrict(name string) (domain.GroundwaterRecord, error)
}

// Authenticator registers and logs in users.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (auth.User, error)
	Login(ctx context.Context, email, password string) (auth.User, error)
}

// Deps are the collaborators behind the API routes.
type Deps struct {
	Assessor       Assessor
	Auth           Authenticator
	Renderer       domain.ReportRenderer
	Ready          ReadinessChecker
	Metrics        *observability.Metrics
	AllowedOrigins []string
}

// Server exposes the estimator API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers every route.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetricsForTesting()
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      withMiddleware(mux, deps.AllowedOrigins, logger),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/assessments", s.handleAssess)
	mux.HandleFunc("POST /api/assessments/export", s.handleExport)
	mux.HandleFunc("GET /api/geocode/search", s.handleSearch)
	mux.HandleFunc("GET /api/geocode/reverse", s.handleReverse)
	mux.HandleFunc("GET /api/rainfall", s.handleRainfall)
	mux.HandleFunc("GET /api/groundwater", s.handleGroundwater)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// withMiddleware wraps the mux with panic recovery and CORS.
func withMiddleware(h http.Handler, origins []string, logger *slog.Logger) http.Handler {
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}))(h)
	if len(origins) == 0 {
		return h
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(h)
}

type recoveryLogger struct{ logger *slog.Logger }

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("http handler panic", "panic", fmt.Sprint(v...))
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// writeJSON encodes v before writing the header so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
