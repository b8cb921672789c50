// Package httpapi exposes the weather query and alert ingest HTTP endpoints
// alongside health, readiness, and metrics routes.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weather-outlook/internal/adapter/nws"
	"github.com/couchcryptid/weather-outlook/internal/dispatch"
	"github.com/couchcryptid/weather-outlook/internal/domain"
	"github.com/couchcryptid/weather-outlook/internal/service"
)

// Weather query payloads are tiny fixed-shape JSON objects; anything larger
// is noise. Alert events carry a headline so they get more room.
const (
	maxWeatherRequestBytes = 128
	maxAlertRequestBytes   = 4096
)

// WeatherProvider answers location weather queries.
type WeatherProvider interface {
	Snapshot(ctx context.Context, q service.Query) (service.Snapshot, error)
	Forecast(ctx context.Context, q service.Query) ([]nws.ForecastPeriod, error)
	Hourly(ctx context.Context, q service.Query) ([]nws.ForecastPeriod, error)
	Outlook(ctx context.Context, q service.Query) ([]domain.Bulletin, error)
	Spotter(ctx context.Context, q service.Query) (string, error)
}

// AlertHandler processes one alert event and reports per-action outcomes.
type AlertHandler interface {
	Handle(ctx context.Context, event domain.AlertEvent) ([]dispatch.Outcome, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the service HTTP API.
type Server struct {
	httpServer *http.Server
	weather    WeatherProvider
	alerts     AlertHandler
	apiKey     string
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API, health, readiness, and
// metrics routes.
func NewServer(addr, apiKey string, weather WeatherProvider, alerts AlertHandler, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		weather: weather,
		alerts:  alerts,
		apiKey:  apiKey,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/weather/{route}", s.auth(s.handleWeather))
	mux.HandleFunc("POST /api/alerts", s.auth(s.handleAlert))

	return s
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

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.apiKey)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

// weatherRequest is the query payload. Coordinates arrive as JSON numbers
// from some clients and quoted strings from others, so both are accepted.
type weatherRequest struct {
	Lat   json.Number `json:"lat"`
	Lon   json.Number `json:"lon"`
	City  string      `json:"city"`
	State string      `json:"state"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	var req weatherRequest
	body := http.MaxBytesReader(w, r.Body, maxWeatherRequestBytes)
	// An empty body is a valid query for the default location.
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	q, err := buildQuery(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	route := r.PathValue("route")
	resp, err := s.queryWeather(r.Context(), route, q)
	if err != nil {
		s.writeWeatherError(w, route, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) queryWeather(ctx context.Context, route string, q service.Query) (any, error) {
	switch route {
	case "all":
		return s.weather.Snapshot(ctx, q)
	case "forecast":
		periods, err := s.weather.Forecast(ctx, q)
		if err != nil {
			return nil, err
		}
		return map[string]any{"forecast": periods}, nil
	case "hourly":
		periods, err := s.weather.Hourly(ctx, q)
		if err != nil {
			return nil, err
		}
		return map[string]any{"hourly": periods}, nil
	case "hwo":
		bulletins, err := s.weather.Outlook(ctx, q)
		if err != nil {
			return nil, err
		}
		return map[string]any{"outlook": bulletins}, nil
	case "spotter":
		statement, err := s.weather.Spotter(ctx, q)
		if err != nil {
			return nil, err
		}
		return map[string]string{"spotter": statement}, nil
	default:
		return nil, errUnknownRoute
	}
}

var errUnknownRoute = errors.New("unknown route")

func (s *Server) writeWeatherError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, errUnknownRoute):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown route: " + route})
	case errors.Is(err, service.ErrLocationRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownLocation):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		s.logger.Error("weather query failed", "route", route, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "weather data unavailable"})
	}
}

func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	var event domain.AlertEvent
	body := http.MaxBytesReader(w, r.Body, maxAlertRequestBytes)
	if err := json.NewDecoder(body).Decode(&event); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	outcomes, err := s.alerts.Handle(r.Context(), event)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if outcomes == nil {
		outcomes = []dispatch.Outcome{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
}

func buildQuery(req weatherRequest) (service.Query, error) {
	if req.Lat != "" || req.Lon != "" {
		lat, err := req.Lat.Float64()
		if err != nil {
			return service.Query{}, errors.New("invalid lat")
		}
		lon, err := req.Lon.Float64()
		if err != nil {
			return service.Query{}, errors.New("invalid lon")
		}
		return service.Query{Lat: lat, Lon: lon, HasCoords: true}, nil
	}
	return service.Query{City: req.City, State: req.State}, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
