package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lokamap/placesearch/internal/domain"
	"github.com/lokamap/placesearch/internal/domain/place"
	healthuc "github.com/lokamap/placesearch/internal/usecase/health"
	placesuc "github.com/lokamap/placesearch/internal/usecase/places"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the places search HTTP API.
type Server struct {
	places        *placesuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(places *placesuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		places: places,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		invalidIntentHandler,
		sentinelHandler(domain.ErrProviderFailure, http.StatusBadGateway, "upstream provider error"),
	}
	return s
}

// Routes mounts the API routes.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/places/search", s.SearchPlaces)
	r.Get("/api/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// promptRequest is the search request body.
type promptRequest struct {
	Prompt string `json:"prompt"`
}

// searchResponse keeps the directions field in the envelope even though the
// feature is disabled; clients rely on the shape.
type searchResponse struct {
	Results    []place.Place     `json:"results"`
	Directions *place.Directions `json:"directions"`
}

// SearchPlaces handles POST /api/places/search.
func (s *Server) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	results, err := s.places.SearchPrompt(r.Context(), req.Prompt)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if results == nil {
		results = []place.Place{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

// healthResponse is the health report body.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /api/health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the {"detail": ...} error body all endpoints share.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// sentinelHandler returns an errorHandler that matches a single sentinel
// error and replies with a fixed safe message.
func sentinelHandler(sentinel error, status int, detail string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, detail)
		return true
	}
}

// invalidIntentHandler exposes the validation message itself; intent errors
// describe the client's input, not internals.
func invalidIntentHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidIntent) {
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid intent: "+err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
