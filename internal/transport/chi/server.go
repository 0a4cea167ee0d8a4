// Package chi exposes the retrieval engine over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/veranohq/guestsearch/internal/domain"
	"github.com/veranohq/guestsearch/internal/domain/guest"
	"github.com/veranohq/guestsearch/internal/domain/search"
	logpkg "github.com/veranohq/guestsearch/internal/logger"
	embeddinguc "github.com/veranohq/guestsearch/internal/usecase/embedding"
	healthuc "github.com/veranohq/guestsearch/internal/usecase/health"
	retrievaluc "github.com/veranohq/guestsearch/internal/usecase/retrieval"
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest             = "bad_request"
	codeValidationFailed       = "validation_failed"
	codeEmbeddingProviderError = "embedding_provider_error"
	codeInternalError          = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server handles the retrieval API.
type Server struct {
	generator    *embeddinguc.Generator
	orchestrator *retrievaluc.Orchestrator
	health       *healthuc.Service
	logger       *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	generator *embeddinguc.Generator,
	orchestrator *retrievaluc.Orchestrator,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		generator:    generator,
		orchestrator: orchestrator,
		health:       health,
		logger:       logger,
	}
}

// Register mounts the API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/v1/retrieve", s.Retrieve)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// unitDTO mirrors guest.AccommodationUnit on the wire.
type unitDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// guestDTO mirrors the guest session record the chat layer forwards.
// accommodation_unit is the legacy single-unit field older reservations
// still carry.
type guestDTO struct {
	ID                 string         `json:"id"`
	TenantID           string         `json:"tenant_id"`
	Name               string         `json:"name,omitempty"`
	CheckInDate        string         `json:"check_in_date,omitempty"`
	CheckOutDate       string         `json:"check_out_date,omitempty"`
	AccommodationUnits []unitDTO      `json:"accommodation_units,omitempty"`
	AccommodationUnit  *unitDTO       `json:"accommodation_unit,omitempty"`
	TenantFeatures     map[string]any `json:"tenant_features,omitempty"`
}

// RetrieveRequest is the POST /v1/retrieve body.
type RetrieveRequest struct {
	Query string   `json:"query"`
	Guest guestDTO `json:"guest"`
}

// resultDTO is one retrieved item on the wire.
type resultDTO struct {
	ID           string            `json:"id"`
	Content      string            `json:"content"`
	Similarity   float64           `json:"similarity"`
	SourceDomain string            `json:"source_domain"`
	Table        string            `json:"table"`
	UnitID       string            `json:"unit_id,omitempty"`
	UnitName     string            `json:"unit_name,omitempty"`
	IsGuestUnit  bool              `json:"is_guest_unit,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// RetrieveResponse is the POST /v1/retrieve response: the four domain result
// lists, kept separate so the consumer sees provenance per list.
type RetrieveResponse struct {
	Strategy string `json:"strategy"`
	Results  struct {
		Accommodation []resultDTO `json:"accommodation"`
		HotelGeneral  []resultDTO `json:"hotel_general_info"`
		UnitManual    []resultDTO `json:"unit_manual"`
		Tourism       []resultDTO `json:"tourism"`
	} `json:"results"`
}

// Retrieve handles POST /v1/retrieve: embed the query once, derive the
// guest's permissions, and fan out the permitted domain searches.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Guest.TenantID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "guest.tenant_id is required")
		return
	}

	log := s.requestLogger(r)

	triple, err := s.generator.Generate(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, log, err)
		return
	}

	if v := embeddinguc.Validate(triple); !v.Valid {
		log.Error("Generated embeddings failed validation",
			zap.String("tenant_id", req.Guest.TenantID),
			zap.Strings("validation_errors", v.Errors),
		)
		writeError(w, http.StatusBadGateway, codeEmbeddingProviderError,
			"embedding provider returned malformed embeddings")
		return
	}

	sctx := retrievaluc.BuildSearchContext(sessionFromDTO(req.Guest))
	results := s.orchestrator.ExecuteParallelSearch(r.Context(), triple, sctx)

	writeJSON(w, http.StatusOK, retrieveResponse(sctx, results))
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func sessionFromDTO(g guestDTO) guest.Session {
	sess := guest.Session{
		ID:             g.ID,
		TenantID:       g.TenantID,
		Name:           g.Name,
		CheckInDate:    g.CheckInDate,
		CheckOutDate:   g.CheckOutDate,
		TenantFeatures: g.TenantFeatures,
	}
	for _, u := range g.AccommodationUnits {
		sess.AccommodationUnits = append(sess.AccommodationUnits, guest.AccommodationUnit(u))
	}
	if g.AccommodationUnit != nil {
		u := guest.AccommodationUnit(*g.AccommodationUnit)
		sess.AccommodationUnit = &u
	}
	return sess
}

func retrieveResponse(sctx retrievaluc.SearchContext, results retrievaluc.Results) RetrieveResponse {
	resp := RetrieveResponse{Strategy: sctx.Strategy()}
	resp.Results.Accommodation = resultsToDTO(results.Accommodation)
	resp.Results.HotelGeneral = resultsToDTO(results.HotelGeneral)
	resp.Results.UnitManual = resultsToDTO(results.UnitManual)
	resp.Results.Tourism = resultsToDTO(results.Tourism)
	return resp
}

func resultsToDTO(rs []search.Result) []resultDTO {
	out := make([]resultDTO, len(rs))
	for i, r := range rs {
		out[i] = resultDTO{
			ID:           r.ID,
			Content:      r.Content,
			Similarity:   r.Similarity,
			SourceDomain: string(r.SourceDomain),
			Table:        r.Table,
			UnitID:       r.UnitID,
			UnitName:     r.UnitName,
			IsGuestUnit:  r.IsGuestUnit,
			Metadata:     r.Metadata,
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// requestLogger prefers the request-scoped logger installed by the HTTP
// middleware (it carries request_id) and falls back to the server logger.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if l := logpkg.FromContext(r.Context()); l != nil {
		return l
	}
	return s.logger
}

func (s *Server) handleDomainError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, codeValidationFailed, domain.ErrEmptyInput.Error())
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		log.Warn("Embedding provider error", zap.Error(err))
		writeError(w, http.StatusBadGateway, codeEmbeddingProviderError, domain.ErrEmbeddingProviderError.Error())
	default:
		log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
