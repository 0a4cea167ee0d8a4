package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/veranohq/guestsearch/internal/domain"
	logpkg "github.com/veranohq/guestsearch/internal/logger"
	"github.com/veranohq/guestsearch/internal/domain/search"
	embeddinguc "github.com/veranohq/guestsearch/internal/usecase/embedding"
	healthuc "github.com/veranohq/guestsearch/internal/usecase/health"
	retrievaluc "github.com/veranohq/guestsearch/internal/usecase/retrieval"
)

type stubEmbedder struct {
	err error
}

func (e *stubEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	vec := make([]float32, domain.DimFull)
	for i := range vec {
		vec[i] = 0.001
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: 7}, nil
}

type stubRepository struct {
	tourismCalled bool
}

func (r *stubRepository) SearchAccommodation(context.Context, search.AccommodationQuery) ([]search.Result, error) {
	return []search.Result{{
		ID:           "acc-1",
		Content:      "Ocean-view suite with balcony",
		Similarity:   0.82,
		SourceDomain: search.DomainAccommodation,
		Table:        search.TableAccommodationPublic,
	}}, nil
}

func (r *stubRepository) SearchHotelGeneral(context.Context, search.HotelGeneralQuery) ([]search.Result, error) {
	return nil, nil
}

func (r *stubRepository) SearchUnitManual(context.Context, search.UnitManualQuery) ([]search.Result, error) {
	return nil, nil
}

func (r *stubRepository) SearchTourism(context.Context, search.TourismQuery) ([]search.Result, error) {
	r.tourismCalled = true
	return nil, nil
}

func newTestServer(emb domain.Embedder, repo retrievaluc.Repository) *Server {
	logger := zap.NewNop()
	return NewServer(
		embeddinguc.NewGenerator(emb, logger),
		retrievaluc.NewOrchestrator(repo, logger),
		healthuc.New(&okPinger{}, nil),
		logger,
	)
}

type okPinger struct{}

func (p *okPinger) Ping(context.Context) error { return nil }

func retrieveBody(t *testing.T, muva bool) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(RetrieveRequest{
		Query: "does my room have a coffee maker",
		Guest: guestDTO{
			ID:                 "guest-1",
			TenantID:           "tenant-1",
			AccommodationUnits: []unitDTO{{ID: "unit-42", Name: "Suite 42"}},
			TenantFeatures:     map[string]any{"muva_access": muva},
		},
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestRetrieve_OK(t *testing.T) {
	srv := newTestServer(&stubEmbedder{}, &stubRepository{})

	req := httptest.NewRequest("POST", "/v1/retrieve", retrieveBody(t, true))
	rr := httptest.NewRecorder()
	srv.Retrieve(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp RetrieveResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Strategy != "accommodation+hotel_general+unit_manual(1)+tourism" {
		t.Errorf("strategy = %q", resp.Strategy)
	}
	if len(resp.Results.Accommodation) != 1 || resp.Results.Accommodation[0].ID != "acc-1" {
		t.Errorf("accommodation results = %v", resp.Results.Accommodation)
	}
	if resp.Results.Accommodation[0].Table != search.TableAccommodationPublic {
		t.Errorf("table = %q", resp.Results.Accommodation[0].Table)
	}
}

func TestRetrieve_TourismNotQueriedWithoutAccess(t *testing.T) {
	repo := &stubRepository{}
	srv := newTestServer(&stubEmbedder{}, repo)

	req := httptest.NewRequest("POST", "/v1/retrieve", retrieveBody(t, false))
	rr := httptest.NewRecorder()
	srv.Retrieve(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if repo.tourismCalled {
		t.Error("tourism must not be queried without muva_access")
	}
}

func TestRetrieve_InvalidBody_400(t *testing.T) {
	srv := newTestServer(&stubEmbedder{}, &stubRepository{})

	req := httptest.NewRequest("POST", "/v1/retrieve", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	srv.Retrieve(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRetrieve_MissingTenant_400(t *testing.T) {
	srv := newTestServer(&stubEmbedder{}, &stubRepository{})

	body, _ := json.Marshal(RetrieveRequest{Query: "hi"})
	req := httptest.NewRequest("POST", "/v1/retrieve", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	srv.Retrieve(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeValidationFailed {
		t.Errorf("error code = %q, want %q", errResp.Code, codeValidationFailed)
	}
}

func TestRetrieve_EmptyQuery_400(t *testing.T) {
	srv := newTestServer(&stubEmbedder{}, &stubRepository{})

	body, _ := json.Marshal(RetrieveRequest{
		Query: "   ",
		Guest: guestDTO{TenantID: "tenant-1"},
	})
	req := httptest.NewRequest("POST", "/v1/retrieve", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	srv.Retrieve(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRetrieve_ProviderError_502(t *testing.T) {
	srv := newTestServer(
		&stubEmbedder{err: domain.ErrEmbeddingProviderError},
		&stubRepository{},
	)

	req := httptest.NewRequest("POST", "/v1/retrieve", retrieveBody(t, false))
	rr := httptest.NewRecorder()
	srv.Retrieve(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadGateway)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeEmbeddingProviderError {
		t.Errorf("error code = %q, want %q", errResp.Code, codeEmbeddingProviderError)
	}
}

func TestRetrieve_UnexpectedError_500(t *testing.T) {
	srv := newTestServer(&stubEmbedder{err: errors.New("socket closed")}, &stubRepository{})

	req := httptest.NewRequest("POST", "/v1/retrieve", retrieveBody(t, false))
	rr := httptest.NewRecorder()
	srv.Retrieve(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestRetrieve_UsesRequestScopedLogger(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	reqLogger := zap.New(core).With(zap.String("request_id", "req-123"))

	srv := newTestServer(
		&stubEmbedder{err: domain.ErrEmbeddingProviderError},
		&stubRepository{},
	)

	req := httptest.NewRequest("POST", "/v1/retrieve", retrieveBody(t, false))
	req = req.WithContext(logpkg.ContextWithLogger(req.Context(), reqLogger))
	rr := httptest.NewRecorder()
	srv.Retrieve(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadGateway)
	}

	entries := logs.All()
	if len(entries) == 0 {
		t.Fatal("expected the provider error to be logged via the request-scoped logger")
	}
	found := false
	for _, f := range entries[0].Context {
		if f.Key == "request_id" && f.String == "req-123" {
			found = true
		}
	}
	if !found {
		t.Errorf("log entry missing request_id field: %+v", entries[0].Context)
	}
}

func TestHealthCheck_OK(t *testing.T) {
	srv := newTestServer(&stubEmbedder{}, &stubRepository{})

	req := httptest.NewRequest("GET", "/healthz", http.NoBody)
	rr := httptest.NewRecorder()
	srv.HealthCheck(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}
