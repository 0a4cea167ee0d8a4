package vector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/veranohq/guestsearch/internal/db"
	"github.com/veranohq/guestsearch/internal/domain"
	"github.com/veranohq/guestsearch/internal/domain/search"
)

type mockStore struct {
	queries []*db.KNNQuery
	// results keyed by index name
	results map[string]*db.SearchResult
	err     error
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	if r, ok := m.results[q.IndexName]; ok {
		return r, nil
	}
	return &db.SearchResult{}, nil
}

func testParams() Params {
	return Params{
		Accommodation: AccommodationParams{
			PublicTier: domain.TierBalanced, PrivateTier: domain.TierStandard,
			Threshold: 0.15, TopK: 10,
		},
		HotelGeneral: DomainParams{Tier: domain.TierStandard, Threshold: 0.30, TopK: 5},
		UnitManual:   DomainParams{Tier: domain.TierStandard, Threshold: 0.25, TopK: 5},
		Tourism:      DomainParams{Tier: domain.TierFull, Threshold: 0.15, TopK: 10},
	}
}

func testTriple(t *testing.T) domain.Triple {
	t.Helper()
	full := make([]float32, domain.DimFull)
	for i := range full {
		full[i] = float32(i%10) / 10
	}
	triple, err := domain.NewTriple(full)
	if err != nil {
		t.Fatalf("NewTriple: %v", err)
	}
	return triple
}

func entry(key string, score float64, fields map[string]string) db.SearchEntry {
	return db.SearchEntry{Key: key, Score: score, Fields: fields}
}

func TestSearchAccommodation_MergesPublicAndPrivate(t *testing.T) {
	ms := &mockStore{results: map[string]*db.SearchResult{
		"guestsearch:accommodation_units_public:idx": {Total: 2, Entries: []db.SearchEntry{
			entry("guestsearch:accommodation_units_public:pub-1", 0.8,
				map[string]string{"__content": "pool view room", "unit_id": "unit-42", "unit_name": "Suite 42"}),
			entry("guestsearch:accommodation_units_public:pub-2", 0.5,
				map[string]string{"__content": "garden room", "unit_id": "unit-7"}),
		}},
		"guestsearch:accommodation_units_private:idx": {Total: 1, Entries: []db.SearchEntry{
			entry("guestsearch:accommodation_units_private:priv-1", 0.9,
				map[string]string{"__content": "your door code is 4321", "unit_id": "unit-42", "section_title": "Access"}),
		}},
	}}
	repo := New(ms, "guestsearch:", testParams())

	results, err := repo.SearchAccommodation(context.Background(), search.AccommodationQuery{
		TenantID:   "simmerdown",
		UnitID:     "unit-42",
		Embeddings: testTriple(t),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 merged results, got %d", len(results))
	}
	// Sorted by descending similarity across both tables.
	if results[0].ID != "priv-1" || results[1].ID != "pub-1" || results[2].ID != "pub-2" {
		t.Errorf("unexpected order: %s, %s, %s", results[0].ID, results[1].ID, results[2].ID)
	}
	for _, r := range results {
		if r.SourceDomain != search.DomainAccommodation {
			t.Errorf("result %s missing the accommodation domain tag", r.ID)
		}
	}
	if results[0].Table != search.TableAccommodationPrivate || !results[0].IsGuestUnit {
		t.Error("private row must be tagged with the private table and the guest-unit flag")
	}
	if !results[1].IsGuestUnit {
		t.Error("public row for the guest's own unit must carry IsGuestUnit")
	}
	if results[2].IsGuestUnit {
		t.Error("public row for another unit must not carry IsGuestUnit")
	}
}

func TestSearchAccommodation_TiersAndFilters(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "guestsearch:", testParams())

	_, err := repo.SearchAccommodation(context.Background(), search.AccommodationQuery{
		TenantID:   "simmerdown",
		UnitID:     "unit-42",
		Embeddings: testTriple(t),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.queries) != 2 {
		t.Fatalf("expected 2 storage queries, got %d", len(ms.queries))
	}

	pub, priv := ms.queries[0], ms.queries[1]
	if len(pub.Vector) != domain.DimBalanced {
		t.Errorf("public query vector dim = %d, want %d", len(pub.Vector), domain.DimBalanced)
	}
	if len(priv.Vector) != domain.DimStandard {
		t.Errorf("private query vector dim = %d, want %d", len(priv.Vector), domain.DimStandard)
	}
	if len(pub.Filters) != 1 || pub.Filters[0].Field != "tenant_id" {
		t.Errorf("public query must be tenant-scoped only, got %+v", pub.Filters)
	}
	if len(priv.Filters) != 2 || priv.Filters[1].Field != "unit_id" || priv.Filters[1].Value != "unit-42" {
		t.Errorf("private query must be unit-scoped, got %+v", priv.Filters)
	}
}

func TestSearchHotelGeneral(t *testing.T) {
	ms := &mockStore{results: map[string]*db.SearchResult{
		"guestsearch:hotel_general_info:idx": {Total: 2, Entries: []db.SearchEntry{
			entry("guestsearch:hotel_general_info:faq-1", 0.7,
				map[string]string{"__content": "breakfast 7-10am", "section_title": "Dining"}),
			entry("guestsearch:hotel_general_info:faq-2", 0.2, // below 0.30 threshold
				map[string]string{"__content": "laundry"}),
		}},
	}}
	repo := New(ms, "guestsearch:", testParams())

	results, err := repo.SearchHotelGeneral(context.Background(), search.HotelGeneralQuery{
		TenantID:   "simmerdown",
		Embeddings: testTriple(t),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected the sub-threshold row filtered out, got %d results", len(results))
	}
	r := results[0]
	if r.SourceDomain != search.DomainHotelGeneral || r.Table != search.TableHotelGeneral {
		t.Errorf("missing domain/table tags: %+v", r)
	}
	if r.Metadata["section_title"] != "Dining" {
		t.Errorf("expected section_title metadata, got %v", r.Metadata)
	}

	q := ms.queries[0]
	if len(q.Vector) != domain.DimStandard {
		t.Errorf("hotel general must use the standard tier, got dim %d", len(q.Vector))
	}
	if len(q.Filters) != 1 || q.Filters[0].Field != "tenant_id" {
		t.Errorf("hotel general must be tenant-scoped only, got %+v", q.Filters)
	}
}

func TestSearchUnitManual_ScopedToUnit(t *testing.T) {
	ms := &mockStore{results: map[string]*db.SearchResult{
		"guestsearch:unit_manual_chunks:idx": {Total: 1, Entries: []db.SearchEntry{
			entry("guestsearch:unit_manual_chunks:man-1", 0.6,
				map[string]string{"__content": "wifi: CasaAzul / pass123", "chunk_index": "3"}),
		}},
	}}
	repo := New(ms, "guestsearch:", testParams())

	results, err := repo.SearchUnitManual(context.Background(), search.UnitManualQuery{
		TenantID:   "simmerdown",
		UnitID:     "unit-42",
		UnitName:   "Suite 42",
		Embeddings: testTriple(t),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.UnitID != "unit-42" || r.UnitName != "Suite 42" {
		t.Errorf("result must carry its source unit, got %+v", r)
	}
	if r.Metadata["chunk_index"] != "3" {
		t.Errorf("expected chunk_index metadata, got %v", r.Metadata)
	}

	q := ms.queries[0]
	hasUnitFilter := false
	for _, f := range q.Filters {
		if f.Field == "unit_id" && f.Value == "unit-42" {
			hasUnitFilter = true
		}
	}
	if !hasUnitFilter {
		t.Error("unit manual query must filter by unit_id")
	}
}

func TestSearchTourism_UnscopedFullTier(t *testing.T) {
	ms := &mockStore{results: map[string]*db.SearchResult{
		"guestsearch:tourism_content:idx": {Total: 1, Entries: []db.SearchEntry{
			entry("guestsearch:tourism_content:muva-1", 0.4,
				map[string]string{"__content": "snorkeling at west bay"}),
		}},
	}}
	repo := New(ms, "guestsearch:", testParams())

	results, err := repo.SearchTourism(context.Background(), search.TourismQuery{Embeddings: testTriple(t)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 || results[0].SourceDomain != search.DomainTourism {
		t.Fatalf("expected 1 tourism-tagged result, got %+v", results)
	}

	q := ms.queries[0]
	if len(q.Vector) != domain.DimFull {
		t.Errorf("tourism must use the full tier, got dim %d", len(q.Vector))
	}
	if len(q.Filters) != 0 {
		t.Errorf("tourism query must be unscoped, got %+v", q.Filters)
	}
}

func TestSearch_StoreError(t *testing.T) {
	ms := &mockStore{err: errors.New("index missing")}
	repo := New(ms, "guestsearch:", testParams())

	if _, err := repo.SearchHotelGeneral(context.Background(), search.HotelGeneralQuery{
		TenantID: "simmerdown", Embeddings: testTriple(t),
	}); err == nil || !strings.Contains(err.Error(), "search hotel general") {
		t.Fatalf("expected a wrapped store error, got %v", err)
	}
}
