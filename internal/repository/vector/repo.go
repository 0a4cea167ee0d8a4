// Package vector is the storage-side collaborator for the retrieval
// orchestrator: one similarity query operation per knowledge domain, each
// with its own index, embedding tier, and scalar filters. Rows come back
// pre-sorted by descending similarity.
package vector

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/veranohq/guestsearch/internal/db"
	"github.com/veranohq/guestsearch/internal/domain"
	"github.com/veranohq/guestsearch/internal/domain/search"
)

// store is the consumer interface for domain searches (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// DomainParams pins one domain search to a tier, threshold, and limit.
type DomainParams struct {
	Tier      domain.Tier
	Threshold float64
	TopK      int
}

// AccommodationParams covers the dual-table accommodation domain.
type AccommodationParams struct {
	PublicTier  domain.Tier
	PrivateTier domain.Tier
	Threshold   float64
	TopK        int
}

// Params holds per-domain search parameters, built from config. The tier per
// domain is explicit here; the stored column name is never consulted.
type Params struct {
	Accommodation AccommodationParams
	HotelGeneral  DomainParams
	UnitManual    DomainParams
	Tourism       DomainParams
}

// Repo implements the orchestrator's Repository contract over an FT-search
// capable store.
type Repo struct {
	store     store
	keyPrefix string
	params    Params
}

// New creates a vector search repository.
func New(s store, keyPrefix string, params Params) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, params: params}
}

var contentFields = []string{"__content", "__vector_score", "unit_id", "unit_name", "section_title", "chunk_index"}

// SearchAccommodation runs the accommodation-domain query: the tenant's full
// public catalog at the public tier plus the guest unit's private rows at the
// private tier, merged by descending similarity.
func (r *Repo) SearchAccommodation(ctx context.Context, q search.AccommodationQuery) ([]search.Result, error) {
	p := r.params.Accommodation

	pubVec, err := q.Embeddings.ByTier(p.PublicTier)
	if err != nil {
		return nil, fmt.Errorf("accommodation public tier: %w", err)
	}
	pub, err := r.knn(ctx, search.TableAccommodationPublic, pubVec, p.TopK,
		db.TagFilter{Field: "tenant_id", Value: q.TenantID},
	)
	if err != nil {
		return nil, fmt.Errorf("search accommodation public: %w", err)
	}

	privVec, err := q.Embeddings.ByTier(p.PrivateTier)
	if err != nil {
		return nil, fmt.Errorf("accommodation private tier: %w", err)
	}
	priv, err := r.knn(ctx, search.TableAccommodationPrivate, privVec, p.TopK,
		db.TagFilter{Field: "tenant_id", Value: q.TenantID},
		db.TagFilter{Field: "unit_id", Value: q.UnitID},
	)
	if err != nil {
		return nil, fmt.Errorf("search accommodation private: %w", err)
	}

	results := make([]search.Result, 0, len(pub.Entries)+len(priv.Entries))
	for _, e := range pub.Entries {
		res := r.toResult(e, search.DomainAccommodation, search.TableAccommodationPublic)
		res.IsGuestUnit = res.UnitID != "" && res.UnitID == q.UnitID
		results = append(results, res)
	}
	for _, e := range priv.Entries {
		res := r.toResult(e, search.DomainAccommodation, search.TableAccommodationPrivate)
		res.IsGuestUnit = true
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	results = aboveThreshold(results, p.Threshold)
	if len(results) > p.TopK {
		results = results[:p.TopK]
	}
	return results, nil
}

// SearchHotelGeneral runs the tenant-wide info query. Tenant scope only.
func (r *Repo) SearchHotelGeneral(ctx context.Context, q search.HotelGeneralQuery) ([]search.Result, error) {
	p := r.params.HotelGeneral

	vec, err := q.Embeddings.ByTier(p.Tier)
	if err != nil {
		return nil, fmt.Errorf("hotel general tier: %w", err)
	}
	sr, err := r.knn(ctx, search.TableHotelGeneral, vec, p.TopK,
		db.TagFilter{Field: "tenant_id", Value: q.TenantID},
	)
	if err != nil {
		return nil, fmt.Errorf("search hotel general: %w", err)
	}

	results := make([]search.Result, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		results = append(results, r.toResult(e, search.DomainHotelGeneral, search.TableHotelGeneral))
	}
	return aboveThreshold(results, p.Threshold), nil
}

// SearchUnitManual runs one manual query scoped strictly to a single unit.
func (r *Repo) SearchUnitManual(ctx context.Context, q search.UnitManualQuery) ([]search.Result, error) {
	p := r.params.UnitManual

	vec, err := q.Embeddings.ByTier(p.Tier)
	if err != nil {
		return nil, fmt.Errorf("unit manual tier: %w", err)
	}
	sr, err := r.knn(ctx, search.TableUnitManual, vec, p.TopK,
		db.TagFilter{Field: "tenant_id", Value: q.TenantID},
		db.TagFilter{Field: "unit_id", Value: q.UnitID},
	)
	if err != nil {
		return nil, fmt.Errorf("search unit manual %s: %w", q.UnitID, err)
	}

	results := make([]search.Result, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		res := r.toResult(e, search.DomainUnitManual, search.TableUnitManual)
		// Keep the queried unit on every row even when the stored row
		// omits it; downstream consumers group by unit.
		if res.UnitID == "" {
			res.UnitID = q.UnitID
		}
		if res.UnitName == "" {
			res.UnitName = q.UnitName
		}
		results = append(results, res)
	}
	return aboveThreshold(results, p.Threshold), nil
}

// SearchTourism runs the tourism query at the full tier, unscoped beyond the
// collection itself.
func (r *Repo) SearchTourism(ctx context.Context, q search.TourismQuery) ([]search.Result, error) {
	p := r.params.Tourism

	vec, err := q.Embeddings.ByTier(p.Tier)
	if err != nil {
		return nil, fmt.Errorf("tourism tier: %w", err)
	}
	sr, err := r.knn(ctx, search.TableTourism, vec, p.TopK)
	if err != nil {
		return nil, fmt.Errorf("search tourism: %w", err)
	}

	results := make([]search.Result, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		results = append(results, r.toResult(e, search.DomainTourism, search.TableTourism))
	}
	return aboveThreshold(results, p.Threshold), nil
}

func (r *Repo) knn(
	ctx context.Context, table string, vector []float32, topK int, filters ...db.TagFilter,
) (*db.SearchResult, error) {
	q := &db.KNNQuery{
		IndexName:    fmt.Sprintf("%s%s:idx", r.keyPrefix, table),
		Filters:      filters,
		Vector:       vector,
		K:            topK,
		ReturnFields: contentFields,
	}
	return r.store.SearchKNN(ctx, q)
}

// toResult converts a raw store entry into a tagged result. Known columns
// become typed fields; the rest stay in Metadata.
func (r *Repo) toResult(e db.SearchEntry, dom search.Domain, table string) search.Result {
	res := search.Result{
		ID:           documentID(e.Key, r.keyPrefix, table),
		Content:      e.Fields["__content"],
		Similarity:   e.Score,
		SourceDomain: dom,
		Table:        table,
		UnitID:       e.Fields["unit_id"],
		UnitName:     e.Fields["unit_name"],
	}
	meta := make(map[string]string)
	for k, v := range e.Fields {
		switch k {
		case "__content", "__vector_score", "unit_id", "unit_name":
			continue
		}
		meta[k] = v
	}
	if len(meta) > 0 {
		res.Metadata = meta
	}
	return res
}

// documentID strips the "<prefix><table>:" key namespace, leaving the row id.
func documentID(key, prefix, table string) string {
	return strings.TrimPrefix(key, fmt.Sprintf("%s%s:", prefix, table))
}

func aboveThreshold(results []search.Result, threshold float64) []search.Result {
	filtered := results[:0]
	for _, r := range results {
		if r.Similarity >= threshold {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
