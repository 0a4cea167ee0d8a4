package retrieval

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/veranohq/guestsearch/internal/domain"
	"github.com/veranohq/guestsearch/internal/domain/guest"
	"github.com/veranohq/guestsearch/internal/domain/search"
	"github.com/veranohq/guestsearch/internal/metrics"
)

// Results holds the four tagged result lists, one per knowledge domain.
// Callers must not depend on any ordering across lists; within a list,
// results are ordered by descending similarity as produced by the storage
// layer (unit-manual results are ordered within each unit, concatenated in
// unit-list order).
type Results struct {
	Accommodation []search.Result
	HotelGeneral  []search.Result
	UnitManual    []search.Result
	Tourism       []search.Result
}

// Orchestrator fans out permitted domain searches concurrently and joins
// them. A failure in one domain never blocks the others: each domain search
// catches its own storage error, logs it, and yields an empty list.
type Orchestrator struct {
	repo   Repository
	logger *zap.Logger
}

// NewOrchestrator creates a parallel search orchestrator.
func NewOrchestrator(repo Repository, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{repo: repo, logger: logger}
}

// ExecuteParallelSearch runs every domain the context permits, concurrently,
// and waits for all of them. Domains the context forbids are never queried;
// the guest's query text is not even transmitted to them. The only shared
// state written during the fan-out is each goroutine's own Results field.
func (o *Orchestrator) ExecuteParallelSearch(
	ctx context.Context, emb domain.Triple, sctx SearchContext,
) Results {
	var results Results
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		results.Accommodation = o.searchAccommodation(ctx, emb, sctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		results.HotelGeneral = o.searchHotelGeneral(ctx, emb, sctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		results.UnitManual = o.searchUnitManuals(ctx, emb, sctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		results.Tourism = o.searchTourism(ctx, emb, sctx)
	}()

	wg.Wait()

	o.logger.Debug("Parallel search completed",
		zap.String("tenant_id", sctx.TenantID),
		zap.String("strategy", sctx.Strategy()),
		zap.Int("accommodation", len(results.Accommodation)),
		zap.Int("hotel_general", len(results.HotelGeneral)),
		zap.Int("unit_manual", len(results.UnitManual)),
		zap.Int("tourism", len(results.Tourism)),
	)

	return results
}

// searchAccommodation always runs, but needs a resolved unit to scope the
// private side; with no unit it degrades to empty rather than failing the
// whole request.
func (o *Orchestrator) searchAccommodation(ctx context.Context, emb domain.Triple, sctx SearchContext) []search.Result {
	if !sctx.HasAccommodationUnits {
		metrics.RetrievalSearchesTotal.WithLabelValues(string(search.DomainAccommodation), "skipped").Inc()
		o.logger.Warn("Accommodation search skipped: no accommodation unit resolved",
			zap.String("tenant_id", sctx.TenantID),
		)
		return nil
	}

	unit := sctx.Units[0]
	return o.runDomain(ctx, search.DomainAccommodation, func(ctx context.Context) ([]search.Result, error) {
		return o.repo.SearchAccommodation(ctx, search.AccommodationQuery{
			TenantID:   sctx.TenantID,
			UnitID:     unit.ID,
			UnitName:   unit.Name,
			Embeddings: emb,
		})
	})
}

// searchHotelGeneral always runs; this content is visible to every guest of
// the tenant regardless of unit assignment.
func (o *Orchestrator) searchHotelGeneral(ctx context.Context, emb domain.Triple, sctx SearchContext) []search.Result {
	return o.runDomain(ctx, search.DomainHotelGeneral, func(ctx context.Context) ([]search.Result, error) {
		return o.repo.SearchHotelGeneral(ctx, search.HotelGeneralQuery{
			TenantID:   sctx.TenantID,
			Embeddings: emb,
		})
	})
}

// searchUnitManuals fans out one strictly unit-scoped query per assigned
// unit, concurrently, and concatenates in unit-list order. With zero units
// no query is attempted at all: a guest without a unit must never retrieve
// any unit-manual content, not even another unit's.
func (o *Orchestrator) searchUnitManuals(ctx context.Context, emb domain.Triple, sctx SearchContext) []search.Result {
	if !sctx.HasAccommodationUnits {
		metrics.RetrievalSearchesTotal.WithLabelValues(string(search.DomainUnitManual), "skipped").Inc()
		return nil
	}

	perUnit := make([][]search.Result, len(sctx.Units))
	var wg sync.WaitGroup
	for i, unit := range sctx.Units {
		wg.Add(1)
		go func(i int, unit guest.AccommodationUnit) {
			defer wg.Done()
			perUnit[i] = o.runDomain(ctx, search.DomainUnitManual, func(ctx context.Context) ([]search.Result, error) {
				return o.repo.SearchUnitManual(ctx, search.UnitManualQuery{
					TenantID:   sctx.TenantID,
					UnitID:     unit.ID,
					UnitName:   unit.Name,
					Embeddings: emb,
				})
			})
		}(i, unit)
	}
	wg.Wait()

	var flattened []search.Result
	for _, rs := range perUnit {
		flattened = append(flattened, rs...)
	}
	return flattened
}

// searchTourism runs only when the tenant feature grants it. On denial the
// query is never issued; filtering after the fact would still transmit the
// guest's text to a domain they cannot see.
func (o *Orchestrator) searchTourism(ctx context.Context, emb domain.Triple, sctx SearchContext) []search.Result {
	if !sctx.HasMuvaAccess {
		metrics.RetrievalSearchesTotal.WithLabelValues(string(search.DomainTourism), "skipped").Inc()
		return nil
	}

	return o.runDomain(ctx, search.DomainTourism, func(ctx context.Context) ([]search.Result, error) {
		return o.repo.SearchTourism(ctx, search.TourismQuery{Embeddings: emb})
	})
}

// runDomain executes one domain search, recording metrics and downgrading
// errors to an empty list so sibling domains are never affected.
func (o *Orchestrator) runDomain(
	ctx context.Context, dom search.Domain, fn func(ctx context.Context) ([]search.Result, error),
) []search.Result {
	start := time.Now()

	results, err := fn(ctx)

	metrics.RetrievalSearchDuration.WithLabelValues(string(dom)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.RetrievalSearchesTotal.WithLabelValues(string(dom), "error").Inc()
		metrics.RetrievalDegradedTotal.WithLabelValues(string(dom)).Inc()
		o.logger.Warn("Domain search degraded to empty results",
			zap.String("domain", string(dom)),
			zap.Error(err),
		)
		return nil
	}

	metrics.RetrievalSearchesTotal.WithLabelValues(string(dom), "success").Inc()
	metrics.RetrievalResultsTotal.WithLabelValues(string(dom)).Add(float64(len(results)))
	return results
}
