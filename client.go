package guestsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/veranohq/guestsearch/internal/db"
	dbRedis "github.com/veranohq/guestsearch/internal/db/redis"
	"github.com/veranohq/guestsearch/internal/domain"
	"github.com/veranohq/guestsearch/internal/domain/guest"
	"github.com/veranohq/guestsearch/internal/domain/search"
	"github.com/veranohq/guestsearch/internal/repository/embcache"
	vectorrepo "github.com/veranohq/guestsearch/internal/repository/vector"
	openaiEmb "github.com/veranohq/guestsearch/internal/transport/openai"
	embeddinguc "github.com/veranohq/guestsearch/internal/usecase/embedding"
	healthuc "github.com/veranohq/guestsearch/internal/usecase/health"
	retrievaluc "github.com/veranohq/guestsearch/internal/usecase/retrieval"
)

const defaultReadinessTimeout = 10 * time.Second

// Domain is one of the four knowledge partitions.
type Domain = search.Domain

// Knowledge domains.
const (
	DomainAccommodation = search.DomainAccommodation
	DomainHotelGeneral  = search.DomainHotelGeneral
	DomainUnitManual    = search.DomainUnitManual
	DomainTourism       = search.DomainTourism
)

// Result is a single retrieved item, tagged with its source domain and table.
type Result = search.Result

// Unit is one accommodation unit assigned to a reservation.
type Unit struct {
	ID   string
	Name string
}

// Guest is the reservation record the caller authenticated upstream. Units
// drives unit-scoped domains; Features is the tenant feature-flag map
// (tourism requires the boolean true under "muva_access").
type Guest struct {
	ID           string
	TenantID     string
	Name         string
	CheckInDate  string
	CheckOutDate string
	Units        []Unit
	Features     map[string]any
}

// Results is the outcome of one retrieval: the four domain result lists,
// kept separate, plus the resolved search strategy for audit.
type Results struct {
	Strategy      string
	Accommodation []Result
	HotelGeneral  []Result
	UnitManual    []Result
	Tourism       []Result
}

// DomainParams pins one domain search to a tier, threshold, and limit.
// Tier is one of "balanced", "standard", "full".
type DomainParams struct {
	Tier      string
	Threshold float64
	TopK      int
}

// AccommodationParams covers the dual-table accommodation domain.
type AccommodationParams struct {
	PublicTier  string
	PrivateTier string
	Threshold   float64
	TopK        int
}

// SearchParams holds the per-domain search parameters.
type SearchParams struct {
	Accommodation AccommodationParams
	HotelGeneral  DomainParams
	UnitManual    DomainParams
	Tourism       DomainParams
}

// DefaultSearchParams returns the production defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Accommodation: AccommodationParams{
			PublicTier:  string(domain.TierBalanced),
			PrivateTier: string(domain.TierStandard),
			Threshold:   0.15,
			TopK:        10,
		},
		HotelGeneral: DomainParams{Tier: string(domain.TierStandard), Threshold: 0.30, TopK: 5},
		UnitManual:   DomainParams{Tier: string(domain.TierStandard), Threshold: 0.25, TopK: 5},
		Tourism:      DomainParams{Tier: string(domain.TierFull), Threshold: 0.15, TopK: 10},
	}
}

// Internal interfaces for test substitution.
type generatorUseCase interface {
	Generate(ctx context.Context, text string) (domain.Triple, error)
}

type retrievalUseCase interface {
	ExecuteParallelSearch(ctx context.Context, emb domain.Triple, sctx retrievaluc.SearchContext) retrievaluc.Results
}

// Client is the guestsearch SDK entry point.
type Client struct {
	store        db.Store
	generator    generatorUseCase
	orchestrator retrievalUseCase
	healthSvc    *healthuc.Service
}

// New creates a Client and connects to the vector store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: "guestsearch:",
		params:    DefaultSearchParams(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("guestsearch: store address required (use WithRedis)")
	}
	if cfg.embedder == nil && cfg.apiKey == "" {
		return nil, errors.New("guestsearch: embedding provider required (use WithOpenAI or WithEmbedder)")
	}

	params, err := repoParams(cfg.params)
	if err != nil {
		return nil, fmt.Errorf("guestsearch: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("guestsearch: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("guestsearch: store not ready: %w", err)
	}

	embedder := cfg.embedder
	if embedder == nil {
		embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.apiKey,
			BaseURL:    cfg.baseURL,
			Model:      cfg.model,
			Dimensions: domain.DimFull,
			Provider:   "openai",
			Logger:     cfg.logger,
		})
	}
	if cfg.cacheTTL > 0 {
		embedder = embcache.New(embedder, store, cfg.cacheTTL, nil, cfg.logger)
	}

	repo := vectorrepo.New(store, cfg.keyPrefix, params)

	var embHealth healthuc.EmbeddingChecker
	if hc, ok := embedder.(domain.HealthChecker); ok {
		embHealth = hc
	}

	return &Client{
		store:        store,
		generator:    embeddinguc.NewGenerator(embedder, cfg.logger),
		orchestrator: retrievaluc.NewOrchestrator(repo, cfg.logger),
		healthSvc:    healthuc.New(store, embHealth),
	}, nil
}

// Retrieve embeds the query once, derives the guest's permissions, and fans
// out the permitted domain searches concurrently. A storage failure in one
// domain degrades that domain to an empty list; Retrieve fails only when the
// query cannot be embedded.
func (c *Client) Retrieve(ctx context.Context, query string, g Guest) (Results, error) {
	triple, err := c.generator.Generate(ctx, query)
	if err != nil {
		return Results{}, err
	}

	if v := embeddinguc.Validate(triple); !v.Valid {
		return Results{}, fmt.Errorf("%w: %v", domain.ErrEmbeddingProviderError, v.Errors)
	}

	sctx := retrievaluc.BuildSearchContext(sessionFromGuest(g))
	res := c.orchestrator.ExecuteParallelSearch(ctx, triple, sctx)

	return Results{
		Strategy:      sctx.Strategy(),
		Accommodation: res.Accommodation,
		HotelGeneral:  res.HotelGeneral,
		UnitManual:    res.UnitManual,
		Tourism:       res.Tourism,
	}, nil
}

// Health reports store and embedding provider availability.
func (c *Client) Health(ctx context.Context) healthuc.Report {
	return c.healthSvc.Check(ctx)
}

// Close releases the store connection.
func (c *Client) Close() {
	c.store.Close()
}

func sessionFromGuest(g Guest) guest.Session {
	sess := guest.Session{
		ID:             g.ID,
		TenantID:       g.TenantID,
		Name:           g.Name,
		CheckInDate:    g.CheckInDate,
		CheckOutDate:   g.CheckOutDate,
		TenantFeatures: g.Features,
	}
	for _, u := range g.Units {
		sess.AccommodationUnits = append(sess.AccommodationUnits, guest.AccommodationUnit(u))
	}
	return sess
}

func repoParams(p SearchParams) (vectorrepo.Params, error) {
	tiers := []string{
		p.Accommodation.PublicTier, p.Accommodation.PrivateTier,
		p.HotelGeneral.Tier, p.UnitManual.Tier, p.Tourism.Tier,
	}
	for _, t := range tiers {
		if _, err := domain.Tier(t).Dim(); err != nil {
			return vectorrepo.Params{}, err
		}
	}

	return vectorrepo.Params{
		Accommodation: vectorrepo.AccommodationParams{
			PublicTier:  domain.Tier(p.Accommodation.PublicTier),
			PrivateTier: domain.Tier(p.Accommodation.PrivateTier),
			Threshold:   p.Accommodation.Threshold,
			TopK:        p.Accommodation.TopK,
		},
		HotelGeneral: vectorrepo.DomainParams{
			Tier:      domain.Tier(p.HotelGeneral.Tier),
			Threshold: p.HotelGeneral.Threshold,
			TopK:      p.HotelGeneral.TopK,
		},
		UnitManual: vectorrepo.DomainParams{
			Tier:      domain.Tier(p.UnitManual.Tier),
			Threshold: p.UnitManual.Threshold,
			TopK:      p.UnitManual.TopK,
		},
		Tourism: vectorrepo.DomainParams{
			Tier:      domain.Tier(p.Tourism.Tier),
			Threshold: p.Tourism.Threshold,
			TopK:      p.Tourism.TopK,
		},
	}, nil
}
