package domain

import (
	"context"
	"fmt"
)

// Matryoshka tier dimensions. The provider is always asked for the full
// dimension; the smaller tiers are prefixes of the full vector.
const (
	DimBalanced = 1024
	DimStandard = 1536
	DimFull     = 3072
)

// Tier names a Matryoshka precision level.
type Tier string

// Known tiers, in ascending precision order.
const (
	TierBalanced Tier = "balanced"
	TierStandard Tier = "standard"
	TierFull     Tier = "full"
)

// Dim returns the vector dimension of the tier.
func (t Tier) Dim() (int, error) {
	switch t {
	case TierBalanced:
		return DimBalanced, nil
	case TierStandard:
		return DimStandard, nil
	case TierFull:
		return DimFull, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTier, string(t))
	}
}

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Triple is the nested-precision embedding for one text. The smaller tiers
// are prefixes of the full vector, so all three share one backing array.
// A Triple is built once per query and never mutated after validation.
type Triple struct {
	Balanced []float32
	Standard []float32
	Full     []float32
}

// NewTriple derives the balanced and standard tiers from one full-precision
// vector by truncation. Deriving by truncation (rather than separate model
// calls) is what produces the prefix-nesting property the validator checks.
func NewTriple(full []float32) (Triple, error) {
	if len(full) != DimFull {
		return Triple{}, fmt.Errorf("full tier must have %d dimensions, got %d", DimFull, len(full))
	}
	return Triple{
		Balanced: full[:DimBalanced:DimBalanced],
		Standard: full[:DimStandard:DimStandard],
		Full:     full,
	}, nil
}

// ByTier returns the vector for the given tier.
func (t Triple) ByTier(tier Tier) ([]float32, error) {
	switch tier {
	case TierBalanced:
		return t.Balanced, nil
	case TierStandard:
		return t.Standard, nil
	case TierFull:
		return t.Full, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, string(tier))
	}
}
