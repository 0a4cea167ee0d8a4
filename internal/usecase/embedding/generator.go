// Package embedding generates and validates Matryoshka embedding triples.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/veranohq/guestsearch/internal/domain"
)

// Generator produces nested-precision embedding triples from one provider
// call. Retry and backoff policy belongs to the caller; provider errors are
// propagated as-is.
type Generator struct {
	embed  domain.Embedder
	logger *zap.Logger
}

// NewGenerator creates an embedding generator.
func NewGenerator(embed domain.Embedder, logger *zap.Logger) *Generator {
	return &Generator{embed: embed, logger: logger}
}

// Generate embeds the text at the full dimension and derives the balanced and
// standard tiers by truncation. One provider call per text: requesting three
// differently-sized vectors would not produce nested prefixes and must never
// be done.
func (g *Generator) Generate(ctx context.Context, text string) (domain.Triple, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.Triple{}, domain.ErrEmptyInput
	}

	res, err := g.embed.Embed(ctx, trimmed)
	if err != nil {
		return domain.Triple{}, fmt.Errorf("embed query: %w", err)
	}

	if len(res.Embedding) != domain.DimFull {
		return domain.Triple{}, fmt.Errorf(
			"provider returned %d dimensions, want %d: %w",
			len(res.Embedding), domain.DimFull, domain.ErrEmbeddingProviderError,
		)
	}

	triple, err := domain.NewTriple(res.Embedding)
	if err != nil {
		return domain.Triple{}, fmt.Errorf("build triple: %w", err)
	}

	g.logger.Debug("Generated embedding triple",
		zap.Int("full_dim", len(triple.Full)),
		zap.Int("total_tokens", res.TotalTokens),
	)

	return triple, nil
}

// GenerateQuery returns only the balanced tier, for callers that want the
// cheapest query vector without holding the full triple. The provider is
// still asked for the full dimension so a cached full vector stays reusable.
func (g *Generator) GenerateQuery(ctx context.Context, text string) ([]float32, error) {
	triple, err := g.Generate(ctx, text)
	if err != nil {
		return nil, err
	}

	vec := make([]float32, domain.DimBalanced)
	copy(vec, triple.Balanced)
	return vec, nil
}
