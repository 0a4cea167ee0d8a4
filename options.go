package guestsearch

import (
	"time"

	"go.uber.org/zap"

	"github.com/veranohq/guestsearch/internal/domain"
)

// Embedder is the text vectorization contract accepted by WithEmbedder.
type Embedder = domain.Embedder

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult = domain.EmbeddingResult

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	apiKey  string
	baseURL string
	model   string

	embedder Embedder

	cacheTTL  time.Duration
	keyPrefix string
	params    SearchParams

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance with the
// search module loaded.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithOpenAI configures the OpenAI-compatible embedding provider. baseURL
// may be empty for the default endpoint. The provider is always asked for
// the full-precision dimension; smaller tiers derive by truncation.
func WithOpenAI(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
		c.baseURL = baseURL
		c.model = model
	})
}

// WithEmbedder sets a custom embedding provider instead of OpenAI. The
// provider must return vectors of the full-precision dimension.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithCacheTTL enables the full-vector embedding cache backed by the same
// store, with the given entry lifetime. Zero disables caching (default).
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithKeyPrefix sets the storage key prefix shared with the ingestion
// pipeline. Default "guestsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithSearchParams overrides the per-domain tiers, similarity thresholds,
// and result limits.
func WithSearchParams(p SearchParams) Option {
	return optionFunc(func(c *clientConfig) {
		c.params = p
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
