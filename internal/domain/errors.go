package domain

import "errors"

// Sentinel errors for the retrieval core.
var (
	// ErrEmptyInput signals that the text to embed was empty after trimming.
	ErrEmptyInput = errors.New("empty input text")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrUnknownTier signals a tier name outside balanced/standard/full.
	ErrUnknownTier = errors.New("unknown embedding tier")
)
