// Package embedding defines the EmbeddingProvider contract (spec.md §4.1):
// a deterministic text-to-vector mapping at a fixed dimensionality, plus a
// reference implementation backed by the OpenAI embeddings API.
//
// Implementations must be safe for concurrent use and must never return a
// partial batch: EmbedBatch either returns len(texts) vectors, in input
// order, or an error.
package embedding

import "context"

// Provider is the abstraction over any text-embedding backend.
type Provider interface {
	// Embed computes the embedding vector for a single text string.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes embedding vectors for texts in a single call,
	// preserving input order. On error the returned slice is nil.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed length of every embedding vector this
	// provider produces.
	Dimensions() int

	// ProviderName identifies the backend (e.g. "openai").
	ProviderName() string

	// Model returns the provider-specific model identifier in use.
	Model() string
}
