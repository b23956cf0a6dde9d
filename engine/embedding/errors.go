package embedding

import "github.com/Glossick/akasha-sub001/engine/domain"

// NewFailure wraps cause as a domain.Error of KindEmbedding, the shape
// required by spec.md §4.12 ("Embedding API" -> EmbeddingFailure).
func NewFailure(op, reason string, cause error) *domain.Error {
	return domain.NewError(domain.KindEmbedding, op, reason, cause)
}
