package llm

import "github.com/Glossick/akasha-sub001/engine/domain"

// NewFailure wraps cause as a domain.Error of KindLLM, the shape required
// by spec.md §4.2 ("LLMProvider" -> LLMFailure).
func NewFailure(op, reason string, cause error) *domain.Error {
	return domain.NewError(domain.KindLLM, op, reason, cause)
}
