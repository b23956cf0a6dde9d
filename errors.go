package akasha

import (
	"errors"

	"github.com/Glossick/akasha-sub001/engine/domain"
)

// Error is the structured error every public method returns on failure.
// It wraps a Kind, the failing operation, and (where available) the
// underlying provider error.
type Error = domain.Error

// Kind enumerates the error kinds named in spec.md §7.
type Kind = domain.Kind

// Sentinel kinds for errors.Is comparisons, re-exported from engine/domain
// so callers never need to import it directly.
var (
	ErrValidation = domain.ErrValidation
	ErrEmbedding  = domain.ErrEmbedding
	ErrLLM        = domain.ErrLLM
	ErrExtraction = domain.ErrExtraction
	ErrDatabase   = domain.ErrDatabase
	ErrNotFound   = domain.ErrNotFound
	ErrScope      = domain.ErrScope
	ErrCancelled  = domain.ErrCancelled
)

// IsNotFound reports whether err represents a missing-record failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsScopeViolation reports whether err represents a cross-scope access attempt.
func IsScopeViolation(err error) bool {
	return errors.Is(err, ErrScope)
}
