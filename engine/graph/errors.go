package graph

import "github.com/Glossick/akasha-sub001/engine/domain"

// NewFailure wraps cause as a domain.Error of KindDatabase.
func NewFailure(op, reason string, cause error) *domain.Error {
	return domain.NewError(domain.KindDatabase, op, reason, cause)
}

// NewNotFound builds a domain.Error of KindNotFound.
func NewNotFound(op, reason string) *domain.Error {
	return domain.NewError(domain.KindNotFound, op, reason, nil)
}

// NewScopeViolation builds a domain.Error of KindScope.
func NewScopeViolation(op, reason string) *domain.Error {
	return domain.NewError(domain.KindScope, op, reason, nil)
}
