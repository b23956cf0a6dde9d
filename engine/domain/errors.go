package domain

import (
	"errors"
	"fmt"
)

// Kind enumerates the error kinds named in spec.md §7. These are kinds, not
// sentinel types: callers distinguish them with errors.Is against the
// package-level sentinels below, or by inspecting (*Error).Kind.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindEmbedding   Kind = "embedding_failure"
	KindLLM         Kind = "llm_failure"
	KindExtraction  Kind = "extraction_failure"
	KindDatabase    Kind = "database_failure"
	KindNotFound    Kind = "not_found"
	KindScope       Kind = "scope_violation"
	KindCancelled   Kind = "cancelled"
)

// Sentinel errors for errors.Is comparisons against a Kind regardless of Op/cause.
var (
	ErrValidation = errors.New("validation error")
	ErrEmbedding  = errors.New("embedding provider failure")
	ErrLLM        = errors.New("llm provider failure")
	ErrExtraction = errors.New("extraction failure")
	ErrDatabase   = errors.New("database provider failure")
	ErrNotFound   = errors.New("not found")
	ErrScope      = errors.New("scope violation")
	ErrCancelled  = errors.New("operation cancelled")
)

var kindSentinel = map[Kind]error{
	KindValidation: ErrValidation,
	KindEmbedding:  ErrEmbedding,
	KindLLM:        ErrLLM,
	KindExtraction: ErrExtraction,
	KindDatabase:   ErrDatabase,
	KindNotFound:   ErrNotFound,
	KindScope:      ErrScope,
	KindCancelled:  ErrCancelled,
}

// Error wraps a Kind, the failing operation name, and the underlying cause.
// Mirrors the teacher's ValidationError (engine/domain/errors.go): a typed
// wrapper around a sentinel with context, Unwrap-able to both levels.
type Error struct {
	Kind   Kind
	Op     string
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Unwrap returns Cause when one is set, so errors.Is/errors.As can reach the
// original provider error; without a Cause it returns the kind sentinel.
// Matching on the kind itself is handled by Is, regardless of Cause.
func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return kindSentinel[e.Kind]
}

// Is lets errors.Is(err, domain.ErrNotFound) match regardless of Cause, by
// comparing against the kind's sentinel directly.
func (e *Error) Is(target error) bool {
	return kindSentinel[e.Kind] == target
}

// NewError constructs an *Error for the given kind.
func NewError(kind Kind, op, reason string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Reason: reason, Cause: cause}
}
