package domain

import (
	"regexp"
	"strings"
)

// entityLabelPattern matches identifier-shaped, uppercase-led labels
// (spec.md §3: "starts with uppercase, then alphanumeric/underscore").
var entityLabelPattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)

// relationshipTypePattern matches UPPER_SNAKE_CASE relationship types.
var relationshipTypePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// propertyKeyPattern matches identifier-shaped property names.
var propertyKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidLabel reports whether label is identifier-shaped per invariant on
// Entity.label.
func IsValidLabel(label string) bool {
	return entityLabelPattern.MatchString(label)
}

// IsValidRelationshipType reports whether t is a valid UPPER_SNAKE_CASE
// relationship type.
func IsValidRelationshipType(t string) bool {
	return relationshipTypePattern.MatchString(t)
}

// IsValidPropertyKey reports whether key is identifier-shaped, per the
// DatabaseProvider implementation note in spec.md §4.3: "user-controlled
// property keys must be validated against ^[A-Za-z_][A-Za-z0-9_]*$".
func IsValidPropertyKey(key string) bool {
	return propertyKeyPattern.MatchString(key)
}

// NormalizeEntityName lowercases and trims an entity name for use as the
// dedup key described by invariant 3.
func NormalizeEntityName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidatePropertyKeys rejects any non-identifier-shaped or reserved key in
// props, returning the first offending key found.
func ValidatePropertyKeys(props map[string]any) (badKey string, ok bool) {
	for k := range props {
		if IsReservedKey(k) || !IsValidPropertyKey(k) {
			return k, false
		}
	}
	return "", true
}
