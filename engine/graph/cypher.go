package graph

import (
	"strings"

	"github.com/Glossick/akasha-sub001/engine/domain"
)

// sanitizeLabel ensures a user-supplied entity label is a safe Cypher node
// label identifier: matches domain.IsValidLabel, falling back to a generic
// label if the input is not already well-formed. Cypher does not support
// bind variables for labels/relationship types, so these must be validated
// against a strict whitelist before string-building a query.
func sanitizeLabel(label string) string {
	safe := filterIdentifierChars(label)
	if safe == "" {
		return "Entity"
	}
	if safe[0] >= 'a' && safe[0] <= 'z' {
		safe = strings.ToUpper(safe[:1]) + safe[1:]
	}
	if !domain.IsValidLabel(safe) {
		return "Entity"
	}
	return safe
}

// sanitizeRelType ensures a user-supplied relationship type is a safe
// Cypher relationship type identifier, uppercased per convention.
func sanitizeRelType(relType string) string {
	safe := filterIdentifierChars(relType)
	if safe == "" {
		return "RELATED_TO"
	}
	return strings.ToUpper(safe)
}

// filterIdentifierChars drops every byte that is not alphanumeric or
// underscore, the only characters legal in an unquoted Cypher identifier.
func filterIdentifierChars(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			b = append(b, c)
		}
	}
	return string(b)
}
