package ingest

import (
	"fmt"

	"github.com/google/uuid"
)

// contextNamespace roots the deterministic context-id derivation so the
// same (scopeId, contextName) pair always yields the same id, matching the
// teacher's deterministic-UUID idiom for content-addressed ids.
var contextNamespace = uuid.NameSpaceOID

// resolveContextID implements spec.md §4.6 step 2: prefer an explicit
// contextId; otherwise derive a stable id from contextName within scope;
// otherwise mint a fresh one.
func resolveContextID(scopeID, contextID, contextName string) string {
	if contextID != "" {
		return contextID
	}
	if contextName != "" {
		return uuid.NewSHA1(contextNamespace, []byte(fmt.Sprintf("%s\x00%s", scopeID, contextName))).String()
	}
	return uuid.NewString()
}
