package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Glossick/akasha-sub001/engine/domain"
	"github.com/Glossick/akasha-sub001/engine/extract"
)

// maxDisplayablePropertyValueLen caps how much of one property value feeds
// into the embedding text, so a single oversized property can't dominate an
// entity's canonical representation.
const maxDisplayablePropertyValueLen = 200

// canonicalEntityText builds the deterministic string an entity's embedding
// is computed over: label, name, then properties in stable (sorted) key
// order, per spec.md §4.6 step 6.
func canonicalEntityText(e extract.ExtractedEntity) string {
	var b strings.Builder
	b.WriteString(e.Label)
	b.WriteString(": ")
	b.WriteString(e.Name)

	keys := make([]string, 0, len(e.Properties))
	for k := range e.Properties {
		if domain.IsReservedKey(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		val := fmt.Sprintf("%v", e.Properties[k])
		if len(val) > maxDisplayablePropertyValueLen {
			val = val[:maxDisplayablePropertyValueLen]
		}
		fmt.Fprintf(&b, " | %s: %s", k, val)
	}
	return b.String()
}
