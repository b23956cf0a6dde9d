// Package respond shapes what the core hands back to callers: stripping
// embeddings from response payloads (C11) and measuring per-stage timing
// for the ask pipeline's optional statistics.
package respond

import (
	"strings"

	"github.com/Glossick/akasha-sub001/engine/domain"
)

// preservedUnderscoreKeys lists the internal-only (leading "_") keys that
// survive scrubbing, per spec.md §4.8 step 8: "_similarity" and the
// temporal fields stay, everything else prefixed "_" is stripped.
var preservedUnderscoreKeys = map[string]bool{
	domain.PropSimilarity: true,
	domain.PropRecordedAt: true,
	domain.PropValidFrom:  true,
	domain.PropValidTo:    true,
}

// ScrubEntity returns a copy of e with its embedding removed and any
// internal field not in preservedUnderscoreKeys stripped from Properties.
func ScrubEntity(e domain.Entity) domain.Entity {
	e.Properties = scrubProperties(e.Properties)
	return e
}

// ScrubRelationship mirrors ScrubEntity for relationships.
func ScrubRelationship(r domain.Relationship) domain.Relationship {
	r.Properties = scrubProperties(r.Properties)
	return r
}

// ScrubDocument clears Document's dedicated Embedding field; Document has
// no underscore-prefixed Properties to filter since its system fields are
// first-class struct fields, not map entries.
func ScrubDocument(d domain.Document) domain.Document {
	d.Embedding = nil
	return d
}

func scrubProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		if k == domain.PropEmbedding {
			continue
		}
		if strings.HasPrefix(k, "_") && !preservedUnderscoreKeys[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// ScrubEntities/ScrubRelationships/ScrubDocuments apply the scalar scrub
// functions across a slice, used by ask and the CRUD surface alike.
func ScrubEntities(es []domain.Entity) []domain.Entity {
	out := make([]domain.Entity, len(es))
	for i, e := range es {
		out[i] = ScrubEntity(e)
	}
	return out
}

func ScrubRelationships(rs []domain.Relationship) []domain.Relationship {
	out := make([]domain.Relationship, len(rs))
	for i, r := range rs {
		out[i] = ScrubRelationship(r)
	}
	return out
}

func ScrubDocuments(ds []domain.Document) []domain.Document {
	out := make([]domain.Document, len(ds))
	for i, d := range ds {
		out[i] = ScrubDocument(d)
	}
	return out
}
