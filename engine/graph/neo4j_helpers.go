package graph

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/Glossick/akasha-sub001/engine/domain"
)

const metadataPropPrefix = "metadata_"

func newID() string {
	return uuid.NewString()
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func toFloat64Slice(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func toFloat32Slice(v any) []float32 {
	switch vals := v.(type) {
	case []float64:
		out := make([]float32, len(vals))
		for i, f := range vals {
			out[i] = float32(f)
		}
		return out
	case []any:
		out := make([]float32, 0, len(vals))
		for _, raw := range vals {
			switch f := raw.(type) {
			case float64:
				out = append(out, float32(f))
			case float32:
				out = append(out, f)
			}
		}
		return out
	}
	return nil
}

func stringSliceOf(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, raw := range vals {
			if s, ok := raw.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// stringSliceProp reads a []string out of an entity's Properties map, which
// may hold either a native []string (in-process callers) or the []any that
// the Neo4j driver hands back for list properties.
func stringSliceProp(props map[string]any, key string) []string {
	return stringSliceOf(props[key])
}

// entityFromNode rebuilds a domain.Entity from a Neo4j node, stripping the
// internal nameKey dedup property that never belongs in domain.Properties.
func entityFromNode(node dbtype.Node) domain.Entity {
	label := baseEntityLabel
	for _, l := range node.Labels {
		if l != baseEntityLabel {
			label = l
			break
		}
	}

	props := make(map[string]any, len(node.Props))
	for k, v := range node.Props {
		if k == internalNameKeyProp || k == "id" {
			continue
		}
		props[k] = v
	}
	if raw, ok := props[domain.PropEmbedding]; ok {
		props[domain.PropEmbedding] = toFloat32Slice(raw)
	}
	if raw, ok := props[domain.PropContextIDs]; ok {
		props[domain.PropContextIDs] = stringSliceOf(raw)
	}

	id, _ := node.Props["id"].(string)
	return domain.Entity{ID: id, Label: label, Properties: props}
}

// documentToProps flattens a domain.Document into the property map stored
// on its Neo4j node. Metadata keys are prefixed to keep them distinguishable
// from reserved fields when read back.
func documentToProps(d domain.Document) map[string]any {
	props := map[string]any{
		domain.PropScopeID: d.ScopeID,
	}
	if len(d.ContextIDs) > 0 {
		props[domain.PropContextIDs] = d.ContextIDs
	}
	if !d.RecordedAt.IsZero() {
		props[domain.PropRecordedAt] = d.RecordedAt
	}
	if !d.ValidFrom.IsZero() {
		props[domain.PropValidFrom] = d.ValidFrom
	}
	if d.ValidTo != nil {
		props[domain.PropValidTo] = *d.ValidTo
	}
	for k, v := range d.Metadata {
		props[metadataPropPrefix+k] = v
	}
	return props
}

func documentFromNode(node dbtype.Node) domain.Document {
	d := domain.Document{
		ScopeID: strProp(node.Props, domain.PropScopeID),
		Text:    strProp(node.Props, "text"),
	}
	id, _ := node.Props["id"].(string)
	d.ID = id

	if raw, ok := node.Props[domain.PropEmbedding]; ok {
		d.Embedding = toFloat32Slice(raw)
	}
	if raw, ok := node.Props[domain.PropContextIDs]; ok {
		d.ContextIDs = stringSliceOf(raw)
	}
	if t, ok := timeProp(node.Props, domain.PropRecordedAt); ok {
		d.RecordedAt = t
	}
	if t, ok := timeProp(node.Props, domain.PropValidFrom); ok {
		d.ValidFrom = t
	}
	if t, ok := timeProp(node.Props, domain.PropValidTo); ok {
		d.ValidTo = &t
	}

	meta := map[string]any{}
	for k, v := range node.Props {
		if strings.HasPrefix(k, metadataPropPrefix) {
			meta[strings.TrimPrefix(k, metadataPropPrefix)] = v
		}
	}
	if len(meta) > 0 {
		d.Metadata = meta
	}
	return d
}

func timeProp(props map[string]any, key string) (time.Time, bool) {
	switch v := props[key].(type) {
	case time.Time:
		return v, true
	case dbtype.LocalDateTime:
		return v.Time(), true
	case dbtype.Date:
		return v.Time(), true
	}
	return time.Time{}, false
}

func strProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func relationshipFromRecord(rec *neo4j.Record) domain.Relationship {
	rel, _, _ := getRelationship(rec)
	fromID, _, _ := getString(rec, "fromID")
	toID, _, _ := getString(rec, "toID")

	props := make(map[string]any, len(rel.Props))
	for k, v := range rel.Props {
		if k == "id" {
			continue
		}
		props[k] = v
	}
	id, _ := rel.Props["id"].(string)
	return domain.Relationship{ID: id, Type: rel.Type, From: fromID, To: toID, Properties: props}
}

func relationshipFromPathRel(rel dbtype.Relationship, nodes []dbtype.Node) domain.Relationship {
	var fromID, toID string
	for _, n := range nodes {
		if n.Id == rel.StartId {
			fromID, _ = n.Props["id"].(string)
		}
		if n.Id == rel.EndId {
			toID, _ = n.Props["id"].(string)
		}
	}
	props := make(map[string]any, len(rel.Props))
	for k, v := range rel.Props {
		if k == "id" {
			continue
		}
		props[k] = v
	}
	id, _ := rel.Props["id"].(string)
	return domain.Relationship{ID: id, Type: rel.Type, From: fromID, To: toID, Properties: props}
}

// entityValidAtMatches adapts the shared memory-provider temporal filter to
// entity property shapes returned from Neo4j (time.Time already decoded).
func entityValidAtMatches(e domain.Entity, validAt string) bool {
	var validFrom, validTo time.Time
	if t, ok := e.Properties[domain.PropValidFrom].(time.Time); ok {
		validFrom = t
	}
	hasValidTo := false
	if t, ok := e.Properties[domain.PropValidTo].(time.Time); ok {
		validTo = t
		hasValidTo = true
	}
	return validAtMatches(validFrom, validTo, hasValidTo, validAt)
}

func getRelationship(rec *neo4j.Record) (dbtype.Relationship, bool, error) {
	v, ok := rec.Get("rel")
	if !ok {
		return dbtype.Relationship{}, false, nil
	}
	rel, ok := v.(dbtype.Relationship)
	return rel, ok, nil
}

func getString(rec *neo4j.Record, key string) (string, bool, error) {
	v, ok := rec.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	return s, ok, nil
}
