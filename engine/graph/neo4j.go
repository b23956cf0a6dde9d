package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/Glossick/akasha-sub001/engine/domain"
	"github.com/Glossick/akasha-sub001/pkg/resilience"
)

const (
	baseEntityLabel      = "Entity"
	entityVectorIndex    = "akasha_entity_embedding"
	documentVectorIndex  = "akasha_document_embedding"
	internalNameKeyProp  = "nameKey"
	overFetchMultiplier  = 4
	minOverFetch         = 50
)

// Neo4jProvider is the reference Provider implementation, backed by a real
// Neo4j database. It mirrors the teacher GraphStore's session-per-call
// style: every exported method opens and closes its own session rather than
// holding one across calls.
type Neo4jProvider struct {
	driver  neo4j.DriverWithContext
	breaker *resilience.Breaker
}

var _ Provider = (*Neo4jProvider)(nil)

// NewNeo4j wraps an already-configured driver. Callers own the driver's
// lifecycle beyond Connect/Disconnect.
func NewNeo4j(driver neo4j.DriverWithContext) *Neo4jProvider {
	return &Neo4jProvider{driver: driver, breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts)}
}

// Connect implements Provider by verifying connectivity.
func (p *Neo4jProvider) Connect(ctx context.Context) error {
	if err := p.driver.VerifyConnectivity(ctx); err != nil {
		return NewFailure("connect", "failed to verify neo4j connectivity", err)
	}
	return nil
}

// Disconnect implements Provider.
func (p *Neo4jProvider) Disconnect(ctx context.Context) error {
	if err := p.driver.Close(ctx); err != nil {
		return NewFailure("disconnect", "failed to close neo4j driver", err)
	}
	return nil
}

// EnsureVectorIndex implements Provider, creating the two native vector
// indexes the core relies on: one over every node carrying the base Entity
// label, one over Document nodes.
func (p *Neo4jProvider) EnsureVectorIndex(ctx context.Context, dimensions int) error {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	statements := []string{
		fmt.Sprintf(`CREATE VECTOR INDEX %s IF NOT EXISTS
		 FOR (n:%s) ON (n.embedding)
		 OPTIONS {indexConfig: {`+"`vector.dimensions`"+`: %d, `+"`vector.similarity_function`"+`: 'cosine'}}`,
			entityVectorIndex, baseEntityLabel, dimensions),
		fmt.Sprintf(`CREATE VECTOR INDEX %s IF NOT EXISTS
		 FOR (n:%s) ON (n.embedding)
		 OPTIONS {indexConfig: {`+"`vector.dimensions`"+`: %d, `+"`vector.similarity_function`"+`: 'cosine'}}`,
			documentVectorIndex, domain.DocumentLabel, dimensions),
	}
	for _, stmt := range statements {
		if _, err := sess.Run(ctx, stmt, nil); err != nil {
			return NewFailure("ensureVectorIndex", "failed to create vector index", err)
		}
	}
	return nil
}

// Ping implements Provider.
func (p *Neo4jProvider) Ping(ctx context.Context) bool {
	return p.driver.VerifyConnectivity(ctx) == nil
}

// FindEntitiesByVector implements Provider via db.index.vector.queryNodes,
// over-fetching and filtering contexts/validity client-side since those
// predicates do not fit Neo4j's vector index query procedure.
func (p *Neo4jProvider) FindEntitiesByVector(ctx context.Context, opts VectorSearchOpts) ([]domain.Entity, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	k := opts.Limit * overFetchMultiplier
	if k < minOverFetch {
		k = minOverFetch
	}

	cypher := `CALL db.index.vector.queryNodes($index, $k, $query) YIELD node, score
	           WHERE score >= $threshold AND ($scopeId = '' OR node.scopeId = $scopeId)
	           RETURN node, score ORDER BY score DESC`
	var result neo4j.ResultWithContext
	err := p.breaker.Call(ctx, func(ctx context.Context) error {
		var runErr error
		result, runErr = sess.Run(ctx, cypher, map[string]any{
			"index": entityVectorIndex, "k": k, "query": toFloat64Slice(opts.Query),
			"threshold": opts.SimilarityThreshold, "scopeId": opts.ScopeID,
		})
		return runErr
	})
	if err != nil {
		return nil, NewFailure("findEntitiesByVector", "vector query failed", err)
	}

	var out []domain.Entity
	for result.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "node")
		if err != nil {
			continue
		}
		score, _, _ := neo4j.GetRecordValue[float64](result.Record(), "score")
		e := entityFromNode(node)
		if !contextsMatch(stringSliceProp(e.Properties, domain.PropContextIDs), opts.Contexts) {
			continue
		}
		if !entityValidAtMatches(e, opts.ValidAt) {
			continue
		}
		e.Properties[domain.PropSimilarity] = score
		out = append(out, e)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

// FindDocumentsByVector implements Provider.
func (p *Neo4jProvider) FindDocumentsByVector(ctx context.Context, opts VectorSearchOpts) ([]domain.Document, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	k := opts.Limit * overFetchMultiplier
	if k < minOverFetch {
		k = minOverFetch
	}

	cypher := `CALL db.index.vector.queryNodes($index, $k, $query) YIELD node, score
	           WHERE score >= $threshold AND ($scopeId = '' OR node.scopeId = $scopeId)
	           RETURN node, score ORDER BY score DESC`
	var result neo4j.ResultWithContext
	err := p.breaker.Call(ctx, func(ctx context.Context) error {
		var runErr error
		result, runErr = sess.Run(ctx, cypher, map[string]any{
			"index": documentVectorIndex, "k": k, "query": toFloat64Slice(opts.Query),
			"threshold": opts.SimilarityThreshold, "scopeId": opts.ScopeID,
		})
		return runErr
	})
	if err != nil {
		return nil, NewFailure("findDocumentsByVector", "vector query failed", err)
	}

	var out []domain.Document
	for result.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "node")
		if err != nil {
			continue
		}
		score, _, _ := neo4j.GetRecordValue[float64](result.Record(), "score")
		d := documentFromNode(node)
		if !contextsMatch(d.ContextIDs, opts.Contexts) {
			continue
		}
		if !documentMatchesFilters(d, "", nil, opts.ValidAt) {
			continue
		}
		if d.Metadata == nil {
			d.Metadata = map[string]any{}
		}
		d.Metadata[domain.PropSimilarity] = score
		out = append(out, d)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

// RetrieveSubgraph implements Provider with a bounded-depth, undirected
// traversal, mirroring the teacher's Neighbors query.
func (p *Neo4jProvider) RetrieveSubgraph(ctx context.Context, opts SubgraphOpts) (Subgraph, error) {
	if len(opts.StartEntityIDs) == 0 {
		return Subgraph{}, nil
	}

	depth := opts.MaxDepth
	if depth < 1 {
		depth = 1
	}
	if depth > 10 {
		depth = 10
	}

	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	var typeFilter string
	if len(opts.RelationshipTypes) > 0 {
		sanitized := make([]string, len(opts.RelationshipTypes))
		for i, t := range opts.RelationshipTypes {
			sanitized[i] = sanitizeRelType(t)
		}
		typeFilter = ":" + strings.Join(sanitized, "|")
	}

	cypher := fmt.Sprintf(`MATCH (start:%s) WHERE start.id IN $startIds AND start.scopeId = $scopeId
	           MATCH path = (start)-[rel%s*1..%d]-(other:%s)
	           WHERE other.scopeId = $scopeId
	           RETURN path LIMIT $limit`,
		baseEntityLabel, typeFilter, depth, baseEntityLabel)

	limit := opts.Limit
	if limit <= 0 {
		limit = 1000
	}
	result, err := sess.Run(ctx, cypher, map[string]any{
		"startIds": opts.StartEntityIDs, "scopeId": opts.ScopeID, "limit": limit,
	})
	if err != nil {
		return Subgraph{}, NewFailure("retrieveSubgraph", "subgraph query failed", err)
	}

	labelOK := toSet(opts.EntityLabels)
	entities := map[string]domain.Entity{}
	relationships := map[string]domain.Relationship{}
	for result.Next(ctx) {
		path, _, err := neo4j.GetRecordValue[dbtype.Path](result.Record(), "path")
		if err != nil {
			continue
		}
		for _, n := range path.Nodes {
			e := entityFromNode(n)
			if len(labelOK) > 0 && !labelOK[e.Label] {
				continue
			}
			entities[e.ID] = e
		}
		for _, rel := range path.Relationships {
			r := relationshipFromPathRel(rel, path.Nodes)
			relationships[r.ID] = r
		}
	}

	out := Subgraph{}
	for _, e := range entities {
		out.Entities = append(out.Entities, e)
	}
	for _, r := range relationships {
		out.Relationships = append(out.Relationships, r)
	}
	return out, nil
}

// CreateEntities implements Provider, upserting by (scopeId, lowercased
// name) via MERGE on a derived nameKey property (invariant 2/3).
func (p *Neo4jProvider) CreateEntities(ctx context.Context, batch []domain.Entity, embeddings [][]float32) ([]domain.Entity, error) {
	if len(embeddings) > 0 && len(embeddings) != len(batch) {
		return nil, NewFailure("createEntities", "embeddings length must match batch length or be empty", nil)
	}

	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	out := make([]domain.Entity, 0, len(batch))
	err := p.breaker.Call(ctx, func(ctx context.Context) error {
		_, txErr := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			for i, e := range batch {
				label := sanitizeLabel(e.Label)
				scopeID := scopeOf(e.Properties)
				name, _ := e.Properties["name"].(string)
				props := cloneProps(e.Properties)
				if len(embeddings) == len(batch) && embeddings[i] != nil {
					props[domain.PropEmbedding] = toFloat64Slice(embeddings[i])
				}
				id := e.ID
				if id == "" {
					id = newID()
				}
				delete(props, "name")
				cypher := fmt.Sprintf(`MERGE (n:%s:%s {scopeId: $scopeId, nameKey: $nameKey})
				           ON CREATE SET n.id = $id, n.name = $name, n += $props
				           ON MATCH SET n.name = $name, n += $props
				           RETURN n`, label, baseEntityLabel)
				result, err := tx.Run(ctx, cypher, map[string]any{
					"scopeId": scopeID, "nameKey": domain.NormalizeEntityName(name),
					"id": id, "name": name, "props": props,
				})
				if err != nil {
					return nil, err
				}
				if !result.Next(ctx) {
					continue
				}
				node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "n")
				if err != nil {
					return nil, err
				}
				out = append(out, entityFromNode(node))
			}
			return nil, nil
		})
		return txErr
	})
	if err != nil {
		return nil, NewFailure("createEntities", "failed to create entities", err)
	}
	return out, nil
}

// FindEntityByName implements Provider.
func (p *Neo4jProvider) FindEntityByName(ctx context.Context, name, scopeID string) (domain.Entity, bool, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`MATCH (n:%s {scopeId: $scopeId, nameKey: $nameKey}) RETURN n LIMIT 1`, baseEntityLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"scopeId": scopeID, "nameKey": domain.NormalizeEntityName(name)})
	if err != nil {
		return domain.Entity{}, false, NewFailure("findEntityByName", "query failed", err)
	}
	if !result.Next(ctx) {
		return domain.Entity{}, false, nil
	}
	node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "n")
	if err != nil {
		return domain.Entity{}, false, NewFailure("findEntityByName", "decode failed", err)
	}
	return entityFromNode(node), true, nil
}

// FindEntityByID implements Provider.
func (p *Neo4jProvider) FindEntityByID(ctx context.Context, id, scopeID string) (domain.Entity, bool, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`MATCH (n:%s {id: $id}) WHERE $scopeId = '' OR n.scopeId = $scopeId RETURN n LIMIT 1`, baseEntityLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id, "scopeId": scopeID})
	if err != nil {
		return domain.Entity{}, false, NewFailure("findEntityByID", "query failed", err)
	}
	if !result.Next(ctx) {
		return domain.Entity{}, false, nil
	}
	node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "n")
	if err != nil {
		return domain.Entity{}, false, NewFailure("findEntityByID", "decode failed", err)
	}
	return entityFromNode(node), true, nil
}

// UpdateEntity implements Provider. Callers must already have scrubbed
// immutable keys (invariant 8); this method additionally enforces it.
func (p *Neo4jProvider) UpdateEntity(ctx context.Context, id string, props map[string]any, scopeID string) (domain.Entity, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`MATCH (n:%s {id: $id}) WHERE $scopeId = '' OR n.scopeId = $scopeId
	           SET n += $props RETURN n`, baseEntityLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{
		"id": id, "scopeId": scopeID, "props": domain.ScrubUpdateProperties(props),
	})
	if err != nil {
		return domain.Entity{}, NewFailure("updateEntity", "update failed", err)
	}
	if !result.Next(ctx) {
		return domain.Entity{}, NewNotFound("updateEntity", fmt.Sprintf("entity %s not found", id))
	}
	node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "n")
	if err != nil {
		return domain.Entity{}, NewFailure("updateEntity", "decode failed", err)
	}
	return entityFromNode(node), nil
}

// UpdateEntityContextIDs implements Provider (invariant 4).
func (p *Neo4jProvider) UpdateEntityContextIDs(ctx context.Context, id, contextID string) error {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`MATCH (n:%s {id: $id})
	           SET n.contextIds = CASE WHEN n.contextIds IS NULL THEN [$contextId]
	                                    WHEN $contextId IN n.contextIds THEN n.contextIds
	                                    ELSE n.contextIds + $contextId END
	           RETURN n`, baseEntityLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id, "contextId": contextID})
	if err != nil {
		return NewFailure("updateEntityContextIds", "update failed", err)
	}
	if !result.Next(ctx) {
		return NewNotFound("updateEntityContextIds", fmt.Sprintf("entity %s not found", id))
	}
	return nil
}

// DeleteEntity implements Provider. DETACH DELETE removes incident
// relationships (including CONTAINS_ENTITY links from documents), giving
// invariant 9's cascade for free.
func (p *Neo4jProvider) DeleteEntity(ctx context.Context, id, scopeID string) (DeleteResult, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`MATCH (n:%s {id: $id}) WHERE $scopeId = '' OR n.scopeId = $scopeId
	           DETACH DELETE n RETURN count(n) AS deleted`, baseEntityLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id, "scopeId": scopeID})
	if err != nil {
		return DeleteResult{}, NewFailure("deleteEntity", "delete failed", err)
	}
	if !result.Next(ctx) {
		return DeleteResult{}, NewNotFound("deleteEntity", fmt.Sprintf("entity %s not found", id))
	}
	count, _, _ := neo4j.GetRecordValue[int64](result.Record(), "deleted")
	if count == 0 {
		return DeleteResult{}, NewNotFound("deleteEntity", fmt.Sprintf("entity %s not found", id))
	}
	return DeleteResult{Deleted: true, Message: fmt.Sprintf("entity %s deleted", id)}, nil
}

// ListEntities implements Provider.
func (p *Neo4jProvider) ListEntities(ctx context.Context, opts EntityListOpts) ([]domain.Entity, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	label := baseEntityLabel
	if opts.Label != "" {
		label = sanitizeLabel(opts.Label)
	}
	limit, offset := normalizePage(opts.Limit, opts.Offset)

	cypher := fmt.Sprintf(`MATCH (n:%s) WHERE $scopeId = '' OR n.scopeId = $scopeId
	           RETURN n ORDER BY n.id SKIP $offset LIMIT $limit`, label)
	result, err := sess.Run(ctx, cypher, map[string]any{"scopeId": opts.ScopeID, "offset": offset, "limit": limit})
	if err != nil {
		return nil, NewFailure("listEntities", "query failed", err)
	}

	var out []domain.Entity
	for result.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "n")
		if err != nil {
			continue
		}
		out = append(out, entityFromNode(node))
	}
	return out, nil
}

// CreateRelationships implements Provider, rejecting self-references and
// deduplicating by (scopeId, from, to, type) via MERGE (invariant 5).
func (p *Neo4jProvider) CreateRelationships(ctx context.Context, batch []domain.Relationship) ([]domain.Relationship, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	out := make([]domain.Relationship, 0, len(batch))
	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, r := range batch {
			if r.From == r.To {
				return nil, fmt.Errorf("self-referential relationship rejected: %s", r.From)
			}
			scopeID := scopeOf(r.Properties)
			relType := sanitizeRelType(r.Type)
			id := r.ID
			if id == "" {
				id = newID()
			}
			props := cloneProps(r.Properties)
			contextIDs, _ := props[domain.PropContextIDs].([]string)

			cypher := fmt.Sprintf(`MATCH (a:%s {id: $from, scopeId: $scopeId}), (b:%s {id: $to, scopeId: $scopeId})
			           MERGE (a)-[rel:%s {scopeId: $scopeId}]->(b)
			           ON CREATE SET rel.id = $id, rel += $props
			           ON MATCH SET rel.contextIds = coalesce(rel.contextIds, []) + [x IN $contextIds WHERE NOT x IN coalesce(rel.contextIds, [])]
			           RETURN rel, a.id AS fromID, b.id AS toID`,
				baseEntityLabel, baseEntityLabel, relType)
			result, err := tx.Run(ctx, cypher, map[string]any{
				"from": r.From, "to": r.To, "scopeId": scopeID, "id": id, "props": props, "contextIds": contextIDs,
			})
			if err != nil {
				return nil, err
			}
			if !result.Next(ctx) {
				return nil, fmt.Errorf("relationship endpoints not found in scope %s: %s -> %s", scopeID, r.From, r.To)
			}
			out = append(out, relationshipFromRecord(result.Record()))
		}
		return nil, nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "self-referential") {
			return nil, NewFailure("createRelationships", err.Error(), nil)
		}
		return nil, NewFailure("createRelationships", "failed to create relationships", err)
	}
	return out, nil
}

// FindRelationshipByID implements Provider.
func (p *Neo4jProvider) FindRelationshipByID(ctx context.Context, id, scopeID string) (domain.Relationship, bool, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (a)-[rel {id: $id}]->(b) WHERE $scopeId = '' OR rel.scopeId = $scopeId
	           RETURN rel, a.id AS fromID, b.id AS toID LIMIT 1`
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id, "scopeId": scopeID})
	if err != nil {
		return domain.Relationship{}, false, NewFailure("findRelationshipByID", "query failed", err)
	}
	if !result.Next(ctx) {
		return domain.Relationship{}, false, nil
	}
	return relationshipFromRecord(result.Record()), true, nil
}

// UpdateRelationship implements Provider.
func (p *Neo4jProvider) UpdateRelationship(ctx context.Context, id string, props map[string]any, scopeID string) (domain.Relationship, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (a)-[rel {id: $id}]->(b) WHERE $scopeId = '' OR rel.scopeId = $scopeId
	           SET rel += $props RETURN rel, a.id AS fromID, b.id AS toID`
	result, err := sess.Run(ctx, cypher, map[string]any{
		"id": id, "scopeId": scopeID, "props": domain.ScrubUpdateProperties(props),
	})
	if err != nil {
		return domain.Relationship{}, NewFailure("updateRelationship", "update failed", err)
	}
	if !result.Next(ctx) {
		return domain.Relationship{}, NewNotFound("updateRelationship", fmt.Sprintf("relationship %s not found", id))
	}
	return relationshipFromRecord(result.Record()), nil
}

// DeleteRelationship implements Provider.
func (p *Neo4jProvider) DeleteRelationship(ctx context.Context, id, scopeID string) (DeleteResult, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH ()-[rel {id: $id}]->() WHERE $scopeId = '' OR rel.scopeId = $scopeId
	           DELETE rel RETURN count(rel) AS deleted`
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id, "scopeId": scopeID})
	if err != nil {
		return DeleteResult{}, NewFailure("deleteRelationship", "delete failed", err)
	}
	if !result.Next(ctx) {
		return DeleteResult{}, NewNotFound("deleteRelationship", fmt.Sprintf("relationship %s not found", id))
	}
	count, _, _ := neo4j.GetRecordValue[int64](result.Record(), "deleted")
	if count == 0 {
		return DeleteResult{}, NewNotFound("deleteRelationship", fmt.Sprintf("relationship %s not found", id))
	}
	return DeleteResult{Deleted: true, Message: fmt.Sprintf("relationship %s deleted", id)}, nil
}

// ListRelationships implements Provider.
func (p *Neo4jProvider) ListRelationships(ctx context.Context, opts RelationshipListOpts) ([]domain.Relationship, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	pattern := "(a)-[rel]->(b)"
	if opts.Type != "" {
		pattern = fmt.Sprintf("(a)-[rel:%s]->(b)", sanitizeRelType(opts.Type))
	}
	limit, offset := normalizePage(opts.Limit, opts.Offset)

	cypher := fmt.Sprintf(`MATCH %s
	           WHERE ($scopeId = '' OR rel.scopeId = $scopeId)
	             AND ($fromId = '' OR a.id = $fromId)
	             AND ($toId = '' OR b.id = $toId)
	           RETURN rel, a.id AS fromID, b.id AS toID ORDER BY rel.id SKIP $offset LIMIT $limit`, pattern)
	result, err := sess.Run(ctx, cypher, map[string]any{
		"scopeId": opts.ScopeID, "fromId": opts.FromID, "toId": opts.ToID, "offset": offset, "limit": limit,
	})
	if err != nil {
		return nil, NewFailure("listRelationships", "query failed", err)
	}

	var out []domain.Relationship
	for result.Next(ctx) {
		out = append(out, relationshipFromRecord(result.Record()))
	}
	return out, nil
}

// CreateDocument implements Provider, deduping on (scopeId, text)
// (invariant 1) via MERGE on the scopeId and text properties themselves.
func (p *Neo4jProvider) CreateDocument(ctx context.Context, doc domain.Document, embedding []float32) (domain.Document, bool, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	id := doc.ID
	if id == "" {
		id = newID()
	}
	props := documentToProps(doc)
	props[domain.PropEmbedding] = toFloat64Slice(embedding)

	cypher := fmt.Sprintf(`MERGE (d:%s {scopeId: $scopeId, text: $text})
	           ON CREATE SET d.id = $id, d += $props, d._created = true
	           RETURN d, d._created AS created`, domain.DocumentLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{
		"scopeId": doc.ScopeID, "text": doc.Text, "id": id, "props": props,
	})
	if err != nil {
		return domain.Document{}, false, NewFailure("createDocument", "create failed", err)
	}
	if !result.Next(ctx) {
		return domain.Document{}, false, NewFailure("createDocument", "no result returned", nil)
	}
	node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "d")
	if err != nil {
		return domain.Document{}, false, NewFailure("createDocument", "decode failed", err)
	}
	created := node.Props["_created"] != nil

	stripInternalFlag(ctx, sess, domain.DocumentLabel, node.Props["id"])
	delete(node.Props, "_created")
	return documentFromNode(node), created, nil
}

// stripInternalFlag removes the transient _created marker used to detect
// whether CreateDocument's MERGE hit the ON CREATE branch.
func stripInternalFlag(ctx context.Context, sess neo4j.SessionWithContext, label string, id any) {
	cypher := fmt.Sprintf(`MATCH (d:%s {id: $id}) REMOVE d._created`, label)
	_, _ = sess.Run(ctx, cypher, map[string]any{"id": id})
}

// FindDocumentByText implements Provider.
func (p *Neo4jProvider) FindDocumentByText(ctx context.Context, text, scopeID string) (domain.Document, bool, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`MATCH (d:%s {scopeId: $scopeId, text: $text}) RETURN d LIMIT 1`, domain.DocumentLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"scopeId": scopeID, "text": text})
	if err != nil {
		return domain.Document{}, false, NewFailure("findDocumentByText", "query failed", err)
	}
	if !result.Next(ctx) {
		return domain.Document{}, false, nil
	}
	node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "d")
	if err != nil {
		return domain.Document{}, false, NewFailure("findDocumentByText", "decode failed", err)
	}
	return documentFromNode(node), true, nil
}

// FindDocumentByID implements Provider.
func (p *Neo4jProvider) FindDocumentByID(ctx context.Context, id, scopeID string) (domain.Document, bool, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`MATCH (d:%s {id: $id}) WHERE $scopeId = '' OR d.scopeId = $scopeId RETURN d LIMIT 1`, domain.DocumentLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id, "scopeId": scopeID})
	if err != nil {
		return domain.Document{}, false, NewFailure("findDocumentByID", "query failed", err)
	}
	if !result.Next(ctx) {
		return domain.Document{}, false, nil
	}
	node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "d")
	if err != nil {
		return domain.Document{}, false, NewFailure("findDocumentByID", "decode failed", err)
	}
	return documentFromNode(node), true, nil
}

// UpdateDocument implements Provider. Only metadata is mutable through this
// surface; text/scopeId/embedding are immutable on update (invariant 8).
func (p *Neo4jProvider) UpdateDocument(ctx context.Context, id string, props map[string]any, scopeID string) (domain.Document, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	scrubbed := domain.ScrubUpdateProperties(props)
	metaProps := map[string]any{}
	if meta, ok := scrubbed["metadata"].(map[string]any); ok {
		for k, v := range meta {
			metaProps[metadataPropPrefix+k] = v
		}
	}

	cypher := fmt.Sprintf(`MATCH (d:%s {id: $id}) WHERE $scopeId = '' OR d.scopeId = $scopeId
	           SET d += $props RETURN d`, domain.DocumentLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id, "scopeId": scopeID, "props": metaProps})
	if err != nil {
		return domain.Document{}, NewFailure("updateDocument", "update failed", err)
	}
	if !result.Next(ctx) {
		return domain.Document{}, NewNotFound("updateDocument", fmt.Sprintf("document %s not found", id))
	}
	node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "d")
	if err != nil {
		return domain.Document{}, NewFailure("updateDocument", "decode failed", err)
	}
	return documentFromNode(node), nil
}

// UpdateDocumentContextIDs implements Provider (invariant 4).
func (p *Neo4jProvider) UpdateDocumentContextIDs(ctx context.Context, id, contextID string) error {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`MATCH (d:%s {id: $id})
	           SET d.contextIds = CASE WHEN d.contextIds IS NULL THEN [$contextId]
	                                    WHEN $contextId IN d.contextIds THEN d.contextIds
	                                    ELSE d.contextIds + $contextId END
	           RETURN d`, domain.DocumentLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id, "contextId": contextID})
	if err != nil {
		return NewFailure("updateDocumentContextIds", "update failed", err)
	}
	if !result.Next(ctx) {
		return NewNotFound("updateDocumentContextIds", fmt.Sprintf("document %s not found", id))
	}
	return nil
}

// DeleteDocument implements Provider. DETACH DELETE removes CONTAINS_ENTITY
// links to its entities as part of the same cascade as DeleteEntity.
func (p *Neo4jProvider) DeleteDocument(ctx context.Context, id, scopeID string) (DeleteResult, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`MATCH (d:%s {id: $id}) WHERE $scopeId = '' OR d.scopeId = $scopeId
	           DETACH DELETE d RETURN count(d) AS deleted`, domain.DocumentLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id, "scopeId": scopeID})
	if err != nil {
		return DeleteResult{}, NewFailure("deleteDocument", "delete failed", err)
	}
	if !result.Next(ctx) {
		return DeleteResult{}, NewNotFound("deleteDocument", fmt.Sprintf("document %s not found", id))
	}
	count, _, _ := neo4j.GetRecordValue[int64](result.Record(), "deleted")
	if count == 0 {
		return DeleteResult{}, NewNotFound("deleteDocument", fmt.Sprintf("document %s not found", id))
	}
	return DeleteResult{Deleted: true, Message: fmt.Sprintf("document %s deleted", id)}, nil
}

// ListDocuments implements Provider.
func (p *Neo4jProvider) ListDocuments(ctx context.Context, opts ListOpts) ([]domain.Document, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	limit, offset := normalizePage(opts.Limit, opts.Offset)
	cypher := fmt.Sprintf(`MATCH (d:%s) WHERE $scopeId = '' OR d.scopeId = $scopeId
	           RETURN d ORDER BY d.id SKIP $offset LIMIT $limit`, domain.DocumentLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"scopeId": opts.ScopeID, "offset": offset, "limit": limit})
	if err != nil {
		return nil, NewFailure("listDocuments", "query failed", err)
	}

	var out []domain.Document
	for result.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "d")
		if err != nil {
			continue
		}
		out = append(out, documentFromNode(node))
	}
	return out, nil
}

// LinkEntityToDocument implements Provider, MERGE-ing a CONTAINS_ENTITY edge
// so repeated ingestion of the same document/entity pair is idempotent.
func (p *Neo4jProvider) LinkEntityToDocument(ctx context.Context, docID, entityID, scopeID string) (domain.Relationship, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`MATCH (doc:%s {id: $docId}), (e:%s {id: $entityId})
	           MERGE (doc)-[rel:%s {scopeId: $scopeId}]->(e)
	           ON CREATE SET rel.id = $id
	           RETURN rel, doc.id AS fromID, e.id AS toID`,
		domain.DocumentLabel, baseEntityLabel, ContainsEntityRelType)
	result, err := sess.Run(ctx, cypher, map[string]any{
		"docId": docID, "entityId": entityID, "scopeId": scopeID, "id": newID(),
	})
	if err != nil {
		return domain.Relationship{}, NewFailure("linkEntityToDocument", "link failed", err)
	}
	if !result.Next(ctx) {
		return domain.Relationship{}, NewFailure("linkEntityToDocument", fmt.Sprintf("document %s or entity %s not found", docID, entityID), nil)
	}
	return relationshipFromRecord(result.Record()), nil
}

// GetEntitiesFromDocuments implements Provider.
func (p *Neo4jProvider) GetEntitiesFromDocuments(ctx context.Context, documentIDs []string, scopeID string) ([]domain.Entity, error) {
	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(`MATCH (doc:%s)-[rel:%s]->(e:%s)
	           WHERE doc.id IN $docIds AND ($scopeId = '' OR rel.scopeId = $scopeId)
	           RETURN DISTINCT e`, domain.DocumentLabel, ContainsEntityRelType, baseEntityLabel)
	result, err := sess.Run(ctx, cypher, map[string]any{"docIds": documentIDs, "scopeId": scopeID})
	if err != nil {
		return nil, NewFailure("getEntitiesFromDocuments", "query failed", err)
	}

	var out []domain.Entity
	for result.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "e")
		if err != nil {
			continue
		}
		out = append(out, entityFromNode(node))
	}
	return out, nil
}
