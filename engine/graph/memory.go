package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Glossick/akasha-sub001/engine/domain"
)

var _ Provider = (*MemoryProvider)(nil)

// MemoryProvider is an in-memory DatabaseProvider. It honours the same
// invariants as the Neo4j-backed implementation and is used by the core's
// own tests and by callers who want a zero-dependency starting point.
type MemoryProvider struct {
	mu sync.RWMutex

	entities     map[string]domain.Entity
	entityByName map[string]string // scopeID + "\x00" + lowercased name -> id

	relationships map[string]domain.Relationship
	relByKey      map[string]string // scopeID + "\x00" + from + "\x00" + to + "\x00" + type -> id

	documents    map[string]domain.Document
	docByText    map[string]string // scopeID + "\x00" + text -> id
	connected    bool
	dimensionsOK int
}

// NewMemory constructs an empty MemoryProvider.
func NewMemory() *MemoryProvider {
	return &MemoryProvider{
		entities:      make(map[string]domain.Entity),
		entityByName:  make(map[string]string),
		relationships: make(map[string]domain.Relationship),
		relByKey:      make(map[string]string),
		documents:     make(map[string]domain.Document),
		docByText:     make(map[string]string),
	}
}

func nameKey(scopeID, name string) string {
	return scopeID + "\x00" + domain.NormalizeEntityName(name)
}

func relKey(scopeID, from, to, relType string) string {
	return scopeID + "\x00" + from + "\x00" + to + "\x00" + relType
}

func docKey(scopeID, text string) string {
	return scopeID + "\x00" + text
}

// Connect implements Provider.
func (m *MemoryProvider) Connect(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

// Disconnect implements Provider.
func (m *MemoryProvider) Disconnect(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// EnsureVectorIndex implements Provider. There is no real index to create
// in-memory; this only records the expected dimensionality. Inserted
// vectors are not checked against it.
func (m *MemoryProvider) EnsureVectorIndex(_ context.Context, dimensions int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimensionsOK = dimensions
	return nil
}

// Ping implements Provider.
func (m *MemoryProvider) Ping(_ context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// FindEntitiesByVector implements Provider.
func (m *MemoryProvider) FindEntitiesByVector(_ context.Context, opts VectorSearchOpts) ([]domain.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		entity domain.Entity
		sim    float64
	}
	var candidates []scored
	for _, e := range m.entities {
		if !entityMatchesFilters(e, opts.ScopeID, opts.Contexts, opts.ValidAt) {
			continue
		}
		vec, ok := e.Properties[domain.PropEmbedding].([]float32)
		if !ok {
			continue
		}
		sim := cosineSimilarity(vec, opts.Query)
		if sim < opts.SimilarityThreshold {
			continue
		}
		candidates = append(candidates, scored{entity: cloneEntity(e), sim: sim})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].sim > candidates[j].sim })

	limit := opts.Limit
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	out := make([]domain.Entity, limit)
	for i := 0; i < limit; i++ {
		e := candidates[i].entity
		e.Properties[domain.PropSimilarity] = candidates[i].sim
		out[i] = e
	}
	return out, nil
}

// FindDocumentsByVector implements Provider.
func (m *MemoryProvider) FindDocumentsByVector(_ context.Context, opts VectorSearchOpts) ([]domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		doc domain.Document
		sim float64
	}
	var candidates []scored
	for _, d := range m.documents {
		if !documentMatchesFilters(d, opts.ScopeID, opts.Contexts, opts.ValidAt) {
			continue
		}
		sim := cosineSimilarity(d.Embedding, opts.Query)
		if sim < opts.SimilarityThreshold {
			continue
		}
		candidates = append(candidates, scored{doc: cloneDocument(d), sim: sim})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].sim > candidates[j].sim })

	limit := opts.Limit
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	out := make([]domain.Document, limit)
	for i := 0; i < limit; i++ {
		d := candidates[i].doc
		if d.Metadata == nil {
			d.Metadata = map[string]any{}
		}
		d.Metadata[domain.PropSimilarity] = candidates[i].sim
		out[i] = d
	}
	return out, nil
}

// RetrieveSubgraph implements Provider.
func (m *MemoryProvider) RetrieveSubgraph(_ context.Context, opts SubgraphOpts) (Subgraph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	depth := opts.MaxDepth
	if depth < 1 {
		depth = 1
	}
	if depth > 10 {
		depth = 10
	}

	labelOK := toSet(opts.EntityLabels)
	typeOK := toSet(opts.RelationshipTypes)

	visitedEntities := map[string]bool{}
	frontier := map[string]bool{}
	for _, id := range opts.StartEntityIDs {
		if e, ok := m.entities[id]; ok && scopeOf(e.Properties) == opts.ScopeID {
			visitedEntities[id] = true
			frontier[id] = true
		}
	}

	visitedRels := map[string]bool{}
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		next := map[string]bool{}
		for _, r := range m.relationships {
			if scopeOf(r.Properties) != opts.ScopeID {
				continue
			}
			if len(typeOK) > 0 && !typeOK[r.Type] {
				continue
			}
			fromIn, toIn := frontier[r.From], frontier[r.To]
			if !fromIn && !toIn {
				continue
			}
			other := r.To
			if toIn {
				other = r.From
			}
			oe, ok := m.entities[other]
			if !ok {
				continue
			}
			if len(labelOK) > 0 && !labelOK[oe.Label] {
				continue
			}
			visitedRels[r.ID] = true
			if !visitedEntities[other] {
				visitedEntities[other] = true
				next[other] = true
			}
		}
		frontier = next
	}

	limit := opts.Limit
	var entities []domain.Entity
	for id := range visitedEntities {
		if limit > 0 && len(entities) >= limit {
			break
		}
		entities = append(entities, cloneEntity(m.entities[id]))
	}
	var relationships []domain.Relationship
	for id := range visitedRels {
		if limit > 0 && len(relationships) >= limit {
			break
		}
		relationships = append(relationships, cloneRelationship(m.relationships[id]))
	}

	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
	sort.Slice(relationships, func(i, j int) bool { return relationships[i].ID < relationships[j].ID })

	return Subgraph{Entities: entities, Relationships: relationships}, nil
}

// CreateEntities implements Provider, upserting by (scopeId, lowercased name).
func (m *MemoryProvider) CreateEntities(_ context.Context, batch []domain.Entity, embeddings [][]float32) ([]domain.Entity, error) {
	if len(embeddings) > 0 && len(embeddings) != len(batch) {
		return nil, NewFailure("createEntities", "embeddings length must match batch length or be empty", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Entity, len(batch))
	for i, e := range batch {
		scopeID := scopeOf(e.Properties)
		name, _ := e.Properties["name"].(string)
		key := nameKey(scopeID, name)

		if existingID, ok := m.entityByName[key]; ok {
			existing := m.entities[existingID]
			for k, v := range e.Properties {
				if domain.IsImmutableOnUpdate(k) {
					continue
				}
				existing.Properties[k] = v
			}
			m.entities[existingID] = existing
			out[i] = cloneEntity(existing)
			continue
		}

		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		props := cloneProps(e.Properties)
		if len(embeddings) == len(batch) && embeddings[i] != nil {
			props[domain.PropEmbedding] = embeddings[i]
		}
		stored := domain.Entity{ID: id, Label: e.Label, Properties: props}
		m.entities[id] = stored
		m.entityByName[key] = id
		out[i] = cloneEntity(stored)
	}
	return out, nil
}

// FindEntityByName implements Provider.
func (m *MemoryProvider) FindEntityByName(_ context.Context, name, scopeID string) (domain.Entity, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.entityByName[nameKey(scopeID, name)]
	if !ok {
		return domain.Entity{}, false, nil
	}
	return cloneEntity(m.entities[id]), true, nil
}

// FindEntityByID implements Provider.
func (m *MemoryProvider) FindEntityByID(_ context.Context, id, scopeID string) (domain.Entity, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	if !ok || (scopeID != "" && scopeOf(e.Properties) != scopeID) {
		return domain.Entity{}, false, nil
	}
	return cloneEntity(e), true, nil
}

// UpdateEntity implements Provider, silently dropping immutable keys (invariant 8).
func (m *MemoryProvider) UpdateEntity(_ context.Context, id string, props map[string]any, scopeID string) (domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entities[id]
	if !ok {
		return domain.Entity{}, NewNotFound("updateEntity", fmt.Sprintf("entity %s not found", id))
	}
	if scopeID != "" && scopeOf(e.Properties) != scopeID {
		return domain.Entity{}, NewScopeViolation("updateEntity", fmt.Sprintf("entity %s is outside scope %s", id, scopeID))
	}
	for k, v := range domain.ScrubUpdateProperties(props) {
		e.Properties[k] = v
	}
	m.entities[id] = e
	return cloneEntity(e), nil
}

// UpdateEntityContextIDs implements Provider, appending contextID to the
// entity's contextIds set (invariant 4: append-only, unique).
func (m *MemoryProvider) UpdateEntityContextIDs(_ context.Context, id, contextID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entities[id]
	if !ok {
		return NewNotFound("updateEntityContextIds", fmt.Sprintf("entity %s not found", id))
	}
	existing, _ := e.Properties[domain.PropContextIDs].([]string)
	e.Properties[domain.PropContextIDs] = lo.Uniq(append(existing, contextID))
	m.entities[id] = e
	return nil
}

// DeleteEntity implements Provider, cascading to incident relationships
// (invariant 9).
func (m *MemoryProvider) DeleteEntity(_ context.Context, id, scopeID string) (DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entities[id]
	if !ok {
		return DeleteResult{}, NewNotFound("deleteEntity", fmt.Sprintf("entity %s not found", id))
	}
	if scopeID != "" && scopeOf(e.Properties) != scopeID {
		return DeleteResult{}, NewScopeViolation("deleteEntity", fmt.Sprintf("entity %s is outside scope %s", id, scopeID))
	}

	for relID, r := range m.relationships {
		if r.From == id || r.To == id {
			delete(m.relationships, relID)
			delete(m.relByKey, relKey(scopeOf(r.Properties), r.From, r.To, r.Type))
		}
	}

	delete(m.entities, id)
	if name, _ := e.Properties["name"].(string); name != "" {
		delete(m.entityByName, nameKey(scopeOf(e.Properties), name))
	}
	return DeleteResult{Deleted: true, Message: fmt.Sprintf("entity %s deleted", id)}, nil
}

// ListEntities implements Provider.
func (m *MemoryProvider) ListEntities(_ context.Context, opts EntityListOpts) ([]domain.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []domain.Entity
	for _, e := range m.entities {
		if opts.ScopeID != "" && scopeOf(e.Properties) != opts.ScopeID {
			continue
		}
		if opts.Label != "" && e.Label != opts.Label {
			continue
		}
		matched = append(matched, cloneEntity(e))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginateEntities(matched, opts.Offset, opts.Limit), nil
}

// CreateRelationships implements Provider: rejects self-references,
// de-duplicates by (from, to, type) within scope (invariant 5).
func (m *MemoryProvider) CreateRelationships(_ context.Context, batch []domain.Relationship) ([]domain.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Relationship, 0, len(batch))
	for _, r := range batch {
		if r.From == r.To {
			return nil, NewFailure("createRelationships", fmt.Sprintf("self-referential relationship rejected: %s", r.From), nil)
		}
		scopeID := scopeOf(r.Properties)

		from, fromOK := m.entities[r.From]
		to, toOK := m.entities[r.To]
		if fromOK && scopeOf(from.Properties) != scopeID {
			return nil, NewScopeViolation("createRelationships", fmt.Sprintf("endpoint %s is outside scope %s", r.From, scopeID))
		}
		if toOK && scopeOf(to.Properties) != scopeID {
			return nil, NewScopeViolation("createRelationships", fmt.Sprintf("endpoint %s is outside scope %s", r.To, scopeID))
		}

		key := relKey(scopeID, r.From, r.To, r.Type)
		if existingID, ok := m.relByKey[key]; ok {
			existing := m.relationships[existingID]
			if newCtxIDs, _ := r.Properties[domain.PropContextIDs].([]string); len(newCtxIDs) > 0 {
				prevCtxIDs, _ := existing.Properties[domain.PropContextIDs].([]string)
				existing.Properties[domain.PropContextIDs] = lo.Uniq(append(prevCtxIDs, newCtxIDs...))
				m.relationships[existingID] = existing
			}
			out = append(out, cloneRelationship(existing))
			continue
		}

		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		stored := domain.Relationship{ID: id, Type: r.Type, From: r.From, To: r.To, Properties: cloneProps(r.Properties)}
		m.relationships[id] = stored
		m.relByKey[key] = id
		out = append(out, cloneRelationship(stored))
	}
	return out, nil
}

// FindRelationshipByID implements Provider.
func (m *MemoryProvider) FindRelationshipByID(_ context.Context, id, scopeID string) (domain.Relationship, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.relationships[id]
	if !ok || (scopeID != "" && scopeOf(r.Properties) != scopeID) {
		return domain.Relationship{}, false, nil
	}
	return cloneRelationship(r), true, nil
}

// UpdateRelationship implements Provider.
func (m *MemoryProvider) UpdateRelationship(_ context.Context, id string, props map[string]any, scopeID string) (domain.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.relationships[id]
	if !ok {
		return domain.Relationship{}, NewNotFound("updateRelationship", fmt.Sprintf("relationship %s not found", id))
	}
	if scopeID != "" && scopeOf(r.Properties) != scopeID {
		return domain.Relationship{}, NewScopeViolation("updateRelationship", fmt.Sprintf("relationship %s is outside scope %s", id, scopeID))
	}
	for k, v := range domain.ScrubUpdateProperties(props) {
		r.Properties[k] = v
	}
	m.relationships[id] = r
	return cloneRelationship(r), nil
}

// DeleteRelationship implements Provider.
func (m *MemoryProvider) DeleteRelationship(_ context.Context, id, scopeID string) (DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.relationships[id]
	if !ok {
		return DeleteResult{}, NewNotFound("deleteRelationship", fmt.Sprintf("relationship %s not found", id))
	}
	if scopeID != "" && scopeOf(r.Properties) != scopeID {
		return DeleteResult{}, NewScopeViolation("deleteRelationship", fmt.Sprintf("relationship %s is outside scope %s", id, scopeID))
	}
	delete(m.relationships, id)
	delete(m.relByKey, relKey(scopeOf(r.Properties), r.From, r.To, r.Type))
	return DeleteResult{Deleted: true, Message: fmt.Sprintf("relationship %s deleted", id)}, nil
}

// ListRelationships implements Provider.
func (m *MemoryProvider) ListRelationships(_ context.Context, opts RelationshipListOpts) ([]domain.Relationship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []domain.Relationship
	for _, r := range m.relationships {
		if opts.ScopeID != "" && scopeOf(r.Properties) != opts.ScopeID {
			continue
		}
		if opts.Type != "" && r.Type != opts.Type {
			continue
		}
		if opts.FromID != "" && r.From != opts.FromID {
			continue
		}
		if opts.ToID != "" && r.To != opts.ToID {
			continue
		}
		matched = append(matched, cloneRelationship(r))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginateRelationships(matched, opts.Offset, opts.Limit), nil
}

// CreateDocument implements Provider, deduping on (scopeId, text) (invariants 1-2).
func (m *MemoryProvider) CreateDocument(_ context.Context, doc domain.Document, embedding []float32) (domain.Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := docKey(doc.ScopeID, doc.Text)
	if existingID, ok := m.docByText[key]; ok {
		return cloneDocument(m.documents[existingID]), false, nil
	}

	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}
	stored := doc
	stored.ID = id
	stored.Embedding = append([]float32(nil), embedding...)
	m.documents[id] = stored
	m.docByText[key] = id
	return cloneDocument(stored), true, nil
}

// FindDocumentByText implements Provider.
func (m *MemoryProvider) FindDocumentByText(_ context.Context, text, scopeID string) (domain.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.docByText[docKey(scopeID, text)]
	if !ok {
		return domain.Document{}, false, nil
	}
	return cloneDocument(m.documents[id]), true, nil
}

// FindDocumentByID implements Provider.
func (m *MemoryProvider) FindDocumentByID(_ context.Context, id, scopeID string) (domain.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.documents[id]
	if !ok || (scopeID != "" && d.ScopeID != scopeID) {
		return domain.Document{}, false, nil
	}
	return cloneDocument(d), true, nil
}

// UpdateDocument implements Provider.
func (m *MemoryProvider) UpdateDocument(_ context.Context, id string, props map[string]any, scopeID string) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.documents[id]
	if !ok {
		return domain.Document{}, NewNotFound("updateDocument", fmt.Sprintf("document %s not found", id))
	}
	if scopeID != "" && d.ScopeID != scopeID {
		return domain.Document{}, NewScopeViolation("updateDocument", fmt.Sprintf("document %s is outside scope %s", id, scopeID))
	}
	scrubbed := domain.ScrubUpdateProperties(props)
	if meta, ok := scrubbed["metadata"].(map[string]any); ok {
		if d.Metadata == nil {
			d.Metadata = map[string]any{}
		}
		for k, v := range meta {
			d.Metadata[k] = v
		}
	}
	m.documents[id] = d
	return cloneDocument(d), nil
}

// UpdateDocumentContextIDs implements Provider (invariant 4).
func (m *MemoryProvider) UpdateDocumentContextIDs(_ context.Context, id, contextID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.documents[id]
	if !ok {
		return NewNotFound("updateDocumentContextIds", fmt.Sprintf("document %s not found", id))
	}
	d.ContextIDs = lo.Uniq(append(d.ContextIDs, contextID))
	m.documents[id] = d
	return nil
}

// DeleteDocument implements Provider, cascading to CONTAINS_ENTITY links.
func (m *MemoryProvider) DeleteDocument(_ context.Context, id, scopeID string) (DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.documents[id]
	if !ok {
		return DeleteResult{}, NewNotFound("deleteDocument", fmt.Sprintf("document %s not found", id))
	}
	if scopeID != "" && d.ScopeID != scopeID {
		return DeleteResult{}, NewScopeViolation("deleteDocument", fmt.Sprintf("document %s is outside scope %s", id, scopeID))
	}

	for relID, r := range m.relationships {
		if r.From == id && r.Type == ContainsEntityRelType {
			delete(m.relationships, relID)
			delete(m.relByKey, relKey(scopeOf(r.Properties), r.From, r.To, r.Type))
		}
	}

	delete(m.documents, id)
	delete(m.docByText, docKey(d.ScopeID, d.Text))
	return DeleteResult{Deleted: true, Message: fmt.Sprintf("document %s deleted", id)}, nil
}

// ListDocuments implements Provider.
func (m *MemoryProvider) ListDocuments(_ context.Context, opts ListOpts) ([]domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []domain.Document
	for _, d := range m.documents {
		if opts.ScopeID != "" && d.ScopeID != opts.ScopeID {
			continue
		}
		matched = append(matched, cloneDocument(d))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginateDocuments(matched, opts.Offset, opts.Limit), nil
}

// LinkEntityToDocument implements Provider, creating/merging a
// CONTAINS_ENTITY edge.
func (m *MemoryProvider) LinkEntityToDocument(_ context.Context, docID, entityID, scopeID string) (domain.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := relKey(scopeID, docID, entityID, ContainsEntityRelType)
	if existingID, ok := m.relByKey[key]; ok {
		return cloneRelationship(m.relationships[existingID]), nil
	}

	id := uuid.NewString()
	stored := domain.Relationship{
		ID:   id,
		Type: ContainsEntityRelType,
		From: docID,
		To:   entityID,
		Properties: map[string]any{
			domain.PropScopeID: scopeID,
		},
	}
	m.relationships[id] = stored
	m.relByKey[key] = id
	return cloneRelationship(stored), nil
}

// GetEntitiesFromDocuments implements Provider.
func (m *MemoryProvider) GetEntitiesFromDocuments(_ context.Context, documentIDs []string, scopeID string) ([]domain.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docSet := toSet(documentIDs)
	seen := map[string]bool{}
	var out []domain.Entity
	for _, r := range m.relationships {
		if r.Type != ContainsEntityRelType || !docSet[r.From] {
			continue
		}
		if scopeID != "" && scopeOf(r.Properties) != scopeID {
			continue
		}
		if seen[r.To] {
			continue
		}
		if e, ok := m.entities[r.To]; ok {
			seen[r.To] = true
			out = append(out, cloneEntity(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func scopeOf(props map[string]any) string {
	s, _ := props[domain.PropScopeID].(string)
	return s
}

func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[i] = true
	}
	return out
}

func entityMatchesFilters(e domain.Entity, scopeID string, contexts []string, validAt string) bool {
	if scopeID != "" && scopeOf(e.Properties) != scopeID {
		return false
	}
	ctxIDs, _ := e.Properties[domain.PropContextIDs].([]string)
	if !contextsMatch(ctxIDs, contexts) {
		return false
	}
	validFrom, _ := e.Properties[domain.PropValidFrom].(time.Time)
	validTo, hasValidTo := e.Properties[domain.PropValidTo].(time.Time)
	return validAtMatches(validFrom, validTo, hasValidTo, validAt)
}

func documentMatchesFilters(d domain.Document, scopeID string, contexts []string, validAt string) bool {
	if scopeID != "" && d.ScopeID != scopeID {
		return false
	}
	if !contextsMatch(d.ContextIDs, contexts) {
		return false
	}
	var validTo time.Time
	if d.ValidTo != nil {
		validTo = *d.ValidTo
	}
	return validAtMatches(d.ValidFrom, validTo, d.ValidTo != nil, validAt)
}

// contextsMatch implements spec.md P6: a record with contextIds absent
// matches for backward compatibility; a non-empty contextIds must
// intersect the filter.
func contextsMatch(recordContexts, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	if len(recordContexts) == 0 {
		return true
	}
	filterSet := toSet(filter)
	for _, c := range recordContexts {
		if filterSet[c] {
			return true
		}
	}
	return false
}

// validAtMatches implements spec.md P5: records with no temporal metadata
// are always valid; validAt is an RFC3339 timestamp, an unparsable or empty
// value disables the filter.
func validAtMatches(validFrom, validTo time.Time, hasValidTo bool, validAt string) bool {
	if validAt == "" {
		return true
	}
	at, err := time.Parse(time.RFC3339, validAt)
	if err != nil {
		return true
	}
	if !validFrom.IsZero() && validFrom.After(at) {
		return false
	}
	if hasValidTo && !validTo.IsZero() && !validTo.After(at) {
		return false
	}
	return true
}

func cloneProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

func cloneEntity(e domain.Entity) domain.Entity {
	return domain.Entity{ID: e.ID, Label: e.Label, Properties: cloneProps(e.Properties)}
}

func cloneRelationship(r domain.Relationship) domain.Relationship {
	return domain.Relationship{ID: r.ID, Type: r.Type, From: r.From, To: r.To, Properties: cloneProps(r.Properties)}
}

func cloneDocument(d domain.Document) domain.Document {
	out := d
	out.ContextIDs = append([]string(nil), d.ContextIDs...)
	out.Embedding = append([]float32(nil), d.Embedding...)
	out.Metadata = cloneProps(d.Metadata)
	return out
}

func paginateEntities(items []domain.Entity, offset, limit int) []domain.Entity {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func paginateRelationships(items []domain.Relationship, offset, limit int) []domain.Relationship {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func paginateDocuments(items []domain.Document, offset, limit int) []domain.Document {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
