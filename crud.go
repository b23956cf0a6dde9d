package akasha

import (
	"context"

	"github.com/Glossick/akasha-sub001/engine/domain"
	"github.com/Glossick/akasha-sub001/engine/events"
	"github.com/Glossick/akasha-sub001/engine/graph"
	"github.com/Glossick/akasha-sub001/engine/respond"
)

// DefaultListLimit and DefaultListOffset are spec.md §4.11's pagination
// defaults, applied whenever a caller leaves Limit/Offset unset.
const (
	DefaultListLimit  = 100
	DefaultListOffset = 0
)

// DeleteResult is returned by every delete method.
type DeleteResult = graph.DeleteResult

// EntityListOptions paginates and filters ListEntities.
type EntityListOptions struct {
	Limit  int
	Offset int
	Label  string
}

func (o EntityListOptions) toProviderOpts(scopeID string) graph.EntityListOpts {
	limit, offset := o.Limit, o.Offset
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = DefaultListOffset
	}
	return graph.EntityListOpts{
		ListOpts: graph.ListOpts{Limit: limit, Offset: offset, ScopeID: scopeID},
		Label:    o.Label,
	}
}

// RelationshipListOptions paginates and filters ListRelationships.
type RelationshipListOptions struct {
	Limit  int
	Offset int
	Type   string
	FromID string
	ToID   string
}

func (o RelationshipListOptions) toProviderOpts(scopeID string) graph.RelationshipListOpts {
	limit, offset := o.Limit, o.Offset
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = DefaultListOffset
	}
	return graph.RelationshipListOpts{
		ListOpts: graph.ListOpts{Limit: limit, Offset: offset, ScopeID: scopeID},
		Type:     o.Type,
		FromID:   o.FromID,
		ToID:     o.ToID,
	}
}

// DocumentListOptions paginates ListDocuments.
type DocumentListOptions struct {
	Limit  int
	Offset int
}

func (o DocumentListOptions) toProviderOpts(scopeID string) graph.ListOpts {
	limit, offset := o.Limit, o.Offset
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = DefaultListOffset
	}
	return graph.ListOpts{Limit: limit, Offset: offset, ScopeID: scopeID}
}

// CreateEntity persists a single entity tagged with this instance's scope.
// vector is the entity's precomputed embedding; pass nil to skip embedding
// (the entity then never surfaces in vector search).
func (a *Akasha) CreateEntity(ctx context.Context, label string, properties map[string]any, vector []float32) (domain.Entity, error) {
	props := domain.ScrubUpdateProperties(properties)
	props[domain.PropScopeID] = a.ScopeID()
	stored, err := a.graph.CreateEntities(ctx, []domain.Entity{{Label: label, Properties: props}}, wrapVector(vector))
	if err != nil {
		return domain.Entity{}, err
	}
	return respond.ScrubEntity(stored[0]), nil
}

// FindEntity retrieves one entity by id, scoped to this instance.
func (a *Akasha) FindEntity(ctx context.Context, id string) (domain.Entity, error) {
	e, ok, err := a.graph.FindEntityByID(ctx, id, a.ScopeID())
	if err != nil {
		return domain.Entity{}, err
	}
	if !ok {
		return domain.Entity{}, graph.NewNotFound("akasha.FindEntity", "entity not found")
	}
	return respond.ScrubEntity(e), nil
}

// UpdateEntity merges properties into an existing entity; reserved keys
// (invariant 8) are dropped silently by the underlying provider.
func (a *Akasha) UpdateEntity(ctx context.Context, id string, properties map[string]any) (domain.Entity, error) {
	e, err := a.graph.UpdateEntity(ctx, id, properties, a.ScopeID())
	if err != nil {
		return domain.Entity{}, err
	}
	a.emitIfEnabled(events.EntityUpdated, e)
	return respond.ScrubEntity(e), nil
}

// DeleteEntity removes an entity and cascades to its incident relationships
// and document links, per invariant 9.
func (a *Akasha) DeleteEntity(ctx context.Context, id string) (DeleteResult, error) {
	res, err := a.graph.DeleteEntity(ctx, id, a.ScopeID())
	if err != nil {
		return DeleteResult{}, err
	}
	if res.Deleted {
		a.emitIfEnabled(events.EntityDeleted, id)
	}
	return res, nil
}

// ListEntities paginates entities in this instance's scope.
func (a *Akasha) ListEntities(ctx context.Context, opts EntityListOptions) ([]domain.Entity, error) {
	entities, err := a.graph.ListEntities(ctx, opts.toProviderOpts(a.ScopeID()))
	if err != nil {
		return nil, err
	}
	return respond.ScrubEntities(entities), nil
}

// CreateRelationship persists a relationship between two entities already
// in this instance's scope.
func (a *Akasha) CreateRelationship(ctx context.Context, relType, fromID, toID string, properties map[string]any) (domain.Relationship, error) {
	props := domain.ScrubUpdateProperties(properties)
	props[domain.PropScopeID] = a.ScopeID()
	stored, err := a.graph.CreateRelationships(ctx, []domain.Relationship{{Type: relType, From: fromID, To: toID, Properties: props}})
	if err != nil {
		return domain.Relationship{}, err
	}
	return respond.ScrubRelationship(stored[0]), nil
}

// FindRelationship retrieves one relationship by id, scoped to this instance.
func (a *Akasha) FindRelationship(ctx context.Context, id string) (domain.Relationship, error) {
	r, ok, err := a.graph.FindRelationshipByID(ctx, id, a.ScopeID())
	if err != nil {
		return domain.Relationship{}, err
	}
	if !ok {
		return domain.Relationship{}, graph.NewNotFound("akasha.FindRelationship", "relationship not found")
	}
	return respond.ScrubRelationship(r), nil
}

// UpdateRelationship merges properties into an existing relationship.
func (a *Akasha) UpdateRelationship(ctx context.Context, id string, properties map[string]any) (domain.Relationship, error) {
	r, err := a.graph.UpdateRelationship(ctx, id, properties, a.ScopeID())
	if err != nil {
		return domain.Relationship{}, err
	}
	a.emitIfEnabled(events.RelationshipUpdated, r)
	return respond.ScrubRelationship(r), nil
}

// DeleteRelationship removes a relationship.
func (a *Akasha) DeleteRelationship(ctx context.Context, id string) (DeleteResult, error) {
	res, err := a.graph.DeleteRelationship(ctx, id, a.ScopeID())
	if err != nil {
		return DeleteResult{}, err
	}
	if res.Deleted {
		a.emitIfEnabled(events.RelationshipDeleted, id)
	}
	return res, nil
}

// ListRelationships paginates relationships in this instance's scope.
func (a *Akasha) ListRelationships(ctx context.Context, opts RelationshipListOptions) ([]domain.Relationship, error) {
	rels, err := a.graph.ListRelationships(ctx, opts.toProviderOpts(a.ScopeID()))
	if err != nil {
		return nil, err
	}
	return respond.ScrubRelationships(rels), nil
}

// FindDocument retrieves one document by id, scoped to this instance.
func (a *Akasha) FindDocument(ctx context.Context, id string) (domain.Document, error) {
	d, ok, err := a.graph.FindDocumentByID(ctx, id, a.ScopeID())
	if err != nil {
		return domain.Document{}, err
	}
	if !ok {
		return domain.Document{}, graph.NewNotFound("akasha.FindDocument", "document not found")
	}
	return respond.ScrubDocument(d), nil
}

// UpdateDocument merges properties into an existing document's metadata.
func (a *Akasha) UpdateDocument(ctx context.Context, id string, properties map[string]any) (domain.Document, error) {
	d, err := a.graph.UpdateDocument(ctx, id, properties, a.ScopeID())
	if err != nil {
		return domain.Document{}, err
	}
	a.emitIfEnabled(events.DocumentUpdated, d)
	return respond.ScrubDocument(d), nil
}

// DeleteDocument removes a document and its CONTAINS_ENTITY links, per
// invariant 9. Linked entities themselves are not deleted.
func (a *Akasha) DeleteDocument(ctx context.Context, id string) (DeleteResult, error) {
	res, err := a.graph.DeleteDocument(ctx, id, a.ScopeID())
	if err != nil {
		return DeleteResult{}, err
	}
	if res.Deleted {
		a.emitIfEnabled(events.DocumentDeleted, id)
	}
	return res, nil
}

// ListDocuments paginates documents in this instance's scope.
func (a *Akasha) ListDocuments(ctx context.Context, opts DocumentListOptions) ([]domain.Document, error) {
	docs, err := a.graph.ListDocuments(ctx, opts.toProviderOpts(a.ScopeID()))
	if err != nil {
		return nil, err
	}
	return respond.ScrubDocuments(docs), nil
}

func (a *Akasha) emitIfEnabled(eventType events.Type, payload any) {
	if a.events == nil {
		return
	}
	a.events.Emit(eventType, a.ScopeID(), payload)
}

func wrapVector(v []float32) [][]float32 {
	if v == nil {
		return nil
	}
	return [][]float32{v}
}
