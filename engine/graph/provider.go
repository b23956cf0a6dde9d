// Package graph defines the DatabaseProvider contract (spec.md §4.3): the
// only interface through which the core touches persistent state, plus a
// Neo4j-backed reference implementation and an in-memory implementation
// used by tests and examples.
//
// All methods are asynchronous (they accept a context.Context and may
// block on network I/O). Implementations must enforce invariants 1-3 and 5
// and cooperate with invariant 9 (cascade delete).
package graph

import (
	"context"

	"github.com/Glossick/akasha-sub001/engine/domain"
)

// VectorSearchOpts filters a findEntitiesByVector/findDocumentsByVector call.
type VectorSearchOpts struct {
	Query               []float32
	Limit               int
	SimilarityThreshold float64
	ScopeID             string
	Contexts            []string
	ValidAt             string // ISO-8601, empty means unfiltered
}

// SubgraphOpts bounds a retrieveSubgraph call.
type SubgraphOpts struct {
	EntityLabels      []string
	RelationshipTypes []string
	MaxDepth          int
	Limit             int
	StartEntityIDs    []string
	ScopeID           string
}

// Subgraph is the result of retrieveSubgraph: a deduplicated set of
// entities and relationships reachable from the seed set.
type Subgraph struct {
	Entities      []domain.Entity
	Relationships []domain.Relationship
}

// DeleteResult is returned by deleteEntity/deleteRelationship/deleteDocument.
type DeleteResult struct {
	Deleted bool
	Message string
}

// ListOpts paginates listEntities/listRelationships/listDocuments.
type ListOpts struct {
	Limit   int
	Offset  int
	ScopeID string
}

// EntityListOpts additionally filters listEntities by label.
type EntityListOpts struct {
	ListOpts
	Label string
}

// RelationshipListOpts additionally filters listRelationships.
type RelationshipListOpts struct {
	ListOpts
	Type   string
	FromID string
	ToID   string
}

// Provider is the abstraction over any graph database backend.
type Provider interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	EnsureVectorIndex(ctx context.Context, dimensions int) error
	Ping(ctx context.Context) bool

	FindEntitiesByVector(ctx context.Context, opts VectorSearchOpts) ([]domain.Entity, error)
	FindDocumentsByVector(ctx context.Context, opts VectorSearchOpts) ([]domain.Document, error)
	RetrieveSubgraph(ctx context.Context, opts SubgraphOpts) (Subgraph, error)

	CreateEntities(ctx context.Context, batch []domain.Entity, embeddings [][]float32) ([]domain.Entity, error)
	FindEntityByName(ctx context.Context, name, scopeID string) (domain.Entity, bool, error)
	FindEntityByID(ctx context.Context, id, scopeID string) (domain.Entity, bool, error)
	UpdateEntity(ctx context.Context, id string, props map[string]any, scopeID string) (domain.Entity, error)
	UpdateEntityContextIDs(ctx context.Context, id, contextID string) error
	DeleteEntity(ctx context.Context, id, scopeID string) (DeleteResult, error)
	ListEntities(ctx context.Context, opts EntityListOpts) ([]domain.Entity, error)

	CreateRelationships(ctx context.Context, batch []domain.Relationship) ([]domain.Relationship, error)
	FindRelationshipByID(ctx context.Context, id, scopeID string) (domain.Relationship, bool, error)
	UpdateRelationship(ctx context.Context, id string, props map[string]any, scopeID string) (domain.Relationship, error)
	DeleteRelationship(ctx context.Context, id, scopeID string) (DeleteResult, error)
	ListRelationships(ctx context.Context, opts RelationshipListOpts) ([]domain.Relationship, error)

	CreateDocument(ctx context.Context, doc domain.Document, embedding []float32) (domain.Document, bool, error)
	FindDocumentByText(ctx context.Context, text, scopeID string) (domain.Document, bool, error)
	FindDocumentByID(ctx context.Context, id, scopeID string) (domain.Document, bool, error)
	UpdateDocument(ctx context.Context, id string, props map[string]any, scopeID string) (domain.Document, error)
	UpdateDocumentContextIDs(ctx context.Context, id, contextID string) error
	DeleteDocument(ctx context.Context, id, scopeID string) (DeleteResult, error)
	ListDocuments(ctx context.Context, opts ListOpts) ([]domain.Document, error)

	LinkEntityToDocument(ctx context.Context, docID, entityID, scopeID string) (domain.Relationship, error)
	GetEntitiesFromDocuments(ctx context.Context, documentIDs []string, scopeID string) ([]domain.Entity, error)
}

// ContainsEntityRelType is the built-in relationship type linking a
// document to each entity it mentions.
const ContainsEntityRelType = "CONTAINS_ENTITY"
