// Package retrieve implements the ask pipeline (spec.md §4.8): hybrid
// document-and-entity vector search, graph expansion, and grounded answer
// synthesis.
package retrieve

import (
	"log/slog"

	"github.com/Glossick/akasha-sub001/engine/domain"
	"github.com/Glossick/akasha-sub001/engine/embedding"
	"github.com/Glossick/akasha-sub001/engine/events"
	"github.com/Glossick/akasha-sub001/engine/graph"
	"github.com/Glossick/akasha-sub001/engine/llm"
	"github.com/Glossick/akasha-sub001/engine/respond"
)

// Strategy selects which vector indexes ask searches.
type Strategy string

const (
	StrategyDocuments Strategy = "documents"
	StrategyEntities  Strategy = "entities"
	StrategyBoth      Strategy = "both"
)

const (
	DefaultMaxDepth            = 2
	DefaultLimit               = 50
	DefaultSimilarityThreshold = 0.7
	MaxDepthCeiling            = 10
)

// Options configures a single ask call.
type Options struct {
	MaxDepth            int
	Limit               int
	Strategy            Strategy
	Contexts            []string
	ValidAt             string
	IncludeEmbeddings   bool
	IncludeStats        bool
	SimilarityThreshold float64
}

// normalize fills in every default per spec.md §4.8's inputs list.
func (o Options) normalize() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxDepth > MaxDepthCeiling {
		o.MaxDepth = MaxDepthCeiling
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Strategy == "" {
		o.Strategy = StrategyBoth
	}
	if o.SimilarityThreshold == 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	return o
}

func (o Options) searchesDocuments() bool {
	return o.Strategy == StrategyDocuments || o.Strategy == StrategyBoth
}

func (o Options) searchesEntities() bool {
	return o.Strategy == StrategyEntities || o.Strategy == StrategyBoth
}

// ContextPayload is the retrieved-context portion of an ask response.
type ContextPayload struct {
	Entities      []domain.Entity       `json:"entities"`
	Relationships []domain.Relationship `json:"relationships"`
	Documents     []domain.Document     `json:"documents,omitempty"`
	Summary       string                `json:"summary"`
}

// Result is the full shape ask returns.
type Result struct {
	Context    ContextPayload      `json:"context"`
	Answer     string              `json:"answer"`
	Statistics *respond.Statistics `json:"statistics,omitempty"`
}

// Deps bundles the providers ask needs.
type Deps struct {
	Graph    graph.Provider
	Embedder embedding.Provider
	LLM      llm.Provider
	Events   *events.Emitter
	ScopeID  string
	Scope    *domain.Scope
	Logger   *slog.Logger
}

func (d Deps) emit(eventType events.Type, payload any) {
	if d.Events == nil {
		return
	}
	d.Events.Emit(eventType, d.ScopeID, payload)
}

func (d Deps) log() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
