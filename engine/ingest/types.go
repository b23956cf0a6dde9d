// Package ingest implements the learning pipeline: document dedup, LLM
// extraction, entity dedup, embedding, persistence, linking, and event
// emission (spec.md §4.6), plus the sequential batch orchestrator over it
// (spec.md §4.7).
package ingest

import (
	"log/slog"
	"time"

	"github.com/Glossick/akasha-sub001/engine/domain"
	"github.com/Glossick/akasha-sub001/engine/embedding"
	"github.com/Glossick/akasha-sub001/engine/events"
	"github.com/Glossick/akasha-sub001/engine/extract"
	"github.com/Glossick/akasha-sub001/engine/graph"
	"github.com/Glossick/akasha-sub001/engine/llm"
)

// Options configures a single learn call.
type Options struct {
	ContextID         string
	ContextName       string
	ValidFrom         time.Time
	ValidTo           *time.Time
	IncludeEmbeddings bool
}

// Counters reports how much new state a learn call produced.
type Counters struct {
	Document      int `json:"document"`
	Entities      int `json:"entities"`
	Relationships int `json:"relationships"`
}

// Result is the shape learn returns, per spec.md §4.6 step 12.
type Result struct {
	Context       domain.Context        `json:"context"`
	Document      domain.Document       `json:"document"`
	Entities      []domain.Entity       `json:"entities"`
	Relationships []domain.Relationship `json:"relationships"`
	Summary       string                `json:"summary"`
	Created       Counters              `json:"created"`
}

// Deps bundles the providers and collaborators learn needs. All fields are
// required; the facade supplies them at Akasha construction time.
type Deps struct {
	Graph    graph.Provider
	Embedder embedding.Provider
	LLM      llm.Provider
	Template extract.Template
	Events   *events.Emitter
	ScopeID  string
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
