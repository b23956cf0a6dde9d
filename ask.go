package akasha

import (
	"context"

	"github.com/Glossick/akasha-sub001/engine/retrieve"
)

// AskOptions configures a single Ask call.
type AskOptions = retrieve.Options

// AskResult is the shape Ask returns, per spec.md §4.8 step 10.
type AskResult = retrieve.Result

// Strategy selects which vector indexes Ask searches.
type Strategy = retrieve.Strategy

const (
	StrategyDocuments = retrieve.StrategyDocuments
	StrategyEntities  = retrieve.StrategyEntities
	StrategyBoth      = retrieve.StrategyBoth
)

// Ask answers question by embedding it, searching the configured vector
// indexes, expanding into a bounded subgraph, and grounding an LLM
// generation call on the assembled context, per spec.md §4.8.
func (a *Akasha) Ask(ctx context.Context, question string, opts AskOptions) (AskResult, error) {
	return retrieve.Ask(ctx, retrieve.Deps{
		Graph:    a.graph,
		Embedder: a.embedder,
		LLM:      a.llm,
		Events:   a.events,
		ScopeID:  a.ScopeID(),
		Scope:    a.scope,
		Logger:   a.logger,
	}, question, opts)
}
