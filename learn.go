package akasha

import (
	"context"

	"github.com/Glossick/akasha-sub001/engine/ingest"
)

// LearnOptions configures a single Learn call.
type LearnOptions = ingest.Options

// LearnResult is the shape Learn returns, per spec.md §4.6 step 12.
type LearnResult = ingest.Result

// BatchItem is one heterogeneous element of a LearnBatch call.
type BatchItem = ingest.BatchItem

// BatchResult is the shape LearnBatch returns, per spec.md §4.7.
type BatchResult = ingest.BatchResult

func (a *Akasha) deps() ingest.Deps {
	return ingest.Deps{
		Graph:    a.graph,
		Embedder: a.embedder,
		LLM:      a.llm,
		Template: a.template,
		Events:   a.events,
		ScopeID:  a.ScopeID(),
		Logger:   a.logger,
	}
}

// Learn ingests text into the graph: extracting entities and
// relationships, deduplicating against existing state, and persisting the
// result, per spec.md §4.6.
func (a *Akasha) Learn(ctx context.Context, text string, opts LearnOptions) (LearnResult, error) {
	return ingest.Learn(ctx, a.deps(), text, opts)
}

// LearnBatch runs Learn over items sequentially, continuing past
// individual item failures, per spec.md §4.7.
func (a *Akasha) LearnBatch(ctx context.Context, items []BatchItem, includeEmbeddings bool) BatchResult {
	return ingest.LearnBatch(ctx, a.deps(), items, includeEmbeddings)
}
