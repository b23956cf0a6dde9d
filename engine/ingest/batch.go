package ingest

import (
	"context"
	"time"

	"github.com/Glossick/akasha-sub001/engine/events"
)

// BatchItem is one heterogeneous element of a learnBatch call: a bare
// string input leaves every field but Text at its zero value.
type BatchItem struct {
	Text        string
	ContextID   string
	ContextName string
	ValidFrom   time.Time
	ValidTo     *time.Time
}

func (i BatchItem) options(includeEmbeddings bool) Options {
	return Options{
		ContextID:         i.ContextID,
		ContextName:       i.ContextName,
		ValidFrom:         i.ValidFrom,
		ValidTo:           i.ValidTo,
		IncludeEmbeddings: includeEmbeddings,
	}
}

// BatchError records one item's failure without halting the batch.
type BatchError struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Error string `json:"error"`
}

// BatchSummary is the aggregate reported alongside per-item results.
type BatchSummary struct {
	Total                     int `json:"total"`
	Succeeded                 int `json:"succeeded"`
	Failed                    int `json:"failed"`
	TotalDocumentsCreated     int `json:"totalDocumentsCreated"`
	TotalDocumentsReused      int `json:"totalDocumentsReused"`
	TotalEntitiesCreated      int `json:"totalEntitiesCreated"`
	TotalRelationshipsCreated int `json:"totalRelationshipsCreated"`
}

// BatchProgress is emitted after every item, per spec.md §4.7.
type BatchProgress struct {
	Current   int `json:"current"`
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// BatchResult is the shape learnBatch returns.
type BatchResult struct {
	Results []Result     `json:"results"`
	Summary BatchSummary `json:"summary"`
	Errors  []BatchError `json:"errors,omitempty"`
}

// LearnBatch runs Learn over items sequentially, in input order, collecting
// per-item failures instead of aborting, per spec.md §4.7.
func LearnBatch(ctx context.Context, deps Deps, items []BatchItem, includeEmbeddings bool) BatchResult {
	results := make([]Result, 0, len(items))
	var batchErrors []BatchError
	summary := BatchSummary{Total: len(items)}

	for i, item := range items {
		result, err := Learn(ctx, deps, item.Text, item.options(includeEmbeddings))
		if err != nil {
			summary.Failed++
			batchErrors = append(batchErrors, BatchError{Index: i, Text: item.Text, Error: err.Error()})
		} else {
			summary.Succeeded++
			results = append(results, result)
			if result.Created.Document == 1 {
				summary.TotalDocumentsCreated++
			} else {
				summary.TotalDocumentsReused++
			}
			summary.TotalEntitiesCreated += result.Created.Entities
			summary.TotalRelationshipsCreated += result.Created.Relationships
		}

		deps.emit(events.BatchProgress, BatchProgress{
			Current:   i + 1,
			Total:     len(items),
			Completed: summary.Succeeded,
			Failed:    summary.Failed,
		})
	}

	out := BatchResult{Results: results, Summary: summary, Errors: batchErrors}
	deps.emit(events.BatchCompleted, out)
	return out
}
