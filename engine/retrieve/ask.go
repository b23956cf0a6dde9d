package retrieve

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Glossick/akasha-sub001/engine/domain"
	"github.com/Glossick/akasha-sub001/engine/events"
	"github.com/Glossick/akasha-sub001/engine/graph"
	"github.com/Glossick/akasha-sub001/engine/llm"
	"github.com/Glossick/akasha-sub001/engine/respond"
	"github.com/Glossick/akasha-sub001/pkg/fn"
)

type queryStartedPayload struct {
	Question string   `json:"question"`
	Strategy Strategy `json:"strategy"`
}

type queryCompletedPayload struct {
	EntityCount       int `json:"entityCount"`
	RelationshipCount int `json:"relationshipCount"`
	DocumentCount     int `json:"documentCount"`
}

// searchResult bundles searchVectors' two independent outputs into the
// single value an fn.Stage can return.
type searchResult struct {
	docs     []domain.Document
	entities []domain.Entity
}

// Ask runs the full retrieval-augmented answering pipeline described in
// spec.md §4.8: embed the question, search the configured vector indexes,
// expand the entity seed set into a subgraph, assemble grounded context,
// and generate an answer.
func Ask(ctx context.Context, deps Deps, question string, opts Options) (Result, error) {
	if question == "" {
		return Result{}, domain.NewError(domain.KindValidation, "ask", "question must not be empty", nil)
	}
	opts = opts.normalize()
	log := deps.log()
	total := respond.StartStage()

	log.Info("retrieve: ask started", "scope_id", deps.ScopeID, "strategy", opts.Strategy)
	deps.emit(events.QueryStarted, queryStartedPayload{Question: question, Strategy: opts.Strategy})

	embedStage := fn.TracedStage("ask.embed_question", fn.Stage[string, []float32](
		func(ctx context.Context, q string) fn.Result[[]float32] {
			v, err := deps.Embedder.Embed(ctx, q)
			if err != nil {
				return fn.Err[[]float32](err)
			}
			return fn.Ok(v)
		}))
	queryVector, err := embedStage(ctx, question).Unwrap()
	if err != nil {
		log.Error("retrieve: question embedding failed", "scope_id", deps.ScopeID, "error", err)
		return Result{}, wrapProviderErr("ask.embed", domain.KindEmbedding, err)
	}

	searchResultStage := fn.TracedStage("ask.search_vectors", fn.Stage[[]float32, searchResult](
		func(ctx context.Context, qv []float32) fn.Result[searchResult] {
			docs, entities, err := searchVectors(ctx, deps, qv, opts)
			if err != nil {
				return fn.Err[searchResult](err)
			}
			return fn.Ok(searchResult{docs: docs, entities: entities})
		}))
	searchStage := respond.StartStage()
	searched, err := searchResultStage(ctx, queryVector).Unwrap()
	if err != nil {
		log.Error("retrieve: vector search failed", "scope_id", deps.ScopeID, "error", err)
		return Result{}, err
	}
	docs, seedEntities := searched.docs, searched.entities
	searchMs := searchStage.StopMs(respond.SearchHistogram())

	entityIndex := map[string]domain.Entity{}
	for _, e := range seedEntities {
		entityIndex[e.ID] = e
	}

	if len(docs) > 0 {
		linked, err := deps.Graph.GetEntitiesFromDocuments(ctx, documentIDs(docs), deps.ScopeID)
		if err != nil {
			return Result{}, wrapProviderErr("ask.getEntitiesFromDocuments", domain.KindDatabase, err)
		}
		for _, e := range linked {
			entityIndex[e.ID] = e
		}
	}

	subgraphFn := fn.TracedStage("ask.retrieve_subgraph", fn.Stage[graph.SubgraphOpts, graph.Subgraph](
		func(ctx context.Context, opts graph.SubgraphOpts) fn.Result[graph.Subgraph] {
			sub, err := deps.Graph.RetrieveSubgraph(ctx, opts)
			if err != nil {
				return fn.Err[graph.Subgraph](err)
			}
			return fn.Ok(sub)
		}))

	subgraphStage := respond.StartStage()
	relationships := []domain.Relationship{}
	if len(entityIndex) > 0 {
		seedIDs := make([]string, 0, len(entityIndex))
		for id := range entityIndex {
			seedIDs = append(seedIDs, id)
		}
		sub, err := subgraphFn(ctx, graph.SubgraphOpts{
			MaxDepth:       opts.MaxDepth,
			Limit:          opts.Limit,
			StartEntityIDs: seedIDs,
			ScopeID:        deps.ScopeID,
		}).Unwrap()
		if err != nil {
			return Result{}, wrapProviderErr("ask.retrieveSubgraph", domain.KindDatabase, err)
		}
		for _, e := range sub.Entities {
			entityIndex[e.ID] = e
		}
		relationships = sub.Relationships
	}
	subgraphMs := subgraphStage.StopMs(respond.SubgraphHistogram())

	entities := make([]domain.Entity, 0, len(entityIndex))
	for _, e := range entityIndex {
		entities = append(entities, e)
	}

	contextText := buildContextText(contextScope{
		ScopeID:  deps.ScopeID,
		Contexts: opts.Contexts,
		ValidAt:  opts.ValidAt,
	}, docs, entities, relationships)

	systemPrompt := "You are a precise assistant that answers only from the supplied context. " +
		"If the context does not contain the answer, say so plainly instead of guessing."
	generateFn := fn.TracedStage("ask.generate_answer", fn.Stage[string, string](
		func(ctx context.Context, q string) fn.Result[string] {
			a, err := deps.LLM.Generate(ctx, q, contextText, systemPrompt, llm.AnswerTemperature)
			if err != nil {
				return fn.Err[string](err)
			}
			return fn.Ok(a)
		}))
	genStage := respond.StartStage()
	answer, err := generateFn(ctx, question).Unwrap()
	if err != nil {
		log.Error("retrieve: answer generation failed", "scope_id", deps.ScopeID, "error", err)
		return Result{}, wrapProviderErr("ask.generate", domain.KindLLM, err)
	}
	generationMs := genStage.StopMs(respond.GenerateHistogram())

	if !opts.IncludeEmbeddings {
		entities = respond.ScrubEntities(entities)
		relationships = respond.ScrubRelationships(relationships)
		docs = respond.ScrubDocuments(docs)
	}

	result := Result{
		Context: ContextPayload{
			Entities:      entities,
			Relationships: relationships,
			Documents:     docs,
			Summary:       fmt.Sprintf("%d entities, %d relationships, %d documents", len(entities), len(relationships), len(docs)),
		},
		Answer: answer,
	}

	totalMs := total.StopMs(respond.TotalHistogram())
	if opts.IncludeStats {
		result.Statistics = &respond.Statistics{
			SearchMs:          searchMs,
			SubgraphMs:        subgraphMs,
			GenerationMs:      generationMs,
			TotalMs:           totalMs,
			EntityCount:       len(entities),
			RelationshipCount: len(relationships),
			DocumentCount:     len(docs),
		}
	}

	log.Info("retrieve: ask completed", "scope_id", deps.ScopeID, "entity_count", len(entities), "relationship_count", len(relationships), "document_count", len(docs))
	deps.emit(events.QueryCompleted, queryCompletedPayload{
		EntityCount:       len(entities),
		RelationshipCount: len(relationships),
		DocumentCount:     len(docs),
	})

	return result, nil
}

// searchVectors runs the document and entity vector searches concurrently
// per opts.Strategy, per spec.md §4.8 step 3.
func searchVectors(ctx context.Context, deps Deps, queryVector []float32, opts Options) ([]domain.Document, []domain.Entity, error) {
	var docs []domain.Document
	var entities []domain.Entity

	g, gctx := errgroup.WithContext(ctx)

	if opts.searchesDocuments() {
		g.Go(func() error {
			found, err := deps.Graph.FindDocumentsByVector(gctx, graph.VectorSearchOpts{
				Query:               queryVector,
				Limit:               opts.Limit,
				SimilarityThreshold: opts.SimilarityThreshold,
				ScopeID:             deps.ScopeID,
				Contexts:            opts.Contexts,
				ValidAt:             opts.ValidAt,
			})
			if err != nil {
				return wrapProviderErr("ask.findDocumentsByVector", domain.KindDatabase, err)
			}
			docs = found
			return nil
		})
	}

	if opts.searchesEntities() {
		g.Go(func() error {
			found, err := deps.Graph.FindEntitiesByVector(gctx, graph.VectorSearchOpts{
				Query:               queryVector,
				Limit:               opts.Limit,
				SimilarityThreshold: opts.SimilarityThreshold,
				ScopeID:             deps.ScopeID,
				Contexts:            opts.Contexts,
				ValidAt:             opts.ValidAt,
			})
			if err != nil {
				return wrapProviderErr("ask.findEntitiesByVector", domain.KindDatabase, err)
			}
			entities = found
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return docs, entities, nil
}

func documentIDs(docs []domain.Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}

func wrapProviderErr(op string, kind domain.Kind, err error) error {
	if de, ok := err.(*domain.Error); ok {
		return de
	}
	return domain.NewError(kind, op, err.Error(), err)
}
