package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Glossick/akasha-sub001/engine/domain"
	"github.com/Glossick/akasha-sub001/engine/events"
	"github.com/Glossick/akasha-sub001/engine/extract"
	"github.com/Glossick/akasha-sub001/engine/llm"
	"github.com/Glossick/akasha-sub001/engine/respond"
	"github.com/Glossick/akasha-sub001/pkg/fn"
)

// dedupWorkers bounds how many concurrent FindEntityByName/LinkEntityToDocument
// calls a single Learn invocation issues against the graph provider.
const dedupWorkers = 8

// learnFailedPayload is attached to the learn.failed event.
type learnFailedPayload struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// docStageResult bundles dedupOrCreateDocument's two outputs into the
// single value its traced fn.Stage wrapper returns.
type docStageResult struct {
	doc     domain.Document
	created bool
}

// Learn runs the ingestion pipeline described by spec.md §4.6. text must be
// non-empty; Learn returns a *domain.Error on any failure.
func Learn(ctx context.Context, deps Deps, text string, opts Options) (Result, error) {
	log := deps.log()
	if text == "" {
		return Result{}, domain.NewError(domain.KindValidation, "ingest.Learn", "text must not be empty", nil)
	}

	log.Info("ingest: learn started", "scope_id", deps.ScopeID, "context_name", opts.ContextName)
	deps.emit(events.LearnStarted, map[string]any{"text": text})

	contextID := resolveContextID(deps.ScopeID, opts.ContextID, opts.ContextName)
	ctxDescriptor := domain.Context{ID: contextID, ScopeID: deps.ScopeID, Name: opts.ContextName}

	documentStage := fn.TracedStage("ingest.document", fn.Stage[string, docStageResult](
		func(ctx context.Context, text string) fn.Result[docStageResult] {
			doc, created, err := dedupOrCreateDocument(ctx, deps, text, contextID, opts)
			if err != nil {
				return fn.Err[docStageResult](err)
			}
			return fn.Ok(docStageResult{doc: doc, created: created})
		}))
	docResult, err := documentStage(ctx, text).Unwrap()
	if err != nil {
		log.Error("ingest: document stage failed", "scope_id", deps.ScopeID, "error", err)
		deps.emit(events.LearnFailed, learnFailedPayload{Stage: "document", Error: err.Error()})
		return Result{}, err
	}
	doc, created := docResult.doc, docResult.created

	extractionStage := fn.TracedStage("ingest.extraction", fn.Stage[string, extract.Output](
		func(ctx context.Context, text string) fn.Result[extract.Output] {
			out, err := runExtraction(ctx, deps, text)
			if err != nil {
				return fn.Err[extract.Output](err)
			}
			return fn.Ok(out)
		}))
	extracted, err := extractionStage(ctx, text).Unwrap()
	if err != nil {
		log.Error("ingest: extraction stage failed", "scope_id", deps.ScopeID, "doc_id", doc.ID, "error", err)
		deps.emit(events.LearnFailed, learnFailedPayload{Stage: "extraction", Error: err.Error()})
		return Result{}, err
	}

	newEntities, existingEntities, err := dedupEntities(ctx, deps, extracted.Entities)
	if err != nil {
		log.Error("ingest: entity dedup stage failed", "scope_id", deps.ScopeID, "doc_id", doc.ID, "error", err)
		deps.emit(events.LearnFailed, learnFailedPayload{Stage: "entity_dedup", Error: err.Error()})
		return Result{}, err
	}

	persistedNew, err := embedAndPersistEntities(ctx, deps, newEntities, contextID, opts)
	if err != nil {
		deps.emit(events.LearnFailed, learnFailedPayload{Stage: "entity_persist", Error: err.Error()})
		return Result{}, err
	}

	for _, e := range existingEntities {
		if err := deps.Graph.UpdateEntityContextIDs(ctx, e.ID, contextID); err != nil {
			log.Warn("ingest: entity context append failed", "entity_id", e.ID, "error", err)
			deps.emit(events.LearnFailed, learnFailedPayload{Stage: "entity_context_append", Error: err.Error()})
			return Result{}, err
		}
	}

	nameToID := make(map[string]string, len(persistedNew)+len(existingEntities))
	for _, e := range persistedNew {
		nameToID[domain.NormalizeEntityName(entityName(e))] = e.ID
	}
	for _, e := range existingEntities {
		nameToID[domain.NormalizeEntityName(entityName(e))] = e.ID
	}

	newRelationships, err := persistRelationships(ctx, deps, extracted.Relationships, nameToID, contextID, opts)
	if err != nil {
		log.Error("ingest: relationship persist stage failed", "scope_id", deps.ScopeID, "doc_id", doc.ID, "error", err)
		deps.emit(events.LearnFailed, learnFailedPayload{Stage: "relationship_persist", Error: err.Error()})
		return Result{}, err
	}

	allTouched := append(append([]domain.Entity{}, persistedNew...), existingEntities...)
	if err := linkEntitiesToDocument(ctx, deps, doc.ID, allTouched); err != nil {
		log.Error("ingest: link stage failed", "doc_id", doc.ID, "error", err)
		deps.emit(events.LearnFailed, learnFailedPayload{Stage: "link", Error: err.Error()})
		return Result{}, err
	}

	for _, e := range persistedNew {
		deps.emit(events.EntityCreated, e)
	}
	for _, r := range newRelationships {
		deps.emit(events.RelationshipCreated, r)
	}

	respEntities := allTouched
	respRelationships := newRelationships
	if !opts.IncludeEmbeddings {
		respEntities = respond.ScrubEntities(respEntities)
		respRelationships = respond.ScrubRelationships(respRelationships)
		doc = respond.ScrubDocument(doc)
	}

	result := Result{
		Context:       ctxDescriptor,
		Document:      doc,
		Entities:      respEntities,
		Relationships: respRelationships,
		Summary:       fmt.Sprintf("learned %d new entities and %d new relationships from 1 document", len(persistedNew), len(newRelationships)),
		Created: Counters{
			Document:      boolToInt(created),
			Entities:      len(persistedNew),
			Relationships: len(newRelationships),
		},
	}
	log.Info("ingest: learn completed", "scope_id", deps.ScopeID, "doc_id", doc.ID, "entities_created", len(persistedNew), "relationships_created", len(newRelationships))
	deps.emit(events.LearnCompleted, result)
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func entityName(e domain.Entity) string {
	name, _ := e.Properties["name"].(string)
	return name
}

// dedupOrCreateDocument implements spec.md §4.6 step 3.
func dedupOrCreateDocument(ctx context.Context, deps Deps, text, contextID string, opts Options) (domain.Document, bool, error) {
	existing, found, err := deps.Graph.FindDocumentByText(ctx, text, deps.ScopeID)
	if err != nil {
		return domain.Document{}, false, wrapDatabaseErr("ingest.dedupOrCreateDocument", err)
	}
	if found {
		if err := deps.Graph.UpdateDocumentContextIDs(ctx, existing.ID, contextID); err != nil {
			return domain.Document{}, false, wrapDatabaseErr("ingest.dedupOrCreateDocument", err)
		}
		existing.ContextIDs = appendUnique(existing.ContextIDs, contextID)
		return existing, false, nil
	}

	embedding, err := deps.Embedder.Embed(ctx, text)
	if err != nil {
		return domain.Document{}, false, domain.NewError(domain.KindEmbedding, "ingest.dedupOrCreateDocument", "failed to embed document text", err)
	}

	now := time.Now().UTC()
	doc := domain.Document{
		ID:         uuid.NewString(),
		Text:       text,
		ScopeID:    deps.ScopeID,
		ContextIDs: []string{contextID},
		RecordedAt: now,
		ValidFrom:  opts.ValidFrom,
		ValidTo:    opts.ValidTo,
	}
	if doc.ValidFrom.IsZero() {
		doc.ValidFrom = now
	}

	stored, _, err := deps.Graph.CreateDocument(ctx, doc, embedding)
	if err != nil {
		return domain.Document{}, false, wrapDatabaseErr("ingest.dedupOrCreateDocument", err)
	}
	deps.emit(events.DocumentCreated, stored)
	return stored, true, nil
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// runExtraction implements spec.md §4.6 step 4.
func runExtraction(ctx context.Context, deps Deps, text string) (extract.Output, error) {
	deps.emit(events.ExtractionStarted, map[string]any{"text": text})

	systemPrompt := deps.Template.SystemPrompt()
	userPrompt := extract.UserPrompt(text)

	raw, err := deps.LLM.Generate(ctx, userPrompt, "", systemPrompt, llm.ExtractionTemperature)
	if err != nil {
		return extract.Output{}, domain.NewError(domain.KindLLM, "ingest.runExtraction", "extraction call failed", err)
	}

	out, err := extract.Parse(raw)
	if err != nil {
		return extract.Output{}, err
	}

	deps.emit(events.ExtractionCompleted, out)
	return out, nil
}

// dedupLookup is the per-entity outcome of checking the graph for an
// existing entity by name: exactly one of its fields is set.
type dedupLookup struct {
	existing *domain.Entity
	fresh    *extract.ExtractedEntity
}

// dedupEntities implements spec.md §4.6 step 5, checking every extracted
// entity against the graph concurrently (bounded by dedupWorkers) since each
// lookup is an independent round-trip.
func dedupEntities(ctx context.Context, deps Deps, extracted []extract.ExtractedEntity) (newEntities []extract.ExtractedEntity, existing []domain.Entity, err error) {
	lookup := fn.BatchStage(dedupWorkers, fn.Stage[extract.ExtractedEntity, dedupLookup](
		func(ctx context.Context, e extract.ExtractedEntity) fn.Result[dedupLookup] {
			found, ok, findErr := deps.Graph.FindEntityByName(ctx, e.Name, deps.ScopeID)
			if findErr != nil {
				return fn.Err[dedupLookup](findErr)
			}
			if ok {
				return fn.Ok(dedupLookup{existing: &found})
			}
			return fn.Ok(dedupLookup{fresh: &e})
		}))

	results, lookupErr := lookup(ctx, extracted).Unwrap()
	if lookupErr != nil {
		return nil, nil, wrapDatabaseErr("ingest.dedupEntities", lookupErr)
	}
	for _, r := range results {
		if r.existing != nil {
			existing = append(existing, *r.existing)
			continue
		}
		newEntities = append(newEntities, *r.fresh)
	}
	return newEntities, existing, nil
}

// linkEntitiesToDocument implements spec.md §4.6 step 10, linking every
// touched entity to the source document concurrently (bounded by
// dedupWorkers) since each link is an independent write.
func linkEntitiesToDocument(ctx context.Context, deps Deps, docID string, entities []domain.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	link := fn.BatchStage(dedupWorkers, fn.Stage[domain.Entity, struct{}](
		func(ctx context.Context, e domain.Entity) fn.Result[struct{}] {
			if _, err := deps.Graph.LinkEntityToDocument(ctx, docID, e.ID, deps.ScopeID); err != nil {
				return fn.Err[struct{}](wrapDatabaseErr("ingest.linkEntitiesToDocument", err))
			}
			return fn.Ok(struct{}{})
		}))
	_, err := link(ctx, entities).Unwrap()
	return err
}

// embeddedEntities bundles the entities awaiting persistence with their
// freshly computed embeddings, carrying both through from the embed stage
// to the persist stage of embedAndPersistEntities's pipeline.
type embeddedEntities struct {
	entities   []extract.ExtractedEntity
	embeddings [][]float32
}

// embedAndPersistEntities implements spec.md §4.6 steps 6-7's new-entity
// half as a two-stage pipeline: embed the canonical text for every new
// entity, then persist the resulting batch.
func embedAndPersistEntities(ctx context.Context, deps Deps, newEntities []extract.ExtractedEntity, contextID string, opts Options) ([]domain.Entity, error) {
	if len(newEntities) == 0 {
		return nil, nil
	}

	embedStage := fn.Stage[[]extract.ExtractedEntity, embeddedEntities](
		func(ctx context.Context, entities []extract.ExtractedEntity) fn.Result[embeddedEntities] {
			texts := make([]string, len(entities))
			for i, e := range entities {
				texts[i] = canonicalEntityText(e)
			}
			embeddings, err := deps.Embedder.EmbedBatch(ctx, texts)
			if err != nil {
				return fn.Err[embeddedEntities](domain.NewError(domain.KindEmbedding, "ingest.embedAndPersistEntities", "failed to embed new entities", err))
			}
			return fn.Ok(embeddedEntities{entities: entities, embeddings: embeddings})
		})

	persistStage := fn.Stage[embeddedEntities, []domain.Entity](
		func(ctx context.Context, in embeddedEntities) fn.Result[[]domain.Entity] {
			now := time.Now().UTC()
			batch := make([]domain.Entity, len(in.entities))
			for i, e := range in.entities {
				props := make(map[string]any, len(e.Properties)+4)
				for k, v := range e.Properties {
					props[k] = v
				}
				props["name"] = e.Name
				props[domain.PropScopeID] = deps.ScopeID
				props[domain.PropContextIDs] = []string{contextID}
				props[domain.PropRecordedAt] = now
				if !opts.ValidFrom.IsZero() {
					props[domain.PropValidFrom] = opts.ValidFrom
				}
				if opts.ValidTo != nil {
					props[domain.PropValidTo] = *opts.ValidTo
				}
				batch[i] = domain.Entity{Label: e.Label, Properties: props}
			}

			stored, err := deps.Graph.CreateEntities(ctx, batch, in.embeddings)
			if err != nil {
				return fn.Err[[]domain.Entity](wrapDatabaseErr("ingest.embedAndPersistEntities", err))
			}
			return fn.Ok(stored)
		})

	return fn.Then(embedStage, persistStage)(ctx, newEntities).Unwrap()
}

// persistRelationships implements spec.md §4.6 step 9.
func persistRelationships(ctx context.Context, deps Deps, extracted []extract.ExtractedRelationship, nameToID map[string]string, contextID string, opts Options) ([]domain.Relationship, error) {
	if len(extracted) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	batch := make([]domain.Relationship, 0, len(extracted))
	for _, r := range extracted {
		fromID, fromOK := nameToID[domain.NormalizeEntityName(r.From)]
		toID, toOK := nameToID[domain.NormalizeEntityName(r.To)]
		if !fromOK || !toOK {
			continue
		}

		props := make(map[string]any, len(r.Properties)+4)
		for k, v := range r.Properties {
			props[k] = v
		}
		props[domain.PropScopeID] = deps.ScopeID
		props[domain.PropContextIDs] = []string{contextID}
		props[domain.PropRecordedAt] = now
		if !opts.ValidFrom.IsZero() {
			props[domain.PropValidFrom] = opts.ValidFrom
		}
		if opts.ValidTo != nil {
			props[domain.PropValidTo] = *opts.ValidTo
		}

		batch = append(batch, domain.Relationship{Type: r.Type, From: fromID, To: toID, Properties: props})
	}

	if len(batch) == 0 {
		return nil, nil
	}

	stored, err := deps.Graph.CreateRelationships(ctx, batch)
	if err != nil {
		return nil, wrapDatabaseErr("ingest.persistRelationships", err)
	}
	return stored, nil
}

func wrapDatabaseErr(op string, err error) error {
	if _, ok := err.(*domain.Error); ok {
		return err
	}
	return domain.NewError(domain.KindDatabase, op, "database provider call failed", err)
}
