package retrieve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Glossick/akasha-sub001/engine/domain"
)

func TestBuildContextText_OrderIsEntitiesThenRelationshipsThenDocuments(t *testing.T) {
	docs := []domain.Document{{ID: "doc-1", Text: "Maria joined Northwind."}}
	entities := []domain.Entity{{
		ID:         "ent-1",
		Label:      "Person",
		Properties: map[string]any{"name": "Maria Alves"},
	}}
	rels := []domain.Relationship{{From: "ent-1", To: "ent-2", Type: "WORKS_AT"}}

	text := buildContextText(contextScope{}, docs, entities, rels)

	entitiesIdx := strings.Index(text, "Entities:")
	relsIdx := strings.Index(text, "Relationships:")
	docsIdx := strings.Index(text, "Relevant source excerpts:")

	assert.NotEqual(t, -1, entitiesIdx)
	assert.NotEqual(t, -1, relsIdx)
	assert.NotEqual(t, -1, docsIdx)
	assert.Less(t, entitiesIdx, relsIdx, "entities must be written before relationships")
	assert.Less(t, relsIdx, docsIdx, "relationships must be written before documents")
}

func TestBuildContextText_TightBudgetDropsDocumentsFirst(t *testing.T) {
	docs := []domain.Document{{ID: "doc-1", Text: strings.Repeat("word ", 500)}}
	entities := []domain.Entity{{
		ID:         "ent-1",
		Label:      "Person",
		Properties: map[string]any{"name": "Maria Alves"},
	}}
	rels := []domain.Relationship{{From: "ent-1", To: "ent-2", Type: "WORKS_AT"}}

	text := buildContextTextWithBudget(contextScope{}, docs, entities, rels, 20)

	assert.Contains(t, text, "Maria Alves")
	assert.NotContains(t, text, "Relevant source excerpts:")
}

func TestBuildContextText_PreambleIncludesScopeContextsAndValidAt(t *testing.T) {
	text := buildContextText(contextScope{
		ScopeID:  "scope-a",
		Contexts: []string{"project-x", "project-y"},
		ValidAt:  "2026-01-01T00:00:00Z",
	}, nil, nil, nil)

	assert.Contains(t, text, "scope scope-a")
	assert.Contains(t, text, "contexts project-x, project-y")
	assert.Contains(t, text, "as of 2026-01-01T00:00:00Z")
}

func TestBuildContextText_NoPreambleWhenScopeEmpty(t *testing.T) {
	text := buildContextText(contextScope{}, nil, nil, nil)
	assert.Empty(t, text)
}

// buildContextTextWithBudget exercises the same assembly as buildContextText
// under a caller-supplied token budget, for tests that need tighter control
// than the package's fixed maxContextTokens allows.
func buildContextTextWithBudget(scope contextScope, docs []domain.Document, entities []domain.Entity, rels []domain.Relationship, budget int) string {
	count := tokenCounter()
	var b strings.Builder

	preamble := preambleLines(scope)
	if len(preamble) > 0 {
		budget -= writeBudgeted(&b, preamble, budget, count)
	}
	if len(entities) > 0 && budget > 0 {
		b.WriteString("\nEntities:\n")
		budget -= writeBudgeted(&b, entityLines(entities), budget, count)
	}
	if len(rels) > 0 && budget > 0 {
		names := entityNameIndex(entities)
		b.WriteString("\nRelationships:\n")
		budget -= writeBudgeted(&b, relationshipLines(rels, names), budget, count)
	}
	if len(docs) > 0 && budget > 0 {
		lines := documentLines(docs)
		if count(lines[0]) <= budget {
			b.WriteString("\nRelevant source excerpts:\n")
			budget -= writeBudgeted(&b, lines, budget, count)
		}
	}
	return b.String()
}
