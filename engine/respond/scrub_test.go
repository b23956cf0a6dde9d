package respond

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Glossick/akasha-sub001/engine/domain"
)

func TestScrubEntity_RemovesEmbeddingKeepsSimilarity(t *testing.T) {
	e := domain.Entity{
		ID:    "e1",
		Label: "Person",
		Properties: map[string]any{
			"name":                 "Maria",
			domain.PropEmbedding:   []float32{0.1, 0.2},
			domain.PropSimilarity:  0.93,
			domain.PropRecordedAt:  "2026-01-01T00:00:00Z",
			domain.PropScopeID:     "scope-a",
		},
	}

	scrubbed := ScrubEntity(e)

	_, hasEmbedding := scrubbed.Properties[domain.PropEmbedding]
	assert.False(t, hasEmbedding)
	assert.Equal(t, 0.93, scrubbed.Properties[domain.PropSimilarity])
	assert.Equal(t, "2026-01-01T00:00:00Z", scrubbed.Properties[domain.PropRecordedAt])
	assert.Equal(t, "Maria", scrubbed.Properties["name"])
}

func TestScrubEntity_StripsUnknownUnderscoreFields(t *testing.T) {
	e := domain.Entity{Properties: map[string]any{"_internalDebug": "x", "name": "Maria"}}
	scrubbed := ScrubEntity(e)
	_, ok := scrubbed.Properties["_internalDebug"]
	assert.False(t, ok)
	assert.Equal(t, "Maria", scrubbed.Properties["name"])
}

func TestScrubDocument_ClearsEmbedding(t *testing.T) {
	d := domain.Document{ID: "d1", Text: "hello", Embedding: []float32{1, 2, 3}}
	scrubbed := ScrubDocument(d)
	assert.Nil(t, scrubbed.Embedding)
	assert.Equal(t, "hello", scrubbed.Text)
}

func TestScrubEntities_AppliesToEverySlice(t *testing.T) {
	in := []domain.Entity{
		{Properties: map[string]any{domain.PropEmbedding: []float32{1}}},
		{Properties: map[string]any{domain.PropEmbedding: []float32{2}}},
	}
	out := ScrubEntities(in)
	for _, e := range out {
		_, ok := e.Properties[domain.PropEmbedding]
		assert.False(t, ok)
	}
}
