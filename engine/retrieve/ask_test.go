package retrieve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Glossick/akasha-sub001/engine/domain"
	"github.com/Glossick/akasha-sub001/engine/embedding"
	"github.com/Glossick/akasha-sub001/engine/events"
	"github.com/Glossick/akasha-sub001/engine/graph"
	"github.com/Glossick/akasha-sub001/engine/llm"
)

func seedGraph(t *testing.T, g *graph.MemoryProvider, embedder embedding.Provider, scopeID string) (docID string) {
	t.Helper()
	ctx := context.Background()

	docVec, err := embedder.Embed(ctx, "Maria Alves joined Northwind Robotics as lead engineer.")
	require.NoError(t, err)
	doc, _, err := g.CreateDocument(ctx, domain.Document{
		ID:      "doc-1",
		Text:    "Maria Alves joined Northwind Robotics as lead engineer.",
		ScopeID: scopeID,
	}, docVec)
	require.NoError(t, err)

	entVec, err := embedder.Embed(ctx, "Person: Maria Alves")
	require.NoError(t, err)
	_, err = g.CreateEntities(ctx, []domain.Entity{{
		ID:    "ent-1",
		Label: "Person",
		Properties: map[string]any{
			"name":              "Maria Alves",
			domain.PropScopeID: scopeID,
		},
	}}, [][]float32{entVec})
	require.NoError(t, err)

	_, err = g.LinkEntityToDocument(ctx, doc.ID, "ent-1", scopeID)
	require.NoError(t, err)

	return doc.ID
}

func newAskDeps(t *testing.T, answer string) (Deps, *graph.MemoryProvider, embedding.Provider) {
	t.Helper()
	g := graph.NewMemory()
	require.NoError(t, g.Connect(context.Background()))
	embedder := embedding.NewFake(8)
	deps := Deps{
		Graph:    g,
		Embedder: embedder,
		LLM:      llm.NewFake(answer),
		Events:   events.New(nil),
		ScopeID:  "scope-a",
	}
	return deps, g, embedder
}

func TestAsk_EmptyQuestionFails(t *testing.T) {
	deps, _, _ := newAskDeps(t, "doesn't matter")
	_, err := Ask(context.Background(), deps, "", Options{})
	require.Error(t, err)
}

func TestAsk_ReturnsGroundedAnswer(t *testing.T) {
	deps, g, embedder := newAskDeps(t, "Maria Alves works at Northwind Robotics.")
	seedGraph(t, g, embedder, deps.ScopeID)

	result, err := Ask(context.Background(), deps, "Where does Maria Alves work?", Options{SimilarityThreshold: -1})
	require.NoError(t, err)
	assert.Equal(t, "Maria Alves works at Northwind Robotics.", result.Answer)
	assert.NotEmpty(t, result.Context.Entities)
	assert.NotEmpty(t, result.Context.Documents)
}

func TestAsk_EmptySeedSetStillAnswers(t *testing.T) {
	deps, _, _ := newAskDeps(t, "I don't have any information about that.")
	result, err := Ask(context.Background(), deps, "Who is the CEO of Acme?", Options{})
	require.NoError(t, err)
	assert.Equal(t, "I don't have any information about that.", result.Answer)
	assert.Empty(t, result.Context.Entities)
}

func TestAsk_ScrubsEmbeddingsByDefault(t *testing.T) {
	deps, g, embedder := newAskDeps(t, "answer")
	seedGraph(t, g, embedder, deps.ScopeID)

	result, err := Ask(context.Background(), deps, "Tell me about Maria Alves.", Options{SimilarityThreshold: -1})
	require.NoError(t, err)
	for _, d := range result.Context.Documents {
		assert.Nil(t, d.Embedding)
	}
	for _, e := range result.Context.Entities {
		_, ok := e.Properties[domain.PropEmbedding]
		assert.False(t, ok)
	}
}

func TestAsk_IncludeStatsPopulatesStatistics(t *testing.T) {
	deps, g, embedder := newAskDeps(t, "answer")
	seedGraph(t, g, embedder, deps.ScopeID)

	result, err := Ask(context.Background(), deps, "Tell me about Maria Alves.", Options{SimilarityThreshold: -1, IncludeStats: true})
	require.NoError(t, err)
	require.NotNil(t, result.Statistics)
	assert.GreaterOrEqual(t, result.Statistics.TotalMs, 0.0)
}

func TestAsk_StrategyEntitiesSkipsDocumentSearch(t *testing.T) {
	deps, g, embedder := newAskDeps(t, "answer")
	seedGraph(t, g, embedder, deps.ScopeID)

	result, err := Ask(context.Background(), deps, "Tell me about Maria Alves.", Options{SimilarityThreshold: -1, Strategy: StrategyEntities})
	require.NoError(t, err)
	assert.Empty(t, result.Context.Documents)
}
