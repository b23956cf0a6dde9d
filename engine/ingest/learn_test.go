package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Glossick/akasha-sub001/engine/embedding"
	"github.com/Glossick/akasha-sub001/engine/events"
	"github.com/Glossick/akasha-sub001/engine/extract"
	"github.com/Glossick/akasha-sub001/engine/graph"
	"github.com/Glossick/akasha-sub001/engine/llm"
)

func newTestDeps(t *testing.T, responses ...string) Deps {
	t.Helper()
	g := graph.NewMemory()
	require.NoError(t, g.Connect(context.Background()))
	return Deps{
		Graph:    g,
		Embedder: embedding.NewFake(8),
		LLM:      llm.NewFake(responses...),
		Template: extract.Default(),
		Events:   events.New(nil),
		ScopeID:  "scope-a",
	}
}

const basicExtraction = `{"entities":[{"label":"Person","name":"Maria Alves","properties":{}},{"label":"Organization","name":"Northwind Robotics","properties":{}}],"relationships":[{"from":"Maria Alves","to":"Northwind Robotics","type":"WORKS_FOR","properties":{"role":"engineer"}}]}`

func TestLearn_BasicExtraction(t *testing.T) {
	deps := newTestDeps(t, basicExtraction)
	result, err := Learn(context.Background(), deps, "Maria Alves joined Northwind Robotics.", Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created.Document)
	assert.Equal(t, 2, result.Created.Entities)
	assert.Equal(t, 1, result.Created.Relationships)
	assert.Len(t, result.Entities, 2)
	assert.Len(t, result.Relationships, 1)
}

func TestLearn_EmptyTextFails(t *testing.T) {
	deps := newTestDeps(t, basicExtraction)
	_, err := Learn(context.Background(), deps, "", Options{})
	require.Error(t, err)
}

func TestLearn_DocumentDedupAppendsContext(t *testing.T) {
	deps := newTestDeps(t, basicExtraction, basicExtraction)
	text := "Maria Alves joined Northwind Robotics."

	first, err := Learn(context.Background(), deps, text, Options{ContextName: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created.Document)

	second, err := Learn(context.Background(), deps, text, Options{ContextName: "beta"})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created.Document)
	assert.Equal(t, first.Document.ID, second.Document.ID)
}

func TestLearn_EntityDedupReusesExistingEntity(t *testing.T) {
	deps := newTestDeps(t, basicExtraction, basicExtraction)

	first, err := Learn(context.Background(), deps, "Maria Alves joined Northwind Robotics.", Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created.Entities)

	second, err := Learn(context.Background(), deps, "Maria Alves left Northwind Robotics.", Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created.Entities)
}

func TestLearn_MalformedExtractionFails(t *testing.T) {
	deps := newTestDeps(t, "not json")
	_, err := Learn(context.Background(), deps, "some text", Options{})
	require.Error(t, err)
}

func TestLearn_ScrubsEmbeddingsByDefault(t *testing.T) {
	deps := newTestDeps(t, basicExtraction)
	result, err := Learn(context.Background(), deps, "Maria Alves joined Northwind Robotics.", Options{})
	require.NoError(t, err)
	for _, e := range result.Entities {
		_, ok := e.Properties["embedding"]
		assert.False(t, ok)
	}
}

func TestLearn_IncludeEmbeddingsPreservesThem(t *testing.T) {
	deps := newTestDeps(t, basicExtraction)
	result, err := Learn(context.Background(), deps, "Maria Alves joined Northwind Robotics.", Options{IncludeEmbeddings: true})
	require.NoError(t, err)
	found := false
	for _, e := range result.Entities {
		if _, ok := e.Properties["embedding"]; ok {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLearn_EntitiesLinkedToDocument(t *testing.T) {
	deps := newTestDeps(t, basicExtraction)
	result, err := Learn(context.Background(), deps, "Maria Alves joined Northwind Robotics.", Options{})
	require.NoError(t, err)

	linked, err := deps.Graph.GetEntitiesFromDocuments(context.Background(), []string{result.Document.ID}, deps.ScopeID)
	require.NoError(t, err)
	assert.Len(t, linked, 2)
}
