package akasha

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Glossick/akasha-sub001/engine/config"
	"github.com/Glossick/akasha-sub001/engine/llm"
)

func testConfig() config.Config {
	return config.Config{
		Database: config.DatabaseConfig{Type: "memory", Config: map[string]any{"note": "in-memory"}},
		Providers: config.ProvidersConfig{
			Embedding: config.ProviderConfig{Type: "fake", Config: map[string]any{"dimensions": 8}},
			LLM:       config.ProviderConfig{Type: "fake", Config: map[string]any{"note": "stub"}},
		},
		Scope: &config.ScopeConfig{ID: "scope-a", Type: "tenant", Name: "Test Tenant"},
	}
}

func TestNew_ConstructsFromMemoryAndFakeProviders(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, "scope-a", a.ScopeID())
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(context.Background(), config.Config{})
	require.Error(t, err)
}

func TestAkasha_LearnAndAsk(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	// The "fake" LLM type always answers "stub response", which is not
	// extraction JSON, so script the extraction and the answer here.
	a.llm = llm.NewFake(
		`{"entities":[{"label":"Person","name":"Maria Alves","properties":{}},{"label":"Organization","name":"Northwind Robotics","properties":{}}],"relationships":[{"from":"Maria Alves","to":"Northwind Robotics","type":"WORKS_FOR","properties":{}}]}`,
		"Maria Alves works at Northwind Robotics.",
	)

	learned, err := a.Learn(context.Background(), "Maria Alves joined Northwind Robotics.", LearnOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, learned.Created.Entities)

	result, err := a.Ask(context.Background(), "Who works at Northwind Robotics?", AskOptions{SimilarityThreshold: -1})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Answer)
}

func TestAkasha_CRUDEntityLifecycle(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	ctx := context.Background()

	created, err := a.CreateEntity(ctx, "Person", map[string]any{"name": "Ada Lovelace"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", created.Properties["name"])

	found, err := a.FindEntity(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	updated, err := a.UpdateEntity(ctx, created.ID, map[string]any{"title": "Mathematician"})
	require.NoError(t, err)
	assert.Equal(t, "Mathematician", updated.Properties["title"])

	listed, err := a.ListEntities(ctx, EntityListOptions{})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	del, err := a.DeleteEntity(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, del.Deleted)

	_, err = a.FindEntity(ctx, created.ID)
	assert.True(t, IsNotFound(err))
}

func TestAkasha_UpdateEntityDropsReservedKeys(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	ctx := context.Background()

	created, err := a.CreateEntity(ctx, "Person", map[string]any{"name": "Grace Hopper"}, nil)
	require.NoError(t, err)

	updated, err := a.UpdateEntity(ctx, created.ID, map[string]any{"scopeId": "other-scope", "title": "Admiral"})
	require.NoError(t, err)
	assert.Equal(t, "Admiral", updated.Properties["title"])
	assert.Equal(t, "scope-a", updated.Properties["scopeId"])
}
