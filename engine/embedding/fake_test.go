package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeProviderDeterministic(t *testing.T) {
	p := NewFake(16)
	ctx := context.Background()

	v1, err := p.Embed(ctx, "alice")
	require.NoError(t, err)
	v2, err := p.Embed(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1, 16)
	assert.Equal(t, 16, p.Dimensions())
}

func TestFakeProviderDistinctTextsDiffer(t *testing.T) {
	p := NewFake(16)
	ctx := context.Background()

	v1, err := p.Embed(ctx, "alice")
	require.NoError(t, err)
	v2, err := p.Embed(ctx, "bob")
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2)
}

func TestFakeProviderEmbedBatchPreservesOrder(t *testing.T) {
	p := NewFake(8)
	ctx := context.Background()

	texts := []string{"one", "two", "three"}
	vecs, err := p.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	for i, text := range texts {
		single, err := p.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, vecs[i])
	}
}

func TestFakeProviderDefaultsDimensions(t *testing.T) {
	p := NewFake(0)
	assert.Equal(t, 8, p.Dimensions())
	assert.Equal(t, "fake", p.ProviderName())
}
