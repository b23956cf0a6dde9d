package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeProviderReturnsScriptedResponsesInOrder(t *testing.T) {
	p := NewFake("first", "second")
	ctx := context.Background()

	out1, err := p.Generate(ctx, "prompt1", "", "sys", ExtractionTemperature)
	require.NoError(t, err)
	assert.Equal(t, "first", out1)

	out2, err := p.Generate(ctx, "prompt2", "", "sys", AnswerTemperature)
	require.NoError(t, err)
	assert.Equal(t, "second", out2)

	// Exhausted: repeats the last response.
	out3, err := p.Generate(ctx, "prompt3", "", "sys", AnswerTemperature)
	require.NoError(t, err)
	assert.Equal(t, "second", out3)

	require.Len(t, p.Calls, 3)
	assert.Equal(t, "prompt1", p.Calls[0].Prompt)
	assert.Equal(t, ExtractionTemperature, p.Calls[0].Temperature)
}

func TestFakeProviderNoResponsesConfigured(t *testing.T) {
	p := NewFake()
	_, err := p.Generate(context.Background(), "p", "", "", 0.5)
	assert.Error(t, err)
}
