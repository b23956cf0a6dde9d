package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidLabel(t *testing.T) {
	assert.True(t, IsValidLabel("Person"))
	assert.True(t, IsValidLabel("Employee_2"))
	assert.False(t, IsValidLabel("person"))
	assert.False(t, IsValidLabel(""))
	assert.False(t, IsValidLabel("2Person"))
}

func TestIsValidRelationshipType(t *testing.T) {
	assert.True(t, IsValidRelationshipType("WORKS_FOR"))
	assert.False(t, IsValidRelationshipType("works_for"))
	assert.False(t, IsValidRelationshipType("WorksFor"))
}

func TestNormalizeEntityName(t *testing.T) {
	assert.Equal(t, "alice", NormalizeEntityName("  Alice  "))
	assert.Equal(t, "acme corp", NormalizeEntityName("Acme Corp"))
}

func TestValidatePropertyKeys(t *testing.T) {
	_, ok := ValidatePropertyKeys(map[string]any{"role": "engineer"})
	assert.True(t, ok)

	bad, ok := ValidatePropertyKeys(map[string]any{"embedding": []float32{1}})
	assert.False(t, ok)
	assert.Equal(t, "embedding", bad)

	bad, ok = ValidatePropertyKeys(map[string]any{"bad key!": 1})
	assert.False(t, ok)
	assert.Equal(t, "bad key!", bad)
}

func TestScrubUpdateProperties(t *testing.T) {
	in := map[string]any{
		"role":        "engineer",
		"embedding":   []float32{1, 2},
		"_recordedAt": "2024-01-01T00:00:00Z",
		"scopeId":     "t1",
		"_validFrom":  "2024-01-01T00:00:00Z",
		"_validTo":    "2024-06-01T00:00:00Z",
	}
	out := ScrubUpdateProperties(in)
	require.Len(t, out, 1)
	assert.Equal(t, "engineer", out["role"])
}

func TestErrorIsMatchesSentinelRegardlessOfCause(t *testing.T) {
	err := NewError(KindNotFound, "findEntityById", "no such entity", nil)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrDatabase))

	wrapped := NewError(KindDatabase, "createEntities", "constraint violation", errors.New("tx failed"))
	assert.True(t, errors.Is(wrapped, ErrDatabase))
	var asErr *Error
	require.True(t, errors.As(wrapped, &asErr))
	assert.EqualError(t, asErr.Cause, "tx failed")
}
