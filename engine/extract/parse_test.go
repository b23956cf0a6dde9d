package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Glossick/akasha-sub001/engine/domain"
)

func TestParse_BareJSON(t *testing.T) {
	raw := `{"entities":[{"label":"Person","name":"Maria","properties":{}}],"relationships":[]}`
	out, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, out.Entities, 1)
	assert.Equal(t, "Maria", out.Entities[0].Name)
}

func TestParse_FencedJSON(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"entities\":[],\"relationships\":[]}\n```"
	out, err := Parse(raw)
	require.NoError(t, err)
	assert.Empty(t, out.Entities)
}

func TestParse_MalformedJSONReturnsExtractionFailure(t *testing.T) {
	_, err := Parse("not json at all")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
}

func TestParse_EntityMissingNameFails(t *testing.T) {
	raw := `{"entities":[{"label":"Person","name":""}],"relationships":[]}`
	_, err := Parse(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
}

func TestParse_InvalidEntityLabelFails(t *testing.T) {
	raw := `{"entities":[{"label":"not-a-label","name":"x"}],"relationships":[]}`
	_, err := Parse(raw)
	require.Error(t, err)
}

func TestParse_InvalidRelationshipTypeFails(t *testing.T) {
	raw := `{"entities":[],"relationships":[{"from":"a","to":"b","type":"lower"}]}`
	_, err := Parse(raw)
	require.Error(t, err)
}

func TestParse_DropsSelfReferentialRelationship(t *testing.T) {
	raw := `{"entities":[],"relationships":[{"from":"a","to":"a","type":"RELATED_TO"}]}`
	out, err := Parse(raw)
	require.NoError(t, err)
	assert.Empty(t, out.Relationships)
}

func TestParse_DedupesRelationshipsByFromToType(t *testing.T) {
	raw := `{"entities":[],"relationships":[
		{"from":"a","to":"b","type":"RELATED_TO"},
		{"from":"a","to":"b","type":"RELATED_TO"},
		{"from":"a","to":"b","type":"WORKS_FOR"}
	]}`
	out, err := Parse(raw)
	require.NoError(t, err)
	assert.Len(t, out.Relationships, 2)
}
