package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasCoreOntology(t *testing.T) {
	d := Default()
	require.NotEmpty(t, d.EntityTypes)
	require.NotEmpty(t, d.RelationshipTypes)
	assert.Contains(t, d.OutputFormat, "entities")
	assert.Contains(t, d.OutputFormat, "relationships")
}

func TestMerge_OverridesOnlyProvidedFields(t *testing.T) {
	override := Template{
		EntityTypes: []EntityType{{Label: "Vehicle", Description: "A car or truck."}},
	}

	merged := Merge(override)

	assert.Equal(t, []EntityType{{Label: "Vehicle", Description: "A car or truck."}}, merged.EntityTypes)
	assert.Equal(t, Default().Role, merged.Role)
	assert.Equal(t, Default().RelationshipTypes, merged.RelationshipTypes)
}

func TestMerge_ArrayFieldsReplacedNotConcatenated(t *testing.T) {
	override := Template{Rules: []string{"only rule"}}
	merged := Merge(override)
	assert.Equal(t, []string{"only rule"}, merged.Rules)
	assert.NotContains(t, merged.Rules, Default().Rules[0])
}

func TestTemplate_SystemPromptIncludesEntityAndRelationshipTypes(t *testing.T) {
	prompt := Default().SystemPrompt()
	assert.True(t, strings.Contains(prompt, "Person"))
	assert.True(t, strings.Contains(prompt, "WORKS_FOR"))
}

func TestUserPrompt_EmbedsText(t *testing.T) {
	p := UserPrompt("Maria works at Acme.")
	assert.Contains(t, p, "Maria works at Acme.")
}
