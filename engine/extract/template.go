// Package extract builds the system prompt the ingestion pipeline sends to
// the LLMProvider when extracting a typed property graph from free text.
package extract

import (
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// EntityType describes one node label the extractor is allowed to emit.
type EntityType struct {
	Label              string   `json:"label"`
	Description        string   `json:"description"`
	Examples           []string `json:"examples,omitempty"`
	RequiredProperties []string `json:"requiredProperties,omitempty"`
}

// RelationshipType describes one relationship the extractor is allowed to
// emit, constrained to the entity labels it may connect.
type RelationshipType struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	From        []string `json:"from"`
	To          []string `json:"to"`
	Examples    []string `json:"examples,omitempty"`
}

// Example is a few-shot text/JSON pair shown to the model.
type Example struct {
	Text string `json:"text"`
	JSON string `json:"json"`
}

// Template is the structured document serialised into the extraction
// system prompt. All fields are optional on a user override: a missing
// field falls back to the corresponding field of Default().
type Template struct {
	Role              string             `json:"role"`
	Task              string             `json:"task"`
	EntityTypes       []EntityType       `json:"entityTypes"`
	RelationshipTypes []RelationshipType `json:"relationshipTypes"`
	OutputFormat      string             `json:"outputFormat"`
	Rules             []string           `json:"rules"`
	Examples          []Example          `json:"examples"`
}

// extractionOutput mirrors the JSON shape the model must emit; it exists
// purely so jsonschema can derive OutputFormat from a Go type instead of a
// hand-maintained string.
type extractionOutput struct {
	Entities []struct {
		Label      string         `json:"label" jsonschema_description:"Entity type, matching one of entityTypes or ^[A-Z][A-Za-z0-9_]*$"`
		Name       string         `json:"name" jsonschema_description:"Canonical display name"`
		Properties map[string]any `json:"properties,omitempty"`
	} `json:"entities"`
	Relationships []struct {
		From       string         `json:"from" jsonschema_description:"Name of the source entity"`
		To         string         `json:"to" jsonschema_description:"Name of the target entity"`
		Type       string         `json:"type" jsonschema_description:"Relationship type, UPPER_SNAKE_CASE"`
		Properties map[string]any `json:"properties,omitempty"`
	} `json:"relationships"`
}

var generatedOutputFormat = func() string {
	reflector := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	schema := reflector.Reflect(&extractionOutput{})
	data, err := schema.MarshalJSON()
	if err != nil {
		return defaultOutputFormatFallback
	}
	return fmt.Sprintf("Respond with a single JSON object matching this schema:\n%s", string(data))
}()

const defaultOutputFormatFallback = `Respond with a single JSON object: {"entities": [{"label": string, "name": string, "properties": object}], "relationships": [{"from": string, "to": string, "type": string, "properties": object}]}`

// Default returns the built-in ontology-agnostic template. It names no
// domain-specific entity or relationship types, leaving callers free to
// override EntityTypes/RelationshipTypes per scope.
func Default() Template {
	return Template{
		Role: "You are an information extraction engine for a knowledge graph.",
		Task: "Read the supplied text and extract every entity and relationship it states or clearly implies.",
		EntityTypes: []EntityType{
			{Label: "Person", Description: "A named individual human."},
			{Label: "Organization", Description: "A company, agency, or other formal group."},
			{Label: "Location", Description: "A physical or geopolitical place."},
			{Label: "Event", Description: "A bounded occurrence with a time or place."},
			{Label: "Concept", Description: "An abstract idea, topic, or category not covered above."},
		},
		RelationshipTypes: []RelationshipType{
			{Type: "RELATED_TO", Description: "A generic association between two entities.", From: []string{"*"}, To: []string{"*"}},
			{Type: "WORKS_FOR", Description: "A person's employment or affiliation.", From: []string{"Person"}, To: []string{"Organization"}},
			{Type: "LOCATED_IN", Description: "Physical or organizational containment.", From: []string{"*"}, To: []string{"Location"}},
			{Type: "PARTICIPATED_IN", Description: "An entity's involvement in an event.", From: []string{"*"}, To: []string{"Event"}},
		},
		OutputFormat: generatedOutputFormat,
		Rules: []string{
			"Only extract what the text states or clearly implies; do not invent facts.",
			"Use the most specific entity label that applies.",
			"Every entity must have a non-empty name.",
			"Never emit a relationship whose from and to are the same entity.",
			"Prefer merging references to the same real-world entity under one name.",
		},
		Examples: []Example{
			{
				Text: "Maria Alves joined Northwind Robotics in 2019 as lead engineer.",
				JSON: `{"entities":[{"label":"Person","name":"Maria Alves","properties":{}},{"label":"Organization","name":"Northwind Robotics","properties":{}}],"relationships":[{"from":"Maria Alves","to":"Northwind Robotics","type":"WORKS_FOR","properties":{"role":"lead engineer","since":"2019"}}]}`,
			},
		},
	}
}

// Merge applies a user override on top of Default(), per spec.md §4.5:
// each top-level field is replaced independently when present in override;
// array fields are replaced wholesale, never concatenated. A zero-value
// field in override falls back to the default.
func Merge(override Template) Template {
	base := Default()
	merged := base
	if override.Role != "" {
		merged.Role = override.Role
	}
	if override.Task != "" {
		merged.Task = override.Task
	}
	if override.EntityTypes != nil {
		merged.EntityTypes = override.EntityTypes
	}
	if override.RelationshipTypes != nil {
		merged.RelationshipTypes = override.RelationshipTypes
	}
	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.Rules != nil {
		merged.Rules = override.Rules
	}
	if override.Examples != nil {
		merged.Examples = override.Examples
	}
	return merged
}

// SystemPrompt renders t into the flat text handed to the LLMProvider as
// its system prompt.
func (t Template) SystemPrompt() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n%s\n\n", t.Role, t.Task)

	b.WriteString("Entity types:\n")
	for _, et := range t.EntityTypes {
		fmt.Fprintf(&b, "- %s: %s", et.Label, et.Description)
		if len(et.RequiredProperties) > 0 {
			fmt.Fprintf(&b, " (required properties: %s)", strings.Join(et.RequiredProperties, ", "))
		}
		b.WriteString("\n")
		for _, ex := range et.Examples {
			fmt.Fprintf(&b, "  e.g. %s\n", ex)
		}
	}

	b.WriteString("\nRelationship types:\n")
	for _, rt := range t.RelationshipTypes {
		fmt.Fprintf(&b, "- %s (%s -> %s): %s\n", rt.Type, strings.Join(rt.From, "|"), strings.Join(rt.To, "|"), rt.Description)
		for _, ex := range rt.Examples {
			fmt.Fprintf(&b, "  e.g. %s\n", ex)
		}
	}

	if len(t.Rules) > 0 {
		b.WriteString("\nRules:\n")
		for _, r := range t.Rules {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	if len(t.Examples) > 0 {
		b.WriteString("\nExamples:\n")
		for _, ex := range t.Examples {
			fmt.Fprintf(&b, "Text: %s\nJSON: %s\n\n", ex.Text, ex.JSON)
		}
	}

	b.WriteString("\n")
	b.WriteString(t.OutputFormat)

	return b.String()
}

// UserPrompt renders the extraction request for a specific document body.
func UserPrompt(text string) string {
	return fmt.Sprintf("Extract entities and relationships from the following text:\n\n%s", text)
}
