package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Glossick/akasha-sub001/engine/domain"
)

// ExtractedEntity is one entity as the LLM described it, before dedup or
// persistence assigns it an ID.
type ExtractedEntity struct {
	Label      string         `json:"label"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}

// ExtractedRelationship references its endpoints by name; the ingestion
// pipeline resolves names to entity IDs after entity dedup runs.
type ExtractedRelationship struct {
	From       string         `json:"from"`
	To         string         `json:"to"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// Output is the validated result of a single extraction call.
type Output struct {
	Entities      []ExtractedEntity
	Relationships []ExtractedRelationship
}

type rawOutput struct {
	Entities []struct {
		Label      string         `json:"label"`
		Name       string         `json:"name"`
		Properties map[string]any `json:"properties"`
	} `json:"entities"`
	Relationships []struct {
		From       string         `json:"from"`
		To         string         `json:"to"`
		Type       string         `json:"type"`
		Properties map[string]any `json:"properties"`
	} `json:"relationships"`
}

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// unfence strips a ```json ... ``` or ``` ... ``` code fence around a JSON
// body, tolerating models that ignore the instruction to emit bare JSON.
func unfence(s string) string {
	s = strings.TrimSpace(s)
	if m := fencedJSONPattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// Parse decodes an LLM extraction response per spec.md §4.6 step 4: accept
// fenced JSON, then validate entity labels, names, relationship types, and
// endpoints, rejecting self-references and deduplicating relationships by
// (from, to, type). Any structural failure returns an *domain.Error with
// KindExtraction.
func Parse(raw string) (Output, error) {
	body := unfence(raw)

	var decoded rawOutput
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return Output{}, domain.NewError(domain.KindExtraction, "extract.Parse", "response is not valid JSON", err)
	}

	out := Output{
		Entities:      make([]ExtractedEntity, 0, len(decoded.Entities)),
		Relationships: make([]ExtractedRelationship, 0, len(decoded.Relationships)),
	}

	for _, e := range decoded.Entities {
		if strings.TrimSpace(e.Name) == "" {
			return Output{}, domain.NewError(domain.KindExtraction, "extract.Parse", "entity missing non-empty name", nil)
		}
		if !domain.IsValidLabel(e.Label) {
			return Output{}, domain.NewError(domain.KindExtraction, "extract.Parse", "entity label \""+e.Label+"\" is not identifier-shaped", nil)
		}
		props := e.Properties
		if props == nil {
			props = map[string]any{}
		}
		out.Entities = append(out.Entities, ExtractedEntity{Label: e.Label, Name: e.Name, Properties: props})
	}

	seen := make(map[string]struct{}, len(decoded.Relationships))
	for _, r := range decoded.Relationships {
		if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" {
			return Output{}, domain.NewError(domain.KindExtraction, "extract.Parse", "relationship missing from/to", nil)
		}
		if !domain.IsValidRelationshipType(r.Type) {
			return Output{}, domain.NewError(domain.KindExtraction, "extract.Parse", "relationship type \""+r.Type+"\" is not UPPER_SNAKE_CASE", nil)
		}
		if r.From == r.To {
			continue // drop self-referential relationships rather than fail the whole extraction
		}
		key := r.From + "\x00" + r.To + "\x00" + r.Type
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		props := r.Properties
		if props == nil {
			props = map[string]any{}
		}
		out.Relationships = append(out.Relationships, ExtractedRelationship{From: r.From, To: r.To, Type: r.Type, Properties: props})
	}

	return out, nil
}
