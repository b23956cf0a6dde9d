package retrieve

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/Glossick/akasha-sub001/engine/domain"
)

// maxContextTokens bounds the textual context handed to the LLM. Under a
// tight budget, content is truncated in entity -> relationship -> document
// order: document excerpts are dropped first, entity properties survive
// longest.
const maxContextTokens = 50_000

const maxDocumentExcerptChars = 2_000

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// tokenCounter lazily loads the cl100k_base BPE ranks used by OpenAI's chat
// models. If the ranks can't be loaded (offline environment, no cached
// download), every call falls back to a conservative chars/4 estimate
// rather than failing the ask pipeline over a missing tokenizer.
func tokenCounter() func(string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err == nil {
			encoding = enc
		}
	})
	if encoding == nil {
		return func(s string) int { return (len(s) + 3) / 4 }
	}
	return func(s string) int { return len(encoding.Encode(s, nil, nil)) }
}

// contextScope carries the retrieval parameters buildContextText renders
// into its preamble: the scope the answer is grounded in, which named
// contexts (if any) narrowed the search, and which point in time (if any)
// the facts must have been valid at.
type contextScope struct {
	ScopeID  string
	Contexts []string
	ValidAt  string
}

// buildContextText renders a short preamble followed by the retrieved
// entities, relationships, and documents into the flat text block the
// answering prompt grounds on. Entities are written first and documents
// last so that, under writeBudgeted's one-pass token budget, entities
// survive a tight budget and document excerpts are truncated first.
func buildContextText(scope contextScope, docs []domain.Document, entities []domain.Entity, rels []domain.Relationship) string {
	count := tokenCounter()
	var b strings.Builder
	budget := maxContextTokens

	preamble := preambleLines(scope)
	if len(preamble) > 0 {
		budget -= writeBudgeted(&b, preamble, budget, count)
	}

	if len(entities) > 0 && budget > 0 {
		b.WriteString("\nEntities:\n")
		budget -= writeBudgeted(&b, entityLines(entities), budget, count)
	}

	if len(rels) > 0 && budget > 0 {
		names := entityNameIndex(entities)
		b.WriteString("\nRelationships:\n")
		budget -= writeBudgeted(&b, relationshipLines(rels, names), budget, count)
	}

	if len(docs) > 0 && budget > 0 {
		lines := documentLines(docs)
		if count(lines[0]) <= budget {
			b.WriteString("\nRelevant source excerpts:\n")
			budget -= writeBudgeted(&b, lines, budget, count)
		}
	}

	return b.String()
}

// preambleLines renders the scope/context/validAt framing spec.md §4.8 step
// 6 calls for: a short line of framing before the grounded content, omitting
// any field that wasn't set on the request.
func preambleLines(scope contextScope) []string {
	var parts []string
	if scope.ScopeID != "" {
		parts = append(parts, fmt.Sprintf("scope %s", scope.ScopeID))
	}
	if len(scope.Contexts) > 0 {
		parts = append(parts, fmt.Sprintf("contexts %s", strings.Join(scope.Contexts, ", ")))
	}
	if scope.ValidAt != "" {
		parts = append(parts, fmt.Sprintf("as of %s", scope.ValidAt))
	}
	if len(parts) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("The following context is restricted to %s.\n", strings.Join(parts, "; "))}
}

// writeBudgeted appends lines to b until budget tokens have been consumed,
// stopping (not partially writing) the line that would overflow it, and
// returns the number of tokens actually written.
func writeBudgeted(b *strings.Builder, lines []string, budget int, count func(string) int) int {
	written := 0
	for _, line := range lines {
		n := count(line)
		if written+n > budget {
			break
		}
		b.WriteString(line)
		written += n
	}
	return written
}

func documentLines(docs []domain.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		text := d.Text
		if len(text) > maxDocumentExcerptChars {
			text = text[:maxDocumentExcerptChars] + "..."
		}
		out = append(out, fmt.Sprintf("- [%s] %s\n", d.ID, text))
	}
	return out
}

func relationshipLines(rels []domain.Relationship, names map[string]string) []string {
	out := make([]string, 0, len(rels))
	for _, r := range rels {
		from := names[r.From]
		if from == "" {
			from = r.From
		}
		to := names[r.To]
		if to == "" {
			to = r.To
		}
		out = append(out, fmt.Sprintf("- %s %s %s\n", from, r.Type, to))
	}
	return out
}

func entityLines(entities []domain.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		name, _ := e.Properties["name"].(string)
		var props []string
		keys := make([]string, 0, len(e.Properties))
		for k := range e.Properties {
			if k == "name" || domain.IsReservedKey(k) {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			props = append(props, fmt.Sprintf("%s=%v", k, e.Properties[k]))
		}
		line := fmt.Sprintf("- %s (%s)", name, e.Label)
		if len(props) > 0 {
			line += ": " + strings.Join(props, ", ")
		}
		out = append(out, line+"\n")
	}
	return out
}

func entityNameIndex(entities []domain.Entity) map[string]string {
	idx := make(map[string]string, len(entities))
	for _, e := range entities {
		if name, ok := e.Properties["name"].(string); ok {
			idx[e.ID] = name
		}
	}
	return idx
}
