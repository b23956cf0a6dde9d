// Package llm defines the LLMProvider contract (spec.md §4.2): prompted
// text-to-text generation used for both entity/relationship extraction and
// answer generation, plus a reference implementation backed by any-llm-go's
// multi-backend dispatch.
//
// Implementations must be safe for concurrent use: extraction and answer
// generation may call the same Provider instance from concurrent goroutines.
package llm

import "context"

// Provider is the abstraction over any LLM backend.
type Provider interface {
	// Generate sends a single prompt, with optional grounding context and
	// system prompt, to the model and returns the full textual response.
	// Generate does not parse or validate structure in the response — that
	// is the caller's job (see engine/extract for JSON extraction parsing).
	Generate(ctx context.Context, prompt, context, systemPrompt string, temperature float64) (string, error)

	// ProviderName identifies the backend (e.g. "openai", "anthropic").
	ProviderName() string

	// Model returns the provider-specific model identifier in use.
	Model() string
}

// Default generation temperatures per spec.md §4.2: extraction favors
// determinism, answer generation favors fluency.
const (
	ExtractionTemperature = 0.3
	AnswerTemperature     = 0.7
)
