package llm

import (
	"context"
	"fmt"
)

var _ Provider = (*FakeProvider)(nil)

// FakeProvider is a scriptable Provider used by tests. Responses is
// consumed in order by Generate; if exhausted, Generate returns the last
// response repeatedly. Calls records every invocation for assertions.
type FakeProvider struct {
	Responses []string
	Calls     []FakeCall

	next int
}

// FakeCall captures the arguments of one Generate invocation.
type FakeCall struct {
	Prompt       string
	Context      string
	SystemPrompt string
	Temperature  float64
}

// NewFake constructs a FakeProvider that returns responses in order.
func NewFake(responses ...string) *FakeProvider {
	return &FakeProvider{Responses: responses}
}

// Generate implements Provider.
func (p *FakeProvider) Generate(_ context.Context, prompt, context, systemPrompt string, temperature float64) (string, error) {
	p.Calls = append(p.Calls, FakeCall{Prompt: prompt, Context: context, SystemPrompt: systemPrompt, Temperature: temperature})

	if len(p.Responses) == 0 {
		return "", fmt.Errorf("llm/fake: no scripted responses configured")
	}
	idx := p.next
	if idx >= len(p.Responses) {
		idx = len(p.Responses) - 1
	} else {
		p.next++
	}
	return p.Responses[idx], nil
}

// ProviderName implements Provider.
func (p *FakeProvider) ProviderName() string { return "fake" }

// Model implements Provider.
func (p *FakeProvider) Model() string { return "fake-model" }
