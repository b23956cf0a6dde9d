package llm

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/Glossick/akasha-sub001/pkg/fn"
	"github.com/Glossick/akasha-sub001/pkg/resilience"
)

var _ Provider = (*AnyLLMProvider)(nil)

// AnyLLMProvider implements Provider by wrapping any-llm-go, dispatching to
// one of several backend SDKs by provider name.
type AnyLLMProvider struct {
	backend anyllmlib.Provider
	model   string
	name    string
	breaker *resilience.Breaker
	limiter *resilience.Limiter
}

// WithRateLimit caps outbound generation calls to rps requests per second
// with the given burst capacity, ahead of the circuit breaker tripping on
// hard failures. Returns the receiver for chaining after New.
func (p *AnyLLMProvider) WithRateLimit(rps float64, burst int) *AnyLLMProvider {
	p.limiter = resilience.NewLimiter(resilience.LimiterOpts{Rate: rps, Burst: burst})
	return p
}

// New creates a Provider backed by the given provider name (one of
// "openai", "anthropic", "gemini", "ollama", "deepseek") and model. If no
// API key option is supplied, the underlying backend falls back to its
// usual environment variable (OPENAI_API_KEY, ANTHROPIC_API_KEY, ...).
func New(providerName, model string, opts ...anyllmlib.Option) (*AnyLLMProvider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("llm: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("llm: model must not be empty")
	}

	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: create %q backend: %w", providerName, err)
	}

	return &AnyLLMProvider{
		backend: backend,
		model:   model,
		name:    strings.ToLower(providerName),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
	}, nil
}

// NewOpenAI creates a Provider backed by OpenAI.
func NewOpenAI(model string, opts ...anyllmlib.Option) (*AnyLLMProvider, error) {
	return New("openai", model, opts...)
}

// NewAnthropic creates a Provider backed by Anthropic.
func NewAnthropic(model string, opts ...anyllmlib.Option) (*AnyLLMProvider, error) {
	return New("anthropic", model, opts...)
}

// NewGemini creates a Provider backed by Google Gemini.
func NewGemini(model string, opts ...anyllmlib.Option) (*AnyLLMProvider, error) {
	return New("gemini", model, opts...)
}

// NewOllama creates a Provider backed by a local Ollama instance.
func NewOllama(model string, opts ...anyllmlib.Option) (*AnyLLMProvider, error) {
	return New("ollama", model, opts...)
}

// NewDeepSeek creates a Provider backed by DeepSeek.
func NewDeepSeek(model string, opts ...anyllmlib.Option) (*AnyLLMProvider, error) {
	return New("deepseek", model, opts...)
}

func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, deepseek", providerName)
	}
}

// Generate implements Provider.
func (p *AnyLLMProvider) Generate(ctx context.Context, prompt, grounding, systemPrompt string, temperature float64) (string, error) {
	call := fn.Stage[anyllmlib.CompletionParams, string](func(ctx context.Context, params anyllmlib.CompletionParams) fn.Result[string] {
		resp, err := p.backend.Completion(ctx, params)
		if err != nil {
			return fn.Err[string](err)
		}
		if len(resp.Choices) == 0 {
			return fn.Err[string](fmt.Errorf("llm: empty choices in response"))
		}
		return fn.Ok(resp.Choices[0].Message.ContentString())
	})

	stage := resilience.BreakerStage(p.breaker, call)
	if p.limiter != nil {
		stage = resilience.LimiterStageWait(p.limiter, stage)
	}

	params := p.buildParams(prompt, grounding, systemPrompt, temperature)
	res := fn.Retry(ctx, fn.DefaultRetry, func(ctx context.Context) fn.Result[string] {
		return stage(ctx, params)
	})

	result, err := res.Unwrap()
	if err != nil {
		return "", NewFailure("generate", fmt.Sprintf("provider=%s model=%s", p.name, p.model), err)
	}
	return result, nil
}

// ProviderName implements Provider.
func (p *AnyLLMProvider) ProviderName() string { return p.name }

// Model implements Provider.
func (p *AnyLLMProvider) Model() string { return p.model }

func (p *AnyLLMProvider) buildParams(prompt, grounding, systemPrompt string, temperature float64) anyllmlib.CompletionParams {
	var messages []anyllmlib.Message

	if systemPrompt != "" {
		messages = append(messages, anyllmlib.Message{
			Role:    anyllmlib.RoleSystem,
			Content: systemPrompt,
		})
	}

	userContent := prompt
	if grounding != "" {
		userContent = grounding + "\n\n" + prompt
	}
	messages = append(messages, anyllmlib.Message{
		Role:    anyllmlib.RoleUser,
		Content: userContent,
	})

	params := anyllmlib.CompletionParams{
		Model:    p.model,
		Messages: messages,
	}
	if temperature != 0 {
		t := temperature
		params.Temperature = &t
	}
	return params
}
