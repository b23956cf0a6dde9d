package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Glossick/akasha-sub001/pkg/fn"
	"github.com/Glossick/akasha-sub001/pkg/resilience"
)

// DefaultModel is the default OpenAI embeddings model used when the
// provider config leaves Model empty.
const DefaultModel = oai.EmbeddingModelTextEmbedding3Small

var _ Provider = (*OpenAIProvider)(nil)

// OpenAIProvider implements Provider using the OpenAI embeddings API.
type OpenAIProvider struct {
	client     oai.Client
	model      string
	dimensions int
	breaker    *resilience.Breaker
	limiter    *resilience.Limiter
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*openaiConfig)

type openaiConfig struct {
	baseURL        string
	dimensions     int
	timeout        time.Duration
	rateLimitRPS   float64
	rateLimitBurst int
}

// WithBaseURL overrides the default OpenAI API base URL (used to point at
// Azure OpenAI or a self-hosted-compatible endpoint).
func WithBaseURL(url string) OpenAIOption {
	return func(c *openaiConfig) { c.baseURL = url }
}

// WithDimensions overrides the dimensionality inferred from the model name.
// Required for models that support variable output dimensionality.
func WithDimensions(d int) OpenAIOption {
	return func(c *openaiConfig) { c.dimensions = d }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openaiConfig) { c.timeout = d }
}

// WithRateLimit caps outbound embedding calls to rps requests per second
// with the given burst capacity, ahead of the circuit breaker tripping on
// hard failures. Unset (the zero value) disables rate limiting.
func WithRateLimit(rps float64, burst int) OpenAIOption {
	return func(c *openaiConfig) { c.rateLimitRPS = rps; c.rateLimitBurst = burst }
}

// NewOpenAI constructs a Provider backed by the OpenAI embeddings API. If
// model is empty, DefaultModel is used. Embedding calls are retried with
// backoff; each attempt first waits on the optional rate limiter and then
// runs through a circuit breaker, so every failed attempt counts toward
// tripping it: spec.md §4.12 leaves retry/backoff/circuit-breaking to the provider
// implementation, not the core.
func NewOpenAI(apiKey, model string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding/openai: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &openaiConfig{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	dims := cfg.dimensions
	if dims == 0 {
		dims = modelDimensions(model)
	}

	var limiter *resilience.Limiter
	if cfg.rateLimitRPS > 0 {
		limiter = resilience.NewLimiter(resilience.LimiterOpts{Rate: cfg.rateLimitRPS, Burst: cfg.rateLimitBurst})
	}

	return &OpenAIProvider{
		client:     oai.NewClient(reqOpts...),
		model:      model,
		dimensions: dims,
		breaker:    resilience.NewBreaker(resilience.DefaultBreakerOpts),
		limiter:    limiter,
	}, nil
}

// Embed implements Provider.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch implements Provider.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	call := fn.Stage[[]string, [][]float32](func(ctx context.Context, texts []string) fn.Result[[][]float32] {
		resp, err := p.client.Embeddings.New(ctx, oai.EmbeddingNewParams{
			Model: p.model,
			Input: oai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		})
		if err != nil {
			return fn.Err[[][]float32](err)
		}
		if len(resp.Data) != len(texts) {
			return fn.Err[[][]float32](fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
		}
		batch := make([][]float32, len(texts))
		for _, e := range resp.Data {
			if int(e.Index) >= len(texts) {
				return fn.Err[[][]float32](fmt.Errorf("unexpected embedding index %d", e.Index))
			}
			batch[e.Index] = float64ToFloat32(e.Embedding)
		}
		return fn.Ok(batch)
	})

	stage := resilience.BreakerStage(p.breaker, call)
	if p.limiter != nil {
		stage = resilience.LimiterStageWait(p.limiter, stage)
	}

	res := fn.Retry(ctx, fn.DefaultRetry, func(ctx context.Context) fn.Result[[][]float32] {
		return stage(ctx, texts)
	})

	result, err := res.Unwrap()
	if err != nil {
		return nil, NewFailure("embedBatch", fmt.Sprintf("%d texts", len(texts)), err)
	}
	return result, nil
}

// Dimensions implements Provider.
func (p *OpenAIProvider) Dimensions() int { return p.dimensions }

// ProviderName implements Provider.
func (p *OpenAIProvider) ProviderName() string { return "openai" }

// Model implements Provider.
func (p *OpenAIProvider) Model() string { return p.model }

func modelDimensions(model string) int {
	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "text-embedding-3-large"):
		return 3072
	case strings.Contains(lower, "text-embedding-3-small"):
		return 1536
	case strings.Contains(lower, "text-embedding-ada-002"):
		return 1536
	default:
		return 1536
	}
}

func float64ToFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
