package akasha

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Glossick/akasha-sub001/engine/config"
	"github.com/Glossick/akasha-sub001/engine/domain"
	"github.com/Glossick/akasha-sub001/engine/embedding"
	"github.com/Glossick/akasha-sub001/engine/events"
	"github.com/Glossick/akasha-sub001/engine/extract"
	"github.com/Glossick/akasha-sub001/engine/graph"
	"github.com/Glossick/akasha-sub001/engine/llm"
)

// Akasha is one configured instance of the engine: a bound database,
// embedding provider, LLM provider, extraction template, scope, and event
// emitter. All public methods are safe for concurrent use (spec.md §5) and
// share the same underlying provider connections.
type Akasha struct {
	graph    graph.Provider
	embedder embedding.Provider
	llm      llm.Provider
	template extract.Template
	events   *events.Emitter
	scope    *domain.Scope
	logger   *slog.Logger
}

// Option customizes a New call beyond what Config expresses.
type Option func(*akashaOptions)

type akashaOptions struct {
	logger      *slog.Logger
	handlers    map[string]events.Handler
	neo4jDriver neo4j.DriverWithContext
	onPanic     func(events.Type, any)
}

// WithLogger threads a *slog.Logger through every pipeline stage. When
// omitted, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *akashaOptions) { o.logger = l }
}

// WithEventHandlers resolves EventsConfig.Handlers[i].Handler name strings
// against a caller-supplied registry at construction time, since a JSON
// configuration surface cannot itself carry a function value.
func WithEventHandlers(handlers map[string]events.Handler) Option {
	return func(o *akashaOptions) { o.handlers = handlers }
}

// WithNeo4jDriver supplies an already-constructed driver instead of having
// New dial one from Config.Database.Config's uri/username/password keys —
// useful for pooling one driver across multiple Akasha instances/scopes.
func WithNeo4jDriver(driver neo4j.DriverWithContext) Option {
	return func(o *akashaOptions) { o.neo4jDriver = driver }
}

// WithEventPanicHandler overrides how a handler panic is reported; default
// logs at Error via the instance's logger.
func WithEventPanicHandler(f func(events.Type, any)) Option {
	return func(o *akashaOptions) { o.onPanic = f }
}

// New validates cfg (engine/config.Validate) and constructs an Akasha
// instance, dialing the configured database, embedding, and LLM providers.
// Configuration failures are surfaced here, per spec.md §4.12, before any
// provider connection is attempted.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Akasha, error) {
	result := config.Validate(cfg)
	if !result.Valid {
		return nil, domain.NewError(domain.KindValidation, "akasha.New", fmt.Sprintf("invalid configuration: %v", result.Errors), nil)
	}

	o := &akashaOptions{}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, w := range result.Warnings {
		logger.Warn("akasha: configuration warning", "warning", w)
	}

	gp, err := buildGraphProvider(cfg.Database, o)
	if err != nil {
		return nil, err
	}
	if err := gp.Connect(ctx); err != nil {
		return nil, err
	}

	ep, err := buildEmbeddingProvider(cfg.Providers.Embedding)
	if err != nil {
		return nil, err
	}

	lp, err := buildLLMProvider(cfg.Providers.LLM)
	if err != nil {
		return nil, err
	}

	if err := gp.EnsureVectorIndex(ctx, ep.Dimensions()); err != nil {
		return nil, err
	}

	template := extract.Default()
	if cfg.ExtractionPrompt != nil {
		template = extract.Merge(*cfg.ExtractionPrompt)
	}

	var emitter *events.Emitter
	if cfg.EventsEnabled() {
		onPanic := o.onPanic
		if onPanic == nil {
			onPanic = func(t events.Type, r any) {
				logger.Error("akasha: event handler panicked", "event_type", t, "recovered", r)
			}
		}
		emitter = events.New(onPanic)
		if cfg.Events != nil {
			for _, h := range cfg.Events.Handlers {
				handler, ok := o.handlers[h.Handler]
				if !ok {
					logger.Warn("akasha: unresolved event handler name", "handler", h.Handler, "event_type", h.Type)
					continue
				}
				emitter.On(events.Type(h.Type), handler)
			}
		}
	}

	var scope *domain.Scope
	if cfg.Scope != nil {
		scope = &domain.Scope{ID: cfg.Scope.ID, Type: cfg.Scope.Type, Name: cfg.Scope.Name, Metadata: cfg.Scope.Metadata}
	}

	return &Akasha{
		graph:    gp,
		embedder: ep,
		llm:      lp,
		template: template,
		events:   emitter,
		scope:    scope,
		logger:   logger,
	}, nil
}

// Close releases the underlying database connection.
func (a *Akasha) Close(ctx context.Context) error {
	return a.graph.Disconnect(ctx)
}

// ScopeID returns the tenant tag this instance writes and filters by, or
// "" when the instance was constructed without a scope.
func (a *Akasha) ScopeID() string {
	if a.scope == nil {
		return ""
	}
	return a.scope.ID
}

func buildGraphProvider(dbCfg config.DatabaseConfig, o *akashaOptions) (graph.Provider, error) {
	switch dbCfg.Type {
	case "memory":
		return graph.NewMemory(), nil
	case "neo4j":
		if o.neo4jDriver != nil {
			return graph.NewNeo4j(o.neo4jDriver), nil
		}
		uri, _ := dbCfg.Config["uri"].(string)
		username, _ := dbCfg.Config["username"].(string)
		password, _ := dbCfg.Config["password"].(string)
		driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
		if err != nil {
			return nil, domain.NewError(domain.KindDatabase, "akasha.buildGraphProvider", "failed to construct neo4j driver", err)
		}
		return graph.NewNeo4j(driver), nil
	default:
		return nil, domain.NewError(domain.KindValidation, "akasha.buildGraphProvider", fmt.Sprintf("unsupported database type %q", dbCfg.Type), nil)
	}
}

func buildEmbeddingProvider(cfg config.ProviderConfig) (embedding.Provider, error) {
	switch cfg.Type {
	case "fake":
		dims, _ := cfg.Config["dimensions"].(int)
		return embedding.NewFake(dims), nil
	case "openai":
		apiKey, _ := cfg.Config["apiKey"].(string)
		model, _ := cfg.Config["model"].(string)
		var opts []embedding.OpenAIOption
		if dims, ok := cfg.Config["dimensions"].(int); ok && dims > 0 {
			opts = append(opts, embedding.WithDimensions(dims))
		}
		provider, err := embedding.NewOpenAI(apiKey, model, opts...)
		if err != nil {
			return nil, domain.NewError(domain.KindEmbedding, "akasha.buildEmbeddingProvider", "failed to construct openai embedding provider", err)
		}
		return provider, nil
	default:
		return nil, domain.NewError(domain.KindValidation, "akasha.buildEmbeddingProvider", fmt.Sprintf("unsupported embedding provider type %q", cfg.Type), nil)
	}
}

func buildLLMProvider(cfg config.ProviderConfig) (llm.Provider, error) {
	model, _ := cfg.Config["model"].(string)
	switch cfg.Type {
	case "fake":
		return llm.NewFake("stub response"), nil
	case "openai", "anthropic", "gemini", "ollama", "deepseek":
		provider, err := llm.New(cfg.Type, model)
		if err != nil {
			return nil, domain.NewError(domain.KindLLM, "akasha.buildLLMProvider", fmt.Sprintf("failed to construct %s llm provider", cfg.Type), err)
		}
		return provider, nil
	default:
		return nil, domain.NewError(domain.KindValidation, "akasha.buildLLMProvider", fmt.Sprintf("unsupported llm provider type %q", cfg.Type), nil)
	}
}
