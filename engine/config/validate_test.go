package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Database: DatabaseConfig{Type: "neo4j", Config: map[string]any{"uri": "neo4j+s://db.example.com"}},
		Providers: ProvidersConfig{
			Embedding: ProviderConfig{Type: "openai", Config: map[string]any{"apiKey": "sk-x", "model": "text-embedding-3-small"}},
			LLM:       ProviderConfig{Type: "anthropic", Config: map[string]any{"apiKey": "sk-y", "model": "claude"}},
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	result := Validate(validConfig())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_UnknownDatabaseTypeListsSupported(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Type = "mongo"
	result := Validate(cfg)
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "neo4j")
}

func TestValidate_Neo4jMissingURI(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Config = map[string]any{}
	result := Validate(cfg)
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors, "database.config.uri is required for type \"neo4j\"")
}

func TestValidate_Neo4jNonStandardSchemeWarnsNotFails(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Config["uri"] = "http://db.example.com"
	result := Validate(cfg)
	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Warnings)
}

func TestValidate_MissingEmbeddingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.Providers.Embedding.Config = map[string]any{"model": "text-embedding-3-small"}
	result := Validate(cfg)
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "apiKey")
}

func TestValidate_FakeProviderSkipsCredentialChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Providers.Embedding = ProviderConfig{Type: "fake", Config: map[string]any{}}
	result := Validate(cfg)
	assert.True(t, result.Valid)
}

func TestValidate_ScopeRequiresAllFields(t *testing.T) {
	cfg := validConfig()
	cfg.Scope = &ScopeConfig{ID: "", Type: "tenant", Name: "acme"}
	result := Validate(cfg)
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors, "scope.id must be non-empty")
}

func TestConfig_EventsEnabledDefaultsTrue(t *testing.T) {
	cfg := validConfig()
	assert.True(t, cfg.EventsEnabled())

	disabled := false
	cfg.Events = &EventsConfig{Enabled: &disabled}
	assert.False(t, cfg.EventsEnabled())
}
