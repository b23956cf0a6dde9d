// Package config defines the construction-time configuration surface for
// an Akasha instance and validates it before any provider is dialed.
package config

import (
	"github.com/Glossick/akasha-sub001/engine/extract"
)

// DatabaseConfig selects and configures the graph database backend.
type DatabaseConfig struct {
	Type   string         `json:"type" validate:"required"`
	Config map[string]any `json:"config" validate:"required"`
}

// ProviderConfig selects and configures one embedding or LLM backend.
type ProviderConfig struct {
	Type   string         `json:"type" validate:"required"`
	Config map[string]any `json:"config" validate:"required"`
}

// ProvidersConfig groups the two provider slots the core depends on.
type ProvidersConfig struct {
	Embedding ProviderConfig `json:"embedding" validate:"required"`
	LLM       ProviderConfig `json:"llm" validate:"required"`
}

// ScopeConfig tags every record this instance writes with a tenant.
type ScopeConfig struct {
	ID       string         `json:"id" validate:"required"`
	Type     string         `json:"type" validate:"required"`
	Name     string         `json:"name" validate:"required"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// EventHandlerConfig pre-registers a handler at construction time.
type EventHandlerConfig struct {
	Type    string `json:"type" validate:"required"`
	Handler string `json:"handler" validate:"required"`
}

// EventsConfig controls whether the instance's event emitter is active.
type EventsConfig struct {
	Enabled  *bool                `json:"enabled,omitempty"`
	Handlers []EventHandlerConfig `json:"handlers,omitempty"`
}

// Config is the full construction-time input to an Akasha instance, per
// spec.md §6's configuration surface.
type Config struct {
	Database         DatabaseConfig    `json:"database" validate:"required"`
	Providers        ProvidersConfig   `json:"providers" validate:"required"`
	Scope            *ScopeConfig      `json:"scope,omitempty"`
	ExtractionPrompt *extract.Template `json:"extractionPrompt,omitempty"`
	Events           *EventsConfig     `json:"events,omitempty"`
}

// EventsEnabled reports whether the event emitter should be active,
// defaulting to true when Events is unset or Enabled is unset.
func (c Config) EventsEnabled() bool {
	if c.Events == nil || c.Events.Enabled == nil {
		return true
	}
	return *c.Events.Enabled
}
