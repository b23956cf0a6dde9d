package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationResult is the return shape of Validate per spec.md §4.9:
// {valid, errors[], warnings[]}.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

var supportedDatabaseTypes = []string{"neo4j", "memory"}
var supportedEmbeddingTypes = []string{"openai", "fake"}
var supportedLLMTypes = []string{"openai", "anthropic", "gemini", "ollama", "deepseek", "fake"}

var neo4jURISchemes = []string{"bolt://", "bolt+s://", "neo4j://", "neo4j+s://"}

var structValidator = validator.New()

// Validate checks cfg per spec.md §4.9 and returns a ValidationResult. It
// never panics and never returns an error; shape problems are reported as
// entries in Errors, non-fatal concerns as entries in Warnings.
func Validate(cfg Config) ValidationResult {
	var errs, warnings []string

	if err := structValidator.Struct(cfg); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			errs = append(errs, fmt.Sprintf("%s is required", fe.Namespace()))
		}
	}

	dbErrs, dbWarnings := validateDatabase(cfg.Database)
	errs = append(errs, dbErrs...)
	warnings = append(warnings, dbWarnings...)

	embErrs, embWarnings := validateProvider("providers.embedding", cfg.Providers.Embedding, supportedEmbeddingTypes)
	errs = append(errs, embErrs...)
	warnings = append(warnings, embWarnings...)

	llmErrs, llmWarnings := validateProvider("providers.llm", cfg.Providers.LLM, supportedLLMTypes)
	errs = append(errs, llmErrs...)
	warnings = append(warnings, llmWarnings...)

	if cfg.Scope != nil {
		errs = append(errs, validateScope(*cfg.Scope)...)
	}

	return ValidationResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}

func validateDatabase(db DatabaseConfig) (errs, warnings []string) {
	if !contains(supportedDatabaseTypes, db.Type) {
		errs = append(errs, fmt.Sprintf("database.type %q is not supported; supported types are %s", db.Type, strings.Join(supportedDatabaseTypes, ", ")))
		return errs, warnings
	}

	switch db.Type {
	case "neo4j":
		uri, _ := db.Config["uri"].(string)
		if strings.TrimSpace(uri) == "" {
			errs = append(errs, "database.config.uri is required for type \"neo4j\"")
			break
		}
		if !hasAnyPrefix(uri, neo4jURISchemes) {
			warnings = append(warnings, fmt.Sprintf("database.config.uri %q does not use a recognised neo4j scheme (%s)", uri, strings.Join(neo4jURISchemes, ", ")))
		}
	case "memory":
		// no required fields
	}
	return errs, warnings
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func validateProvider(path string, p ProviderConfig, supported []string) (errs, warnings []string) {
	if !contains(supported, p.Type) {
		errs = append(errs, fmt.Sprintf("%s.type %q is not supported; supported types are %s", path, p.Type, strings.Join(supported, ", ")))
		return errs, warnings
	}

	if p.Type == "fake" {
		return errs, warnings
	}

	apiKey, _ := p.Config["apiKey"].(string)
	if strings.TrimSpace(apiKey) == "" {
		errs = append(errs, fmt.Sprintf("%s.config.apiKey is required for type %q", path, p.Type))
	}
	model, _ := p.Config["model"].(string)
	if strings.TrimSpace(model) == "" {
		errs = append(errs, fmt.Sprintf("%s.config.model is required for type %q", path, p.Type))
	}
	return errs, warnings
}

func validateScope(s ScopeConfig) []string {
	var errs []string
	if strings.TrimSpace(s.ID) == "" {
		errs = append(errs, "scope.id must be non-empty")
	}
	if strings.TrimSpace(s.Type) == "" {
		errs = append(errs, "scope.type must be non-empty")
	}
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "scope.name must be non-empty")
	}
	return errs
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
