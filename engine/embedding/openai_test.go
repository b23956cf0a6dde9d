package embedding

import "testing"

func TestModelDimensions_TextEmbedding3Small(t *testing.T) {
	if d := modelDimensions("text-embedding-3-small"); d != 1536 {
		t.Errorf("text-embedding-3-small: expected 1536 dimensions, got %d", d)
	}
}

func TestModelDimensions_TextEmbedding3Large(t *testing.T) {
	if d := modelDimensions("text-embedding-3-large"); d != 3072 {
		t.Errorf("text-embedding-3-large: expected 3072 dimensions, got %d", d)
	}
}

func TestModelDimensions_Ada002(t *testing.T) {
	if d := modelDimensions("text-embedding-ada-002"); d != 1536 {
		t.Errorf("text-embedding-ada-002: expected 1536 dimensions, got %d", d)
	}
}

func TestModelDimensions_Unknown(t *testing.T) {
	if d := modelDimensions("some-future-model"); d <= 0 {
		t.Errorf("unknown model: expected positive dimensions, got %d", d)
	}
}

func TestDimensions_MethodMatchesHelper(t *testing.T) {
	cases := []string{
		"text-embedding-3-small",
		"text-embedding-3-large",
		"text-embedding-ada-002",
	}
	for _, model := range cases {
		p := &OpenAIProvider{model: model, dimensions: modelDimensions(model)}
		if got := p.Dimensions(); got != modelDimensions(model) {
			t.Errorf("model %s: Dimensions() = %d, want %d", model, got, modelDimensions(model))
		}
	}
}

func TestModel_ReturnsConfiguredModel(t *testing.T) {
	cases := []string{
		"text-embedding-3-small",
		"text-embedding-3-large",
		"my-custom-embeddings-model",
	}
	for _, model := range cases {
		p := &OpenAIProvider{model: model}
		if got := p.Model(); got != model {
			t.Errorf("Model() = %q, want %q", got, model)
		}
	}
}

func TestNewOpenAI_DefaultModel(t *testing.T) {
	p, err := NewOpenAI("sk-test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Model() != DefaultModel {
		t.Errorf("expected default model %s, got %s", DefaultModel, p.Model())
	}
}

func TestNewOpenAI_MissingAPIKey(t *testing.T) {
	if _, err := NewOpenAI("", "text-embedding-3-small"); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestNewOpenAI_Options(t *testing.T) {
	_, err := NewOpenAI("sk-test", "text-embedding-3-small",
		WithBaseURL("https://custom.example.com"),
		WithDimensions(2048),
	)
	if err != nil {
		t.Fatalf("unexpected error with valid options: %v", err)
	}
}

func TestFloat64ToFloat32(t *testing.T) {
	in := []float64{1.0, 2.5, -0.5}
	out := float64ToFloat32(in)
	if len(out) != len(in) {
		t.Fatalf("expected %d elements, got %d", len(in), len(out))
	}
	for i, v := range out {
		if expected := float32(in[i]); v != expected {
			t.Errorf("index %d: expected %v, got %v", i, expected, v)
		}
	}
}

func TestProviderName(t *testing.T) {
	p := &OpenAIProvider{}
	if p.ProviderName() != "openai" {
		t.Errorf("expected openai, got %s", p.ProviderName())
	}
}
