package llm

import "testing"

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New("carrier-pigeon", "model-1")
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestNew_EmptyProviderName(t *testing.T) {
	if _, err := New("", "gpt-4o"); err == nil {
		t.Fatal("expected error for empty provider name")
	}
}

func TestNew_EmptyModel(t *testing.T) {
	if _, err := New("openai", ""); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestNewOpenAI_SetsProviderName(t *testing.T) {
	p, err := NewOpenAI("gpt-4o-mini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ProviderName() != "openai" {
		t.Errorf("expected openai, got %s", p.ProviderName())
	}
	if p.Model() != "gpt-4o-mini" {
		t.Errorf("expected gpt-4o-mini, got %s", p.Model())
	}
}

func TestNewAnthropic_SetsProviderName(t *testing.T) {
	p, err := NewAnthropic("claude-3-5-sonnet-latest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ProviderName() != "anthropic" {
		t.Errorf("expected anthropic, got %s", p.ProviderName())
	}
}
