package embedding

import (
	"context"
	"hash/fnv"
)

var _ Provider = (*FakeProvider)(nil)

// FakeProvider is a deterministic, dependency-free Provider used by tests
// and examples. It derives a vector from a hash of the input text so that
// identical text always embeds to the same vector, without calling any
// network API.
type FakeProvider struct {
	dims  int
	model string
}

// NewFake constructs a FakeProvider producing vectors of the given
// dimensionality.
func NewFake(dims int) *FakeProvider {
	if dims <= 0 {
		dims = 8
	}
	return &FakeProvider{dims: dims, model: "fake-embed-v1"}
}

// Embed implements Provider.
func (p *FakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	return deterministicVector(text, p.dims), nil
}

// EmbedBatch implements Provider.
func (p *FakeProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = deterministicVector(t, p.dims)
	}
	return out, nil
}

// Dimensions implements Provider.
func (p *FakeProvider) Dimensions() int { return p.dims }

// ProviderName implements Provider.
func (p *FakeProvider) ProviderName() string { return "fake" }

// Model implements Provider.
func (p *FakeProvider) Model() string { return p.model }

func deterministicVector(text string, dims int) []float32 {
	out := make([]float32, dims)
	h := fnv.New64a()
	for i := 0; i < dims; i++ {
		h.Reset()
		_, _ = h.Write([]byte(text))
		_, _ = h.Write([]byte{byte(i)})
		sum := h.Sum64()
		out[i] = float32(sum%2000)/1000 - 1 // range [-1, 1)
	}
	return out
}
