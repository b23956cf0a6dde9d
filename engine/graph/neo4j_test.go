package graph

import (
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"

	"github.com/Glossick/akasha-sub001/engine/domain"
)

func TestNewNeo4j_WrapsDriver(t *testing.T) {
	p := NewNeo4j(nil)
	assert.NotNil(t, p.breaker)
}

func TestToFloat64Slice_RoundTrip(t *testing.T) {
	in := []float32{0.5, -1.25, 3}
	out := toFloat64Slice(in)
	assert.Equal(t, []float64{0.5, -1.25, 3}, out)
	assert.Equal(t, in, toFloat32Slice(out))
}

func TestToFloat32Slice_FromAnySlice(t *testing.T) {
	in := []any{float64(1), float64(2.5)}
	out := toFloat32Slice(in)
	assert.Equal(t, []float32{1, 2.5}, out)
}

func TestToFloat32Slice_UnknownTypeReturnsNil(t *testing.T) {
	assert.Nil(t, toFloat32Slice("not a vector"))
}

func TestStringSliceOf_FromAnySlice(t *testing.T) {
	in := []any{"a", "b", 5}
	assert.Equal(t, []string{"a", "b"}, stringSliceOf(in))
}

func TestStringSliceOf_FromNativeSlice(t *testing.T) {
	assert.Equal(t, []string{"x"}, stringSliceOf([]string{"x"}))
}

func TestDocumentToProps_RoundTrip(t *testing.T) {
	validTo := time.Now().Add(time.Hour).UTC()
	doc := domain.Document{
		ScopeID:    "scope-a",
		Text:       "hello",
		ContextIDs: []string{"ctx-1"},
		Metadata:   map[string]any{"source": "manual"},
		RecordedAt: time.Now().UTC(),
		ValidTo:    &validTo,
	}

	props := documentToProps(doc)
	assert.Equal(t, "scope-a", props[domain.PropScopeID])
	assert.Equal(t, []string{"ctx-1"}, props[domain.PropContextIDs])
	assert.Equal(t, "manual", props["metadata_source"])

	props["id"] = "doc-1"
	props["text"] = doc.Text
	node := dbtype.Node{Props: props}

	back := documentFromNode(node)
	assert.Equal(t, "doc-1", back.ID)
	assert.Equal(t, "scope-a", back.ScopeID)
	assert.Equal(t, "hello", back.Text)
	assert.Equal(t, []string{"ctx-1"}, back.ContextIDs)
	assert.Equal(t, "manual", back.Metadata["source"])
	assert.NotNil(t, back.ValidTo)
}

func TestNormalizePage_Defaults(t *testing.T) {
	limit, offset := normalizePage(0, -5)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 0, offset)

	limit, offset = normalizePage(20, 10)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 10, offset)
}

func TestEntityValidAtMatches_NoTemporalMetadataAlwaysValid(t *testing.T) {
	e := domain.Entity{Properties: map[string]any{}}
	assert.True(t, entityValidAtMatches(e, time.Now().Format(time.RFC3339)))
}

func TestEntityValidAtMatches_RespectsValidFrom(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	e := domain.Entity{Properties: map[string]any{domain.PropValidFrom: future}}
	assert.False(t, entityValidAtMatches(e, time.Now().Format(time.RFC3339)))
	assert.True(t, entityValidAtMatches(e, future.Add(time.Hour).Format(time.RFC3339)))
}

