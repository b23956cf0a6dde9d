package respond

import (
	"time"

	"github.com/Glossick/akasha-sub001/pkg/metrics"
)

// Registry is the process-wide Prometheus-compatible metrics surface: every
// ask call observes its stage durations here regardless of whether the
// caller asked for per-call Statistics in its response. Every metric it
// exposes carries the "akasha_" namespace prefix.
var Registry = metrics.New("akasha")

var (
	searchDuration   = Registry.Histogram("ask_search_seconds", "vector search stage duration", nil)
	subgraphDuration = Registry.Histogram("ask_subgraph_seconds", "subgraph retrieval stage duration", nil)
	generateDuration = Registry.Histogram("ask_generate_seconds", "LLM generation stage duration", nil)
	totalDuration    = Registry.Histogram("ask_total_seconds", "end-to-end ask duration", nil)
)

// Statistics is the optional per-call timing/count breakdown returned from
// ask when includeStats is set, per spec.md §4.8 step 9.
type Statistics struct {
	SearchMs          float64 `json:"searchMs"`
	SubgraphMs        float64 `json:"subgraphMs"`
	GenerationMs      float64 `json:"generationMs"`
	TotalMs           float64 `json:"totalMs"`
	EntityCount       int     `json:"entityCount"`
	RelationshipCount int     `json:"relationshipCount"`
	DocumentCount     int     `json:"documentCount"`
}

// StageTimer tracks the wall-clock span of one ask pipeline stage.
type StageTimer struct {
	start time.Time
}

// StartStage begins timing a stage.
func StartStage() StageTimer {
	return StageTimer{start: time.Now()}
}

// StopMs returns the elapsed milliseconds since StartStage and observes the
// duration into hist so process-wide metrics stay current.
func (s StageTimer) StopMs(hist *metrics.Histogram) float64 {
	elapsed := time.Since(s.start)
	hist.Since(s.start)
	return float64(elapsed.Microseconds()) / 1000.0
}

// SearchHistogram, SubgraphHistogram, GenerateHistogram, TotalHistogram
// expose the package-level histograms so callers can pass them to StopMs
// without importing pkg/metrics directly.
func SearchHistogram() *metrics.Histogram   { return searchDuration }
func SubgraphHistogram() *metrics.Histogram { return subgraphDuration }
func GenerateHistogram() *metrics.Histogram { return generateDuration }
func TotalHistogram() *metrics.Histogram    { return totalDuration }
