package respond

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStageTimer_StopMsReturnsPositiveElapsed(t *testing.T) {
	timer := StartStage()
	time.Sleep(time.Millisecond)
	ms := timer.StopMs(SearchHistogram())
	assert.Greater(t, ms, 0.0)
}

func TestStageTimer_ObservationAppearsInRender(t *testing.T) {
	timer := StartStage()
	timer.StopMs(GenerateHistogram())
	assert.Contains(t, Registry.Render(), "akasha_ask_generate_seconds")
}
