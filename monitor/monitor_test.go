package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCollector(t *testing.T) {
	c := NewInMemoryCollector("")
	c.SetFingerprint("abc")

	c.Record(StageMetrics{Stage: StageCombine, Items: 3, Duration: 2 * time.Millisecond, Success: true})
	c.Record(StageMetrics{Stage: StageVectorize, Items: 3, Duration: 5 * time.Millisecond, Success: true})

	m := c.Flush()
	assert.Equal(t, "abc", m.Fingerprint)
	assert.Len(t, m.Stages, 2)
	assert.Equal(t, 7*time.Millisecond, m.TotalDuration)
	assert.False(t, m.Failed())
	assert.False(t, m.EndTime.Before(m.StartTime))

	c.Reset()
	assert.Empty(t, c.Flush().Stages)
}

func TestTime(t *testing.T) {
	c := NewInMemoryCollector("fp")
	require.NoError(t, Time(c, StageSimilarity, 10, func() error { return nil }))

	boom := errors.New("boom")
	err := Time(c, StageSnapshot, 0, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	m := c.Flush()
	assert.True(t, m.Stages[StageSimilarity].Success)
	assert.Equal(t, 10, m.Stages[StageSimilarity].Items)
	assert.False(t, m.Stages[StageSnapshot].Success)
	assert.Equal(t, "boom", m.Stages[StageSnapshot].Error)
	assert.True(t, m.Failed())
}

func TestNoOpCollector(t *testing.T) {
	c := NewNoOpCollector()
	require.NoError(t, Time(c, StageLoad, 1, func() error { return nil }))
	assert.Empty(t, c.Flush().Stages)
}
