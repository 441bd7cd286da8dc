package monitor

import (
	"sync"
	"time"
)

type MetricsCollector interface {
	Record(metrics StageMetrics)
	Flush() BuildMetrics
}

// InMemoryCollector keeps the latest timing per stage and mirrors each
// record into the build stage histogram.
type InMemoryCollector struct {
	mu          sync.RWMutex
	fingerprint string
	stages      map[string]StageMetrics
	startTime   time.Time
}

func NewInMemoryCollector(fingerprint string) *InMemoryCollector {
	return &InMemoryCollector{
		fingerprint: fingerprint,
		stages:      make(map[string]StageMetrics),
		startTime:   time.Now(),
	}
}

func (c *InMemoryCollector) Record(metrics StageMetrics) {
	BuildStageSeconds.WithLabelValues(metrics.Stage).Observe(metrics.Duration.Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages[metrics.Stage] = metrics
}

func (c *InMemoryCollector) Flush() BuildMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total time.Duration
	stages := make(map[string]StageMetrics, len(c.stages))
	for k, v := range c.stages {
		stages[k] = v
		total += v.Duration
	}

	return BuildMetrics{
		Fingerprint:   c.fingerprint,
		TotalDuration: total,
		Stages:        stages,
		StartTime:     c.startTime,
		EndTime:       time.Now(),
	}
}

// SetFingerprint labels the build once the dataset has been read.
func (c *InMemoryCollector) SetFingerprint(fp string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fingerprint = fp
}

func (c *InMemoryCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = make(map[string]StageMetrics)
	c.startTime = time.Now()
}

type NoOpCollector struct{}

func NewNoOpCollector() *NoOpCollector {
	return &NoOpCollector{}
}

func (c *NoOpCollector) Record(metrics StageMetrics) {}

func (c *NoOpCollector) Flush() BuildMetrics {
	return BuildMetrics{}
}
