package monitor

import "time"

// Build stage names.
const (
	StageLoad       = "load"
	StageCombine    = "combine"
	StageVectorize  = "vectorize"
	StageSimilarity = "similarity"
	StageSnapshot   = "snapshot"
)

// StageMetrics times one stage of the catalog build.
type StageMetrics struct {
	Stage    string        `json:"stage"`
	Items    int           `json:"items"`
	Duration time.Duration `json:"duration"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
}

// BuildMetrics aggregates every stage recorded for one build.
type BuildMetrics struct {
	Fingerprint   string                  `json:"fingerprint"`
	TotalDuration time.Duration           `json:"total_duration"`
	Stages        map[string]StageMetrics `json:"stages"`
	StartTime     time.Time               `json:"start_time"`
	EndTime       time.Time               `json:"end_time"`
}

// Failed reports whether any stage failed.
func (m BuildMetrics) Failed() bool {
	for _, s := range m.Stages {
		if !s.Success {
			return true
		}
	}
	return false
}

// Time runs fn as stage and records its duration and outcome.
func Time(c MetricsCollector, stage string, items int, fn func() error) error {
	start := time.Now()
	err := fn()
	m := StageMetrics{
		Stage:    stage,
		Items:    items,
		Duration: time.Since(start),
		Success:  err == nil,
	}
	if err != nil {
		m.Error = err.Error()
	}
	c.Record(m)
	return err
}
