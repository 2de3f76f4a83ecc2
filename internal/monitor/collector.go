// Package monitor tracks timing and outcome metrics of session operations.
package monitor

import (
	"time"

	"github.com/yildizm/CodeLens/internal/analysis"
)

// AnalysisMetrics aggregates the content of successful analyses
type AnalysisMetrics struct {
	Results         int64                    `json:"results"`
	TokensProcessed int64                    `json:"tokens_processed"`
	CleanResults    int64                    `json:"clean_results"`
	StageErrors     map[analysis.Stage]int64 `json:"stage_errors"`
}

// Snapshot is a point-in-time copy of all metrics
type Snapshot struct {
	Timestamp  time.Time          `json:"timestamp"`
	Uptime     time.Duration      `json:"uptime_ns"`
	Memory     MemoryMetrics      `json:"memory"`
	Runtime    RuntimeMetrics     `json:"runtime"`
	Operations []OperationMetrics `json:"operations"`
	Analysis   AnalysisMetrics    `json:"analysis"`
}

// Operation returns the metrics of op
func (s Snapshot) Operation(op OperationType) OperationMetrics {
	for _, m := range s.Operations {
		if m.Operation == op {
			return m
		}
	}
	return OperationMetrics{Operation: op}
}

type operationStats struct {
	timer     *Timer
	successes *Counter
	failures  *Counter
}

// Collector records operation metrics. The zero value is not usable; call New.
// All methods are safe for concurrent use.
type Collector struct {
	started    time.Time
	operations map[OperationType]*operationStats

	results     *Counter
	tokens      *Counter
	clean       *Counter
	stageErrors map[analysis.Stage]*Counter
}

// New creates a collector for every tracked operation
func New() *Collector {
	c := &Collector{
		started:     time.Now(),
		operations:  make(map[OperationType]*operationStats, len(Operations)),
		results:     NewCounter("analysis.results"),
		tokens:      NewCounter("analysis.tokens"),
		clean:       NewCounter("analysis.clean"),
		stageErrors: make(map[analysis.Stage]*Counter, len(analysis.Stages)),
	}

	for _, op := range Operations {
		c.operations[op] = &operationStats{
			timer:     NewTimer(string(op)),
			successes: NewCounter(string(op) + ".success"),
			failures:  NewCounter(string(op) + ".error"),
		}
	}
	for _, stage := range analysis.Stages {
		c.stageErrors[stage] = NewCounter("analysis." + stage.String() + ".errors")
	}

	return c
}

// Track runs fn and records its duration and outcome under operation.
// Unknown operations run untracked.
func (c *Collector) Track(operation OperationType, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)

	stats, ok := c.operations[operation]
	if !ok {
		return err
	}

	stats.timer.Record(duration)
	if err != nil {
		stats.failures.Inc()
	} else {
		stats.successes.Inc()
	}
	return err
}

// RecordResult adds the content of a successful analysis
func (c *Collector) RecordResult(result *analysis.Result) {
	if result == nil {
		return
	}

	c.results.Inc()
	c.tokens.Add(int64(len(result.Tokens)))
	if result.ErrorCount() == 0 {
		c.clean.Inc()
	}
	for _, stage := range analysis.Stages {
		c.stageErrors[stage].Add(int64(len(result.Errors(stage))))
	}
}

// Snapshot returns the current metrics
func (c *Collector) Snapshot() Snapshot {
	now := time.Now()

	snapshot := Snapshot{
		Timestamp:  now,
		Uptime:     now.Sub(c.started),
		Memory:     collectMemory(),
		Runtime:    collectRuntime(),
		Operations: make([]OperationMetrics, 0, len(Operations)),
		Analysis: AnalysisMetrics{
			Results:         c.results.Get(),
			TokensProcessed: c.tokens.Get(),
			CleanResults:    c.clean.Get(),
			StageErrors:     make(map[analysis.Stage]int64, len(analysis.Stages)),
		},
	}

	for _, op := range Operations {
		stats := c.operations[op]
		snapshot.Operations = append(snapshot.Operations, OperationMetrics{
			Operation:    op,
			Count:        stats.timer.Count(),
			SuccessCount: stats.successes.Get(),
			ErrorCount:   stats.failures.Get(),
			TotalTime:    stats.timer.TotalTime(),
			MinTime:      stats.timer.MinTime(),
			MaxTime:      stats.timer.MaxTime(),
			LastTime:     stats.timer.LastTime(),
		})
	}
	for stage, counter := range c.stageErrors {
		snapshot.Analysis.StageErrors[stage] = counter.Get()
	}

	return snapshot
}
