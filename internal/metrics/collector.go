// Package metrics provides in-memory runtime statistics for store operations.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Errors    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Name        string  `json:"name" yaml:"name"`
	Count       int64   `json:"count" yaml:"count"`
	Errors      int64   `json:"errors" yaml:"errors"`
	TotalTimeMs int64   `json:"total_time_ms" yaml:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms" yaml:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms" yaml:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms" yaml:"max_time_ms"`
}

// Snapshot represents the collected statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64             `json:"uptime_seconds" yaml:"uptime_seconds"`
	Operations    []OperationSnapshot `json:"operations" yaml:"operations"`
	Counters      map[string]int64    `json:"counters" yaml:"counters"`
}

// Operation names for the collector.
const (
	OpJobSave      = "job_save"
	OpJobLoad      = "job_load"
	OpJobDelete    = "job_delete"
	OpJobList      = "job_list"
	OpJobListIDs   = "job_list_ids"
	OpFileUpload   = "file_upload"
	OpFileDownload = "file_download"
	OpFileDelete   = "file_delete"
	OpFileExists   = "file_exists"
)

// Counter names for the collector.
const (
	// CounterDecodeSkip counts document fields left at their default because
	// the stored value was invalid.
	CounterDecodeSkip = "decode_skip"
	// CounterAccessDenied counts ownership check failures.
	CounterAccessDenied = "access_denied"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe and a nil *Collector discards everything.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
	counters  map[string]int64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
		counters:  make(map[string]int64),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records one call of op. A non-nil err also counts as an error.
func (c *Collector) RecordTiming(op string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration
	if err != nil {
		m.Errors++
	}

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Add increments a named counter by n.
func (c *Collector) Add(counter string, n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.counters[counter] += n
	c.mu.Unlock()
}

// Counter returns the current value of a named counter.
func (c *Collector) Counter(counter string) int64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counters[counter]
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(name string, m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}
	return &OperationSnapshot{
		Name:        name,
		Count:       m.Count,
		Errors:      m.Errors,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics, operations
// sorted by name.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{Counters: map[string]int64{}}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Counters:      make(map[string]int64, len(c.counters)),
	}
	for name, m := range c.ops {
		if s := snapshotOp(name, m); s != nil {
			snap.Operations = append(snap.Operations, *s)
		}
	}
	sort.Slice(snap.Operations, func(i, j int) bool {
		return snap.Operations[i].Name < snap.Operations[j].Name
	})
	for k, v := range c.counters {
		snap.Counters[k] = v
	}
	return snap
}
