package app

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/indentscope/internal/event"
)

// Metrics tracks application activity.
type Metrics struct {
	// Frame timing
	frameCount   atomic.Uint64
	frameTotalNs atomic.Int64
	frameMaxNs   atomic.Int64
	lastFrameNs  atomic.Int64

	// Input handling
	inputCount atomic.Uint64

	// Config reloads
	reloads      atomic.Uint64
	reloadErrors atomic.Uint64

	// Bus traffic by topic
	eventsMu sync.Mutex
	events   map[event.Topic]uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{events: make(map[event.Topic]uint64), startTime: time.Now()}
}

// RecordFrame records frame timing.
func (m *Metrics) RecordFrame(duration time.Duration) {
	ns := duration.Nanoseconds()
	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)
	m.lastFrameNs.Store(ns)

	for {
		old := m.frameMaxNs.Load()
		if ns <= old || m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordInput records one handled terminal event.
func (m *Metrics) RecordInput() {
	m.inputCount.Add(1)
}

// RecordReload records a settings reload attempt.
func (m *Metrics) RecordReload(err error) {
	m.reloads.Add(1)
	if err != nil {
		m.reloadErrors.Add(1)
	}
}

// RecordEvent records one event published on the bus.
func (m *Metrics) RecordEvent(t event.Topic) {
	m.eventsMu.Lock()
	m.events[t]++
	m.eventsMu.Unlock()
}

// MetricsSnapshot is a point-in-time copy of the metrics.
type MetricsSnapshot struct {
	Frames       uint64
	FrameAvg     time.Duration
	FrameMax     time.Duration
	FrameLast    time.Duration
	Inputs       uint64
	Reloads      uint64
	ReloadErrors uint64
	Events       map[event.Topic]uint64
	Uptime       time.Duration
}

// Snapshot returns the current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Frames:       m.frameCount.Load(),
		FrameMax:     time.Duration(m.frameMaxNs.Load()),
		FrameLast:    time.Duration(m.lastFrameNs.Load()),
		Inputs:       m.inputCount.Load(),
		Reloads:      m.reloads.Load(),
		ReloadErrors: m.reloadErrors.Load(),
		Uptime:       time.Since(m.startTime),
	}
	m.eventsMu.Lock()
	s.Events = maps.Clone(m.events)
	m.eventsMu.Unlock()
	if s.Frames > 0 {
		s.FrameAvg = time.Duration(m.frameTotalNs.Load() / int64(s.Frames))
	}
	return s
}
