package memory

import (
	"context"
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"photo-library/internal/logging"
	"photo-library/internal/metrics"
)

var log = logging.For("memory")

// Config holds the thresholds of a Monitor.
type Config struct {
	// LimitBytes is the heap budget. 0 uses the runtime soft limit.
	LimitBytes int64
	// ResumeRatio is the usage below which paused work resumes.
	ResumeRatio float64
	// PauseRatio is the usage at or above which new work waits.
	PauseRatio float64
	// CheckInterval is how often heap usage is sampled.
	CheckInterval time.Duration
}

// DefaultConfig returns the thresholds used by the server.
func DefaultConfig() Config {
	return Config{
		ResumeRatio:   0.7,
		PauseRatio:    0.85,
		CheckInterval: 2 * time.Second,
	}
}

// Monitor samples heap usage and holds back thumbnail decoding while it is
// above the pause threshold. A Monitor without a limit never pauses.
type Monitor struct {
	config   Config
	limit    int64
	stopChan chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	alloc   uint64
	paused  bool
	resumed chan struct{}
}

// NewMonitor resolves the limit and returns an idle Monitor.
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if l := debug.SetMemoryLimit(-1); l > 0 && l < math.MaxInt64 {
			limit = l
		}
	}
	if limit == 0 {
		log.Info("No memory limit configured, thumbnail backpressure disabled")
	} else {
		log.Info("Thumbnail backpressure at %.0f%% of %s", config.PauseRatio*100, formatBytes(limit))
	}

	return &Monitor{
		config:   config,
		limit:    limit,
		stopChan: make(chan struct{}),
		resumed:  make(chan struct{}),
	}
}

// Start begins sampling. It does nothing without a limit.
func (m *Monitor) Start() {
	if m.limit == 0 || m.config.CheckInterval <= 0 {
		return
	}
	go m.loop()
}

// Stop ends sampling and releases every waiter. It is safe to call twice.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var stats runtime.MemStats
			runtime.ReadMemStats(&stats)
			m.observe(stats.HeapAlloc)
		case <-m.stopChan:
			return
		}
	}
}

// observe records one heap sample and flips the paused state. Between the
// two thresholds the previous state is kept.
func (m *Monitor) observe(alloc uint64) {
	if m.limit == 0 {
		return
	}
	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.alloc = alloc

	switch {
	case usage >= m.config.PauseRatio && !m.paused:
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryPausesTotal.Inc()
		log.Warn("Heap at %.1f%% of limit, holding back thumbnail generation", usage*100)
		go runtime.GC()
	case usage < m.config.ResumeRatio && m.paused:
		m.paused = false
		metrics.MemoryPaused.Set(0)
		close(m.resumed)
		m.resumed = make(chan struct{})
		log.Info("Heap back to %.1f%% of limit, resuming thumbnail generation", usage*100)
	}
}

// Wait blocks while the monitor is paused. It returns ctx.Err() if ctx ends
// first and nil once work may proceed or the monitor is stopped.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.RLock()
	paused, resumed := m.paused, m.resumed
	m.mu.RUnlock()
	if !paused {
		return nil
	}

	select {
	case <-resumed:
		return nil
	case <-m.stopChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Paused reports whether new work is currently held back.
func (m *Monitor) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// Stats returns the last heap sample, the limit and their ratio. The ratio
// is 0 without a limit.
func (m *Monitor) Stats() (alloc, limit int64, usage float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	alloc = math.MaxInt64
	if m.alloc <= math.MaxInt64 {
		alloc = int64(m.alloc)
	}
	if m.limit > 0 {
		usage = float64(m.alloc) / float64(m.limit)
	}
	return alloc, m.limit, usage
}
