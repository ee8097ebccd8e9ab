package supervisor

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/recipebox/pkg/metrics"
)

const (
	defaultSystemInterval  = 10 * time.Second
	defaultServiceInterval = 5 * time.Second
	nanosPerMilli          = 1e6
)

// StatsRefresher refreshes service gauges as a side effect of reporting stats.
type StatsRefresher interface {
	GetStats() map[string]any
}

// MetricsCollector periodically publishes runtime and service gauges.
type MetricsCollector struct {
	stats           StatsRefresher
	systemInterval  time.Duration
	serviceInterval time.Duration

	lastNumGC uint32
}

// NewMetricsCollector returns a collector; zero intervals take their defaults.
func NewMetricsCollector(stats StatsRefresher, systemInterval, serviceInterval time.Duration) *MetricsCollector {
	if systemInterval <= 0 {
		systemInterval = defaultSystemInterval
	}
	if serviceInterval <= 0 {
		serviceInterval = defaultServiceInterval
	}
	return &MetricsCollector{stats: stats, systemInterval: systemInterval, serviceInterval: serviceInterval}
}

// Serve ticks until ctx is cancelled.
func (c *MetricsCollector) Serve(ctx context.Context) error {
	sys := time.NewTicker(c.systemInterval)
	defer sys.Stop()
	svc := time.NewTicker(c.serviceInterval)
	defer svc.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sys.C:
			c.collectSystem()
		case <-svc.C:
			if c.stats != nil {
				_ = c.stats.GetStats()
			}
		}
	}
}

// collectSystem records memory, goroutines and the GC pauses since the last tick.
func (c *MetricsCollector) collectSystem() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// PauseNs is a ring of the last 256 pauses.
	n := m.NumGC - c.lastNumGC
	if n > uint32(len(m.PauseNs)) {
		n = uint32(len(m.PauseNs))
	}
	for i := uint32(0); i < n; i++ {
		idx := (m.NumGC - i + uint32(len(m.PauseNs)) - 1) % uint32(len(m.PauseNs))
		metrics.RecordSystemGCPauseTime(float64(m.PauseNs[idx]) / nanosPerMilli)
	}
	c.lastNumGC = m.NumGC
}

func (c *MetricsCollector) String() string { return "metrics-collector" }
