package prologix

import (
	"sync"
	"sync/atomic"
	"time"
)

// Counter is a thread-safe counter
type Counter struct {
	value atomic.Int64
}

// Add adds a delta to the counter
func (c *Counter) Add(delta int64) {
	c.value.Add(delta)
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	c.Add(1)
}

// Value returns the current counter value
func (c *Counter) Value() int64 {
	return c.value.Load()
}

// Reset resets the counter to 0
func (c *Counter) Reset() {
	c.value.Store(0)
}

// Gauge is a thread-safe gauge that can go up and down
type Gauge struct {
	value atomic.Int64
}

// Set sets the gauge value
func (g *Gauge) Set(value int64) {
	g.value.Store(value)
}

// Inc increments the gauge by 1
func (g *Gauge) Inc() {
	g.value.Add(1)
}

// Dec decrements the gauge by 1
func (g *Gauge) Dec() {
	g.value.Add(-1)
}

// Value returns the current gauge value
func (g *Gauge) Value() int64 {
	return g.value.Load()
}

// LatencyHistogram tracks duration measurements
type LatencyHistogram struct {
	mu      sync.RWMutex
	count   int64
	sum     int64 // nanoseconds
	min     int64
	max     int64
	buckets []int64
}

// NewLatencyHistogram creates a new latency histogram. Buckets are scaled
// for discovery windows: <50ms, <100ms, <250ms, <500ms, <1s, <2.5s, <5s, >=5s.
func NewLatencyHistogram() *LatencyHistogram {
	return &LatencyHistogram{
		min:     -1, // No measurements yet
		buckets: make([]int64, 8),
	}
}

// Record records a measurement
func (h *LatencyHistogram) Record(d time.Duration) {
	ns := d.Nanoseconds()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.count++
	h.sum += ns

	if h.min < 0 || ns < h.min {
		h.min = ns
	}
	if ns > h.max {
		h.max = ns
	}

	ms := d.Milliseconds()
	switch {
	case ms < 50:
		h.buckets[0]++
	case ms < 100:
		h.buckets[1]++
	case ms < 250:
		h.buckets[2]++
	case ms < 500:
		h.buckets[3]++
	case ms < 1000:
		h.buckets[4]++
	case ms < 2500:
		h.buckets[5]++
	case ms < 5000:
		h.buckets[6]++
	default:
		h.buckets[7]++
	}
}

// Stats returns histogram statistics
func (h *LatencyHistogram) Stats() LatencyStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := LatencyStats{
		Count:   h.count,
		Buckets: make([]int64, len(h.buckets)),
	}
	copy(stats.Buckets, h.buckets)

	if h.count > 0 {
		stats.Min = time.Duration(h.min)
		stats.Max = time.Duration(h.max)
		stats.Avg = time.Duration(h.sum / h.count)
	}

	return stats
}

// Reset resets the histogram
func (h *LatencyHistogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.count = 0
	h.sum = 0
	h.min = -1
	h.max = 0
	for i := range h.buckets {
		h.buckets[i] = 0
	}
}

// LatencyStats contains latency statistics
type LatencyStats struct {
	Count   int64
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Buckets []int64
}

// Metrics holds client metrics
type Metrics struct {
	// Discovery metrics
	DiscoverAttempts  Counter
	DiscoverSuccesses Counter
	DiscoverFailures  Counter

	// Request metrics
	IdentifySent Counter
	RebootsSent  Counter

	// Reply metrics
	RepliesAccepted       Counter
	ShortDatagramsDropped Counter
	ParseFailures         Counter
	ReceiveErrors         Counter
	ControllersDiscovered Counter

	// Bytes
	BytesSent     Counter
	BytesReceived Counter

	// Latency of full discovery windows
	DiscoverLatency *LatencyHistogram

	// Current state
	ActiveDiscoveries Gauge

	// Timestamps
	startTime    time.Time
	lastActivity atomic.Int64
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		DiscoverLatency: NewLatencyHistogram(),
		startTime:       time.Now(),
	}
}

// RecordActivity records the last activity time
func (m *Metrics) RecordActivity() {
	m.lastActivity.Store(time.Now().UnixNano())
}

// LastActivity returns the last activity time
func (m *Metrics) LastActivity() time.Time {
	ns := m.lastActivity.Load()
	if ns == 0 {
		return m.startTime
	}
	return time.Unix(0, ns)
}

// Uptime returns the time since metrics started
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.DiscoverAttempts.Reset()
	m.DiscoverSuccesses.Reset()
	m.DiscoverFailures.Reset()
	m.IdentifySent.Reset()
	m.RebootsSent.Reset()
	m.RepliesAccepted.Reset()
	m.ShortDatagramsDropped.Reset()
	m.ParseFailures.Reset()
	m.ReceiveErrors.Reset()
	m.ControllersDiscovered.Reset()
	m.BytesSent.Reset()
	m.BytesReceived.Reset()
	m.DiscoverLatency.Reset()
	m.ActiveDiscoveries.Set(0)
	m.startTime = time.Now()
	m.lastActivity.Store(0)
}

// Snapshot returns a point-in-time snapshot of current metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Uptime: m.Uptime(),

		DiscoverAttempts:  m.DiscoverAttempts.Value(),
		DiscoverSuccesses: m.DiscoverSuccesses.Value(),
		DiscoverFailures:  m.DiscoverFailures.Value(),

		IdentifySent: m.IdentifySent.Value(),
		RebootsSent:  m.RebootsSent.Value(),

		RepliesAccepted:       m.RepliesAccepted.Value(),
		ShortDatagramsDropped: m.ShortDatagramsDropped.Value(),
		ParseFailures:         m.ParseFailures.Value(),
		ReceiveErrors:         m.ReceiveErrors.Value(),
		ControllersDiscovered: m.ControllersDiscovered.Value(),

		BytesSent:     m.BytesSent.Value(),
		BytesReceived: m.BytesReceived.Value(),

		LatencyStats: m.DiscoverLatency.Stats(),

		ActiveDiscoveries: m.ActiveDiscoveries.Value(),

		LastActivity: m.LastActivity(),
	}
}

// MetricsSnapshot is a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	Uptime time.Duration

	DiscoverAttempts  int64
	DiscoverSuccesses int64
	DiscoverFailures  int64

	IdentifySent int64
	RebootsSent  int64

	RepliesAccepted       int64
	ShortDatagramsDropped int64
	ParseFailures         int64
	ReceiveErrors         int64
	ControllersDiscovered int64

	BytesSent     int64
	BytesReceived int64

	LatencyStats LatencyStats

	ActiveDiscoveries int64

	LastActivity time.Time
}
