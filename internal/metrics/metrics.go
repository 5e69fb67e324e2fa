// Package metrics provides structures and functions for collecting and managing
// endpoint health and performance metrics.
// file: internal/metrics/metrics.go
package metrics

import (
	"runtime"
	"sync"
	"time"
)

// EndpointMetrics holds a point-in-time snapshot of endpoint health.
type EndpointMetrics struct {
	StartTime     time.Time     `json:"startTime"`
	Uptime        time.Duration `json:"uptime"`
	GoVersion     string        `json:"goVersion"`
	NumGoroutines int           `json:"numGoroutines"`

	MemoryAllocated   uint64 `json:"memoryAllocated"`
	MemoryTotalAlloc  uint64 `json:"memoryTotalAlloc"`
	MemorySystemTotal uint64 `json:"memorySystemTotal"`
	MemoryGCCount     uint32 `json:"memoryGCCount"`

	PendingRequests int `json:"pendingRequests"`

	TotalRequests     int            `json:"totalRequests"`
	FailedRequests    int            `json:"failedRequests"`
	RequestLatencies  map[string]int `json:"requestLatencies"` // method -> smoothed latency ms (see RecordDispatch)
	RateLimitRejected int            `json:"rateLimitRejected"`
	AuthRejected      int            `json:"authRejected"`

	LastErrors []ErrorInfo `json:"lastErrors,omitempty"`
}

// ErrorInfo describes an error recorded against a component.
type ErrorInfo struct {
	Timestamp time.Time `json:"timestamp"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
}

// Collector accumulates endpoint metrics under a single mutex.
type Collector struct {
	metrics     EndpointMetrics
	startTime   time.Time
	errorBuffer []ErrorInfo
	bufferSize  int
	mu          sync.RWMutex

	pendingCount int
}

// NewCollector creates a Collector with a bounded circular error buffer.
func NewCollector(errorBufferSize int) *Collector {
	startTime := time.Now()
	return &Collector{
		metrics: EndpointMetrics{
			StartTime:        startTime,
			GoVersion:        runtime.Version(),
			RequestLatencies: make(map[string]int),
		},
		startTime:   startTime,
		errorBuffer: make([]ErrorInfo, 0, errorBufferSize),
		bufferSize:  errorBufferSize,
	}
}

// Snapshot returns a copy of the current metrics, refreshed with live
// runtime stats.
func (c *Collector) Snapshot() EndpointMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.metrics.Uptime = time.Since(c.startTime)
	c.metrics.NumGoroutines = runtime.NumGoroutine()
	c.metrics.PendingRequests = c.pendingCount

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	c.metrics.MemoryAllocated = memStats.Alloc
	c.metrics.MemoryTotalAlloc = memStats.TotalAlloc
	c.metrics.MemorySystemTotal = memStats.Sys
	c.metrics.MemoryGCCount = memStats.NumGC

	snapshot := c.metrics
	snapshot.RequestLatencies = make(map[string]int, len(c.metrics.RequestLatencies))
	for k, v := range c.metrics.RequestLatencies {
		snapshot.RequestLatencies[k] = v
	}
	if len(c.errorBuffer) > 0 {
		snapshot.LastErrors = make([]ErrorInfo, len(c.errorBuffer))
		copy(snapshot.LastErrors, c.errorBuffer)
	}
	return snapshot
}

// RecordDispatch records a completed request dispatch and its latency. The
// stored latency for a method is the mean of the new sample and the previously
// stored value, so recent samples weigh more than a plain average would give.
func (c *Collector) RecordDispatch(method string, latencyMs int, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.TotalRequests++
	if !success {
		c.metrics.FailedRequests++
	}

	if existing, ok := c.metrics.RequestLatencies[method]; ok {
		c.metrics.RequestLatencies[method] = (existing + latencyMs) / 2
	} else {
		c.metrics.RequestLatencies[method] = latencyMs
	}
}

// SetPendingCount reports the current depth of the outbound request
// correlation table.
func (c *Collector) SetPendingCount(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingCount = n
}

// RecordRateLimitRejection increments the rate-limiter rejection counter.
func (c *Collector) RecordRateLimitRejection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.RateLimitRejected++
}

// RecordAuthRejection increments the auth rejection counter.
func (c *Collector) RecordAuthRejection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.AuthRejected++
}

// RecordError appends an error to the circular error buffer, evicting the
// oldest entry once bufferSize is reached.
func (c *Collector) RecordError(component, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := ErrorInfo{Timestamp: time.Now(), Component: component, Message: message}
	if len(c.errorBuffer) >= c.bufferSize {
		c.errorBuffer = c.errorBuffer[1:]
	}
	c.errorBuffer = append(c.errorBuffer, entry)
}
