// file: internal/middleware/ratelimiter.go
package middleware

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mcpcore/mcpcore/internal/mcperr"
)

// KeyGenerator derives the rate-limit bucket key for an inbound call.
// Defaults to the method name when nil.
type KeyGenerator func(method string, params json.RawMessage) string

// RateLimiterConfig configures RateLimiterHook.
type RateLimiterConfig struct {
	WindowMs     int64
	MaxRequests  int
	KeyGenerator KeyGenerator
	// OnReject, if set, is called once per rejected request (e.g. to feed a
	// metrics counter). Never called on success.
	OnReject func()
}

// STRICT, MODERATE, and LENIENT are the presets named in the spec, plus the
// one-second-window PerSecond constructor for PER_SECOND_5/PER_SECOND_10.
func STRICT() RateLimiterConfig   { return RateLimiterConfig{WindowMs: 60_000, MaxRequests: 10} }
func MODERATE() RateLimiterConfig { return RateLimiterConfig{WindowMs: 60_000, MaxRequests: 100} }
func LENIENT() RateLimiterConfig  { return RateLimiterConfig{WindowMs: 60_000, MaxRequests: 1000} }

// PerSecond builds a preset with a one-second sliding window, e.g. PerSecond(5) for
// PER_SECOND_5, PerSecond(10) for PER_SECOND_10.
func PerSecond(n int) RateLimiterConfig {
	return RateLimiterConfig{WindowMs: 1_000, MaxRequests: n}
}

// PresetByName resolves one of the named config presets, falling back to
// MODERATE for an unrecognized name.
func PresetByName(name string) RateLimiterConfig {
	switch name {
	case "STRICT":
		return STRICT()
	case "LENIENT":
		return LENIENT()
	case "MODERATE":
		return MODERATE()
	case "PER_SECOND_5":
		return PerSecond(5)
	case "PER_SECOND_10":
		return PerSecond(10)
	default:
		return MODERATE()
	}
}

// RateLimiterHook enforces a sliding-window request count per key. Each call
// drops timestamps older than the window, checks the remaining count against
// the limit, and records the call if it's allowed.
type RateLimiterHook struct {
	mu     sync.Mutex
	config RateLimiterConfig
	hits   map[string][]time.Time
}

// NewRateLimiterHook builds a RateLimiterHook. A nil KeyGenerator buckets by
// method name alone.
func NewRateLimiterHook(config RateLimiterConfig) *RateLimiterHook {
	if config.KeyGenerator == nil {
		config.KeyGenerator = func(method string, _ json.RawMessage) string { return method }
	}
	return &RateLimiterHook{config: config, hits: make(map[string][]time.Time)}
}

// PreDispatch implements Hook.
func (h *RateLimiterHook) PreDispatch(_ context.Context, method string, params json.RawMessage) error {
	key := h.config.KeyGenerator(method, params)
	window := time.Duration(h.config.WindowMs) * time.Millisecond
	now := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	hits := pruneExpired(h.hits[key], now, window)

	if len(hits) >= h.config.MaxRequests {
		retryAfter := window - now.Sub(hits[0])
		h.hits[key] = hits
		if h.config.OnReject != nil {
			h.config.OnReject()
		}
		return mcperr.NewRateLimitExceeded(retryAfter.Seconds(), h.config.MaxRequests)
	}

	h.hits[key] = append(hits, now)
	return nil
}

// pruneExpired drops entries older than window relative to now. Entries are
// appended in increasing time order so the first surviving index is the cut point.
func pruneExpired(hits []time.Time, now time.Time, window time.Duration) []time.Time {
	cut := 0
	for cut < len(hits) && now.Sub(hits[cut]) >= window {
		cut++
	}
	if cut == 0 {
		return hits
	}
	return append([]time.Time(nil), hits[cut:]...)
}

// Compact drops bucket keys with no remaining in-window hits, bounding the
// map's growth across many distinct keys over the process lifetime.
func (h *RateLimiterHook) Compact() {
	window := time.Duration(h.config.WindowMs) * time.Millisecond
	now := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()
	for key, hits := range h.hits {
		remaining := pruneExpired(hits, now, window)
		if len(remaining) == 0 {
			delete(h.hits, key)
		} else {
			h.hits[key] = remaining
		}
	}
}
