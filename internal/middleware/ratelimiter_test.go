// file: internal/middleware/ratelimiter_test.go
package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mcpcore/mcpcore/internal/mcperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterHookAllowsUpToLimit(t *testing.T) {
	hook := NewRateLimiterHook(RateLimiterConfig{WindowMs: 60_000, MaxRequests: 3})

	for i := 0; i < 3; i++ {
		require.NoError(t, hook.PreDispatch(context.Background(), "tools/call", nil))
	}
}

func TestRateLimiterHookRejectsOverLimit(t *testing.T) {
	hook := NewRateLimiterHook(RateLimiterConfig{WindowMs: 60_000, MaxRequests: 2})

	require.NoError(t, hook.PreDispatch(context.Background(), "tools/call", nil))
	require.NoError(t, hook.PreDispatch(context.Background(), "tools/call", nil))
	err := hook.PreDispatch(context.Background(), "tools/call", nil)

	var mcpErr *mcperr.Error
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, mcperr.RateLimitExceeded, mcpErr.Code)
	assert.Equal(t, 2, mcpErr.Data["limit"])
}

func TestRateLimiterHookBucketsIndependentlyPerKey(t *testing.T) {
	hook := NewRateLimiterHook(RateLimiterConfig{WindowMs: 60_000, MaxRequests: 1})

	require.NoError(t, hook.PreDispatch(context.Background(), "tools/call", nil))
	require.NoError(t, hook.PreDispatch(context.Background(), "resources/read", nil))

	require.Error(t, hook.PreDispatch(context.Background(), "tools/call", nil))
	require.Error(t, hook.PreDispatch(context.Background(), "resources/read", nil))
}

func TestPresetsHaveExpectedLimits(t *testing.T) {
	assert.Equal(t, 10, STRICT().MaxRequests)
	assert.Equal(t, 100, MODERATE().MaxRequests)
	assert.Equal(t, 1000, LENIENT().MaxRequests)
	assert.Equal(t, 5, PerSecond(5).MaxRequests)
	assert.Equal(t, int64(1_000), PerSecond(5).WindowMs)
}

func TestPresetByNameFallsBackToModerate(t *testing.T) {
	assert.Equal(t, STRICT(), PresetByName("STRICT"))
	assert.Equal(t, LENIENT(), PresetByName("LENIENT"))
	assert.Equal(t, PerSecond(5), PresetByName("PER_SECOND_5"))
	assert.Equal(t, PerSecond(10), PresetByName("PER_SECOND_10"))
	assert.Equal(t, MODERATE(), PresetByName("unknown"))
}

func TestRateLimiterHookCallsOnRejectOnlyWhenOverLimit(t *testing.T) {
	rejections := 0
	hook := NewRateLimiterHook(RateLimiterConfig{WindowMs: 60_000, MaxRequests: 1, OnReject: func() { rejections++ }})

	require.NoError(t, hook.PreDispatch(context.Background(), "tools/call", nil))
	assert.Equal(t, 0, rejections)

	require.Error(t, hook.PreDispatch(context.Background(), "tools/call", nil))
	assert.Equal(t, 1, rejections)
}

func TestCompactDropsEmptyKeysWithoutAffectingActiveOnes(t *testing.T) {
	hook := NewRateLimiterHook(RateLimiterConfig{WindowMs: 1, MaxRequests: 5})

	require.NoError(t, hook.PreDispatch(context.Background(), "stale/method", nil))

	hook.mu.Lock()
	hook.hits["stale/method"][0] = hook.hits["stale/method"][0].Add(-time.Hour)
	hook.mu.Unlock()

	hook.Compact()

	hook.mu.Lock()
	_, stillPresent := hook.hits["stale/method"]
	hook.mu.Unlock()
	assert.False(t, stillPresent)
}
