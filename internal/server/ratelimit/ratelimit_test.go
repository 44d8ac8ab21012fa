package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_BurstThenDeny(t *testing.T) {
	b := newBucket(5, 1.0) // 5 tokens, 1 token/second

	for i := 0; i < 5; i++ {
		ok, _, _, _ := b.take()
		assert.True(t, ok, "take %d should succeed", i+1)
	}

	ok, remaining, _, retry := b.take()
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)
	assert.Greater(t, retry, time.Duration(0))
	assert.LessOrEqual(t, retry, time.Second)
}

func TestBucket_Refills(t *testing.T) {
	b := newBucket(2, 20.0) // refills fast enough to observe in a test

	for i := 0; i < 2; i++ {
		ok, _, _, _ := b.take()
		require.True(t, ok)
	}
	ok, _, _, _ := b.take()
	require.False(t, ok)

	time.Sleep(100 * time.Millisecond) // 2 tokens at 20/s

	ok, _, _, _ = b.take()
	assert.True(t, ok, "bucket should refill over time")
}

func TestBucket_RemainingAndReset(t *testing.T) {
	b := newBucket(10, 1.0)

	ok, remaining, reset, _ := b.take()
	assert.True(t, ok)
	assert.Equal(t, 9, remaining)
	assert.True(t, reset.After(time.Now()), "reset should be in the future while not full")
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("203.0.113.7", "/jobs", "GET")
		require.True(t, allowed, "request %d should pass", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("203.0.113.7", "/jobs", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer l.Stop()

	allowed, _ := l.Allow("203.0.113.1", "/jobs", "GET")
	require.True(t, allowed)
	allowed, _ = l.Allow("203.0.113.1", "/jobs", "GET")
	require.False(t, allowed, "first client exhausted its bucket")

	allowed, _ = l.Allow("203.0.113.2", "/jobs", "GET")
	assert.True(t, allowed, "second client has its own bucket")
}

func TestLimiter_EndpointOverrideAndBurst(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/workflows", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3},
		},
	})
	defer l.Stop()

	// Burst caps how much of the hourly limit is available at once.
	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("203.0.113.7", "/workflows", "POST")
		require.True(t, allowed)
		assert.Equal(t, 10, info.Limit)
	}
	allowed, _ := l.Allow("203.0.113.7", "/workflows", "POST")
	assert.False(t, allowed)

	// Other endpoints still run on the default limit.
	allowed, info := l.Allow("203.0.113.7", "/jobs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"198.51.100.9": true},
	})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/jobs", "GET")
		assert.True(t, allowed, "whitelisted client is never throttled")
	}

	allowed, info := l.Allow("198.51.100.9", "/jobs", "GET")
	assert.False(t, allowed, "blacklisted client is always refused")
	assert.False(t, info.Allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("203.0.113.7", "/jobs", "GET")
		assert.True(t, allowed)
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := l.Allow("203.0.113.7", "/health", "GET")
		assert.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_NilConfigUsesDefaults(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	allowed, info := l.Allow("203.0.113.7", "/jobs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_Concurrent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := l.Allow("203.0.113.7", "/jobs", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_DropStale(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		_, _ = l.Allow(fmt.Sprintf("203.0.113.%d", i+1), "/jobs", "GET")
	}
	l.mu.Lock()
	created := len(l.entries)
	l.mu.Unlock()
	require.Equal(t, 5, created)

	// A cutoff after every lastSeen drops all buckets.
	l.dropStale(time.Now().Add(time.Second))

	l.mu.Lock()
	left := len(l.entries)
	l.mu.Unlock()
	assert.Zero(t, left)
}

func TestConfig_Resolve(t *testing.T) {
	cfg := &Config{
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/jobs", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},
			{Path: "/jobs/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		},
	}

	tests := []struct {
		name      string
		path      string
		method    string
		wantLimit int
		wantBurst int
	}{
		{"exact match", "/jobs", "POST", 60, 5},
		{"prefix match", "/jobs/42/cancel", "POST", 100, 10},
		{"method mismatch falls back", "/jobs", "GET", 1000, 1000},
		{"unknown path falls back", "/limits", "GET", 1000, 1000},
		{"health is unlimited", "/health", "GET", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, _, burst := cfg.resolve(tt.path, tt.method)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantBurst, burst)
		})
	}
}
