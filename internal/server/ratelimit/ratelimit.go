// Package ratelimit throttles API requests per client. Every client gets an
// independent token bucket per endpoint and method; buckets refill
// continuously, so short bursts are absorbed without letting a client
// sustain more than the configured rate.
package ratelimit

import (
	"sync"
	"time"
)

// Config holds limiter-wide settings. Endpoint overrides take precedence
// over the default limit; whitelisted clients bypass the limiter and
// blacklisted clients are always refused.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Info is the outcome of a limit check; the server copies it into the
// X-RateLimit-* response headers.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// bucket is a continuously refilling token bucket.
type bucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // tokens per second
	last     time.Time
}

func newBucket(capacity int, rate float64) *bucket {
	return &bucket{
		tokens:   float64(capacity),
		capacity: float64(capacity),
		rate:     rate,
		last:     time.Now(),
	}
}

// take consumes one token when available. It reports the tokens left, when
// the bucket will be full again, and, for a refused take, how long until
// the next token arrives.
func (b *bucket) take() (ok bool, remaining int, reset time.Time, retry time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.last).Seconds() * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		ok = true
	} else {
		retry = time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
	}
	remaining = int(b.tokens)
	reset = now.Add(time.Duration((b.capacity - b.tokens) / b.rate * float64(time.Second)))
	return ok, remaining, reset, retry
}

// staleAfter is how long an idle client's buckets survive before the
// janitor drops them.
const staleAfter = time.Hour

// Limiter tracks one bucket per client, method and path.
type Limiter struct {
	cfg *Config

	mu      sync.Mutex
	entries map[string]*entry

	stop     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	b        *bucket
	lastSeen time.Time
}

// NewLimiter creates a limiter. A nil config enables the limiter with the
// default limit only. The janitor goroutine runs until Stop.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}

	l := &Limiter{
		cfg:     cfg,
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}
	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go l.janitor(cfg.CleanupInterval)
	}
	return l
}

// Allow reports whether one more request from clientID against the given
// path and method may proceed.
func (l *Limiter) Allow(clientID, endpoint, method string) (bool, Info) {
	if !l.cfg.Enabled {
		return true, Info{Allowed: true}
	}
	if l.cfg.Blacklist[clientID] {
		return false, Info{}
	}
	if l.cfg.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}

	limit, window, burst := l.cfg.resolve(endpoint, method)
	if limit <= 0 {
		// Unlimited endpoint, e.g. health checks.
		return true, Info{Allowed: true}
	}

	b := l.bucketFor(clientID+" "+method+" "+endpoint, limit, window, burst)
	ok, remaining, reset, retry := b.take()
	return ok, Info{
		Allowed:    ok,
		Limit:      limit,
		Remaining:  remaining,
		ResetTime:  reset,
		RetryAfter: retry,
	}
}

// bucketFor returns the bucket for key, creating it on first use, and marks
// it live for the janitor.
func (l *Limiter) bucketFor(key string, limit int, window time.Duration, burst int) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		if burst <= 0 {
			burst = limit
		}
		e = &entry{b: newBucket(burst, float64(limit)/window.Seconds())}
		l.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e.b
}

// janitor periodically drops buckets for clients idle longer than
// staleAfter, so one-off clients do not accumulate forever.
func (l *Limiter) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.dropStale(time.Now().Add(-staleAfter))
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) dropStale(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// Stop ends the janitor goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
