package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultWindow      = time.Minute
	DefaultMaxRequests = 3
)

type Config struct {
	Window      time.Duration
	MaxRequests int
}

// DefaultConfig allows 3 requests per minute per key
var DefaultConfig = Config{Window: DefaultWindow, MaxRequests: DefaultMaxRequests}

// record is the fixed window state of a single key
type record struct {
	count     int
	resetTime time.Time
}

// RateLimiter is a keyed fixed-window counter living in process memory.
// It is not shared between instances or processes.
type RateLimiter struct {
	mu      sync.Mutex
	conf    Config
	now     func() time.Time
	records map[string]*record
}

type Option func(*RateLimiter)

// WithClock replaces time.Now (tests)
func WithClock(now func() time.Time) Option {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

func New(conf Config, opts ...Option) *RateLimiter {
	if conf.Window <= 0 {
		conf.Window = DefaultWindow
	}
	if conf.MaxRequests <= 0 {
		conf.MaxRequests = DefaultMaxRequests
	}
	rl := &RateLimiter{
		conf:    conf,
		now:     time.Now,
		records: make(map[string]*record),
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// IsLimited counts the request for key and reports whether it is over the limit.
// Limited requests are not counted. A request at exactly the reset time still
// belongs to the old window.
func (rl *RateLimiter) IsLimited(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rec, ok := rl.records[key]
	if !ok || now.After(rec.resetTime) {
		rl.records[key] = &record{count: 1, resetTime: now.Add(rl.conf.Window)}
		return false
	}
	if rec.count >= rl.conf.MaxRequests {
		return true
	}
	rec.count++
	return false
}

// Cleanup removes every expired record and returns how many were removed
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, rec := range rl.records {
		if now.After(rec.resetTime) {
			delete(rl.records, key)
			removed++
		}
	}
	return removed
}

// Clear drops all records
func (rl *RateLimiter) Clear() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.records = make(map[string]*record)
}

// Size returns the number of tracked keys
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.records)
}

func (rl *RateLimiter) Config() Config {
	return rl.conf
}
