package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestLimiter(clock *fakeClock) *RateLimiter {
	return New(DefaultConfig, WithClock(clock.Now))
}

func TestIsLimitedWindow(t *testing.T) {
	clock := newFakeClock()
	rl := newTestLimiter(clock)

	assert.False(t, rl.IsLimited("192.168.1.1"))
	assert.False(t, rl.IsLimited("192.168.1.1"))
	assert.False(t, rl.IsLimited("192.168.1.1"))
	assert.True(t, rl.IsLimited("192.168.1.1"))
	assert.True(t, rl.IsLimited("192.168.1.1"))

	clock.Advance(60001 * time.Millisecond)
	assert.False(t, rl.IsLimited("192.168.1.1"))
}

func TestIsLimitedAtResetTime(t *testing.T) {
	clock := newFakeClock()
	rl := newTestLimiter(clock)

	for i := 0; i < 3; i++ {
		assert.False(t, rl.IsLimited("k"))
	}
	clock.Advance(time.Minute)
	assert.True(t, rl.IsLimited("k"))

	clock.Advance(time.Millisecond)
	assert.False(t, rl.IsLimited("k"))
}

func TestLimitedCallsAreNotCounted(t *testing.T) {
	clock := newFakeClock()
	rl := newTestLimiter(clock)

	for i := 0; i < 3; i++ {
		rl.IsLimited("k")
	}
	for i := 0; i < 10; i++ {
		assert.True(t, rl.IsLimited("k"))
	}
	assert.Equal(t, 3, rl.records["k"].count)
}

func TestKeysAreIsolated(t *testing.T) {
	clock := newFakeClock()
	rl := newTestLimiter(clock)

	for i := 0; i < 3; i++ {
		rl.IsLimited("192.168.1.1")
	}
	assert.True(t, rl.IsLimited("192.168.1.1"))
	assert.False(t, rl.IsLimited("192.168.1.2"))
	assert.Equal(t, 2, rl.Size())
}

func TestWindowDoesNotSlide(t *testing.T) {
	clock := newFakeClock()
	rl := newTestLimiter(clock)

	assert.False(t, rl.IsLimited("k"))
	clock.Advance(50 * time.Second)
	assert.False(t, rl.IsLimited("k"))
	assert.False(t, rl.IsLimited("k"))
	assert.True(t, rl.IsLimited("k"))

	// first request opened the window, so it closes 60s after it
	clock.Advance(10*time.Second + time.Millisecond)
	assert.False(t, rl.IsLimited("k"))
}

func TestCleanup(t *testing.T) {
	clock := newFakeClock()
	rl := newTestLimiter(clock)

	rl.IsLimited("a")
	rl.IsLimited("b")
	clock.Advance(30 * time.Second)
	rl.IsLimited("c")

	assert.Equal(t, 0, rl.Cleanup())
	assert.Equal(t, 3, rl.Size())

	clock.Advance(30*time.Second + time.Millisecond)
	assert.Equal(t, 2, rl.Cleanup())
	assert.Equal(t, 1, rl.Size())

	clock.Advance(30 * time.Second)
	rl.Cleanup()
	assert.Equal(t, 0, rl.Size())
}

func TestClear(t *testing.T) {
	rl := New(DefaultConfig)
	for i := 0; i < 5; i++ {
		rl.IsLimited(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Equal(t, 5, rl.Size())
	rl.Clear()
	assert.Equal(t, 0, rl.Size())
	assert.False(t, rl.IsLimited("10.0.0.1"))
}

func TestNewAppliesDefaults(t *testing.T) {
	rl := New(Config{})
	assert.Equal(t, DefaultConfig, rl.Config())

	rl = New(Config{Window: time.Second, MaxRequests: 1})
	assert.False(t, rl.IsLimited("k"))
	assert.True(t, rl.IsLimited("k"))
}

func TestConcurrentAdmission(t *testing.T) {
	rl := New(Config{Window: time.Hour, MaxRequests: 3})

	var admitted int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !rl.IsLimited("shared") {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(3), admitted)
}
