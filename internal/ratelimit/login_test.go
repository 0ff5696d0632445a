package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiter_BlocksAfterLimit(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestLoginLimiter_KeysAreIndependent(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"))
}

func TestLoginLimiter_WindowExpiry(t *testing.T) {
	current := time.Now()
	l := NewLoginLimiter(2, time.Minute)
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	current = current.Add(time.Minute)
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestLoginLimiter_ResetClearsCounter(t *testing.T) {
	l := NewLoginLimiter(2, time.Minute)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	l.Reset("1.2.3.4")
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestLoginLimiter_CleanupDropsExpiredEntries(t *testing.T) {
	current := time.Now()
	l := NewLoginLimiter(5, time.Minute)
	l.now = func() time.Time { return current }

	l.Allow("old")
	current = current.Add(2 * time.Minute)
	l.Allow("fresh")

	l.Cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.entries, "old")
	assert.Contains(t, l.entries, "fresh")
}

func TestLoginLimiter_ConcurrentAttemptsNeverExceedLimit(t *testing.T) {
	const limit = 10
	l := NewLoginLimiter(limit, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("1.2.3.4") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, allowed)
}
