package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a process-local sliding window limiter. Counters are lost
// on restart and are not shared between replicas.
type MemoryLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	rate     int
	window   time.Duration
	now      func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewMemoryLimiter(rate int, window time.Duration) *MemoryLimiter {
	rl := &MemoryLimiter{
		requests: make(map[string][]time.Time),
		rate:     rate,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	// Cleanup old entries periodically
	go func() {
		defer close(rl.done)
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stop:
				return
			}
		}
	}()

	return rl
}

func (rl *MemoryLimiter) Limit() int            { return rl.rate }
func (rl *MemoryLimiter) Window() time.Duration { return rl.window }

// Close stops the cleanup goroutine.
func (rl *MemoryLimiter) Close() error {
	rl.stopOnce.Do(func() {
		close(rl.stop)
	})
	<-rl.done
	return nil
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := rl.prune(rl.requests[key], now)

	result := Result{Limit: rl.rate}
	if len(valid) >= rl.rate {
		rl.requests[key] = valid
		result.ResetAt = valid[0].Add(rl.window)
		return result, nil
	}

	valid = append(valid, now)
	rl.requests[key] = valid
	result.Allowed = true
	result.Remaining = rl.rate - len(valid)
	result.ResetAt = valid[0].Add(rl.window)
	return result, nil
}

func (rl *MemoryLimiter) prune(times []time.Time, now time.Time) []time.Time {
	valid := times[:0:0]
	for _, t := range times {
		if now.Sub(t) < rl.window {
			valid = append(valid, t)
		}
	}
	return valid
}

func (rl *MemoryLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, times := range rl.requests {
		valid := rl.prune(times, now)
		if len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func (rl *MemoryLimiter) keys() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.requests)
}
