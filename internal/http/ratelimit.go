package http

import (
	"sync"
	"time"
)

const (
	writeBudgetPerWindow = 60
	limiterWindow        = time.Minute
	limiterStaleAfter    = 10 * time.Minute
	limiterSweepEvery    = 5 * time.Minute
)

// rateLimiter caps mutating requests per client IP using a fixed window.
// Entries for quiet clients are swept by a background goroutine.
type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	done    chan struct{}
	once    sync.Once
}

type window struct {
	openedAt time.Time
	seenAt   time.Time
	count    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// allow admits up to writeBudgetPerWindow requests per client per window.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.openedAt) > limiterWindow {
		rl.windows[clientIP] = &window{openedAt: now, seenAt: now, count: 1}
		return true
	}

	w.count++
	w.seenAt = now
	return w.count <= writeBudgetPerWindow
}

func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-limiterStaleAfter)
	for ip, w := range rl.windows {
		if w.seenAt.Before(cutoff) {
			delete(rl.windows, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}
