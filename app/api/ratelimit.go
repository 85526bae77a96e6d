package api

import (
	"sync"
	"time"
)

// RateLimiter is a fixed-window counter keyed by caller identity. The
// first request after a window elapses resets the window; within a window
// at most max requests pass. Windows are tracked per key under one mutex,
// which is fine at the request rates a sync trigger sees.
type RateLimiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*rateWindow
}

type rateWindow struct {
	start time.Time
	count int
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     max,
		window:  window,
		windows: make(map[string]*rateWindow),
	}
}

// Allow reports whether a request for key may proceed at now. When denied,
// retryAfter is the time remaining until the window resets.
func (l *RateLimiter) Allow(key string, now time.Time) (allowed bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.windows[key] = &rateWindow{start: now, count: 1}
		return true, 0
	}

	if w.count < l.max {
		w.count++
		return true, 0
	}

	return false, w.start.Add(l.window).Sub(now)
}
