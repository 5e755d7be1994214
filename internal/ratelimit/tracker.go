package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// Tracker counts requests per key within the current window. Safe for
// concurrent use.
type Tracker struct {
	limit Limit

	mu      sync.Mutex
	windows map[string]*window
	swept   time.Time
}

// NewTracker creates a tracker for limit.
func NewTracker(limit Limit) *Tracker {
	return &Tracker{limit: limit, windows: make(map[string]*window)}
}

// Limit returns the configured limit.
func (t *Tracker) Limit() Limit {
	return t.limit
}

// Allow checks the key against the limit and, when it passes, counts the
// request. An expired window is reset first.
func (t *Tracker) Allow(key string, now time.Time) CheckResult {
	if !t.limit.Enabled() {
		return CheckResult{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweep(now)
	w := t.windows[key]
	if w == nil || now.Sub(w.start) >= t.limit.Window {
		w = &window{start: now}
		t.windows[key] = w
	}

	result := Check(w.count, t.limit)
	if !result.Exceeded {
		w.count++
		return result
	}
	result.RetryAfter = t.limit.Window - now.Sub(w.start)
	return result
}

// sweep drops expired windows at most once per window length.
func (t *Tracker) sweep(now time.Time) {
	if now.Sub(t.swept) < t.limit.Window {
		return
	}
	for k, w := range t.windows {
		if now.Sub(w.start) >= t.limit.Window {
			delete(t.windows, k)
		}
	}
	t.swept = now
}
