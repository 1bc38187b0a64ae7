package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a sliding-window request limiter keyed by caller
// identity. An identity may hold at most quota admissions inside the
// trailing window; expired admissions are pruned on every check so a
// hot identity's state stays bounded at quota timestamps.
type Limiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	quota   int
	window  time.Duration
	now     func() time.Time
}

type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(quota int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		windows: make(map[string][]time.Time),
		quota:   quota,
		window:  window,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether one more request is admitted for key, and
// records the admission if so.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.windows[key]

	// prune admissions that left the trailing window
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.quota {
		l.windows[key] = kept
		return false
	}

	l.windows[key] = append(kept, now)
	return true
}

// Cleanup drops identities whose every admission has expired.
func (l *Limiter) Cleanup() {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, ts := range l.windows {
		live := false
		for _, t := range ts {
			if t.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.windows, key)
		}
	}
}

// StartJanitor reaps idle identities periodically until ctx is done.
func (l *Limiter) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}
