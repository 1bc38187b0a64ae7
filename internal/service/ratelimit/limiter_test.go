package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowQuotaBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(10, time.Minute, WithClock(func() time.Time { return now }))

	for i := 0; i < 10; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("call %d: expected admission", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("11th call within window should be rejected")
	}
}

func TestAllowWindowElapse(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(10, time.Minute, WithClock(func() time.Time { return now }))

	for i := 0; i < 10; i++ {
		l.Allow("1.2.3.4")
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("over-quota call should be rejected")
	}

	now = now.Add(time.Minute + time.Second)
	if !l.Allow("1.2.3.4") {
		t.Fatalf("first call after window fully elapsed should be admitted")
	}
}

func TestAllowSlidingPrune(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(2, time.Minute, WithClock(func() time.Time { return now }))

	l.Allow("k")
	now = now.Add(40 * time.Second)
	l.Allow("k")
	if l.Allow("k") {
		t.Fatalf("third call within window should be rejected")
	}

	// first admission slides out, second is still inside
	now = now.Add(25 * time.Second)
	if !l.Allow("k") {
		t.Fatalf("expected admission after oldest timestamp expired")
	}
}

func TestIdentitiesIndependent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(1, time.Minute, WithClock(func() time.Time { return now }))

	if !l.Allow("a") {
		t.Fatal("first identity should be admitted")
	}
	if !l.Allow("b") {
		t.Fatal("second identity should be unaffected by first")
	}
	if l.Allow("a") {
		t.Fatal("first identity over quota")
	}
}

func TestCleanupDropsIdleKeys(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(5, time.Minute, WithClock(func() time.Time { return now }))

	l.Allow("idle")
	l.Allow("busy")

	now = now.Add(2 * time.Minute)
	l.Allow("busy")
	l.Cleanup()

	l.mu.Lock()
	_, idleKept := l.windows["idle"]
	_, busyKept := l.windows["busy"]
	l.mu.Unlock()

	if idleKept {
		t.Fatal("idle identity should have been reaped")
	}
	if !busyKept {
		t.Fatal("busy identity should survive cleanup")
	}

	// janitor shuts down with the context
	ctx, cancel := context.WithCancel(context.Background())
	l.StartJanitor(ctx, 10*time.Millisecond)
	cancel()
}
