// Package ratelimit spaces outbound calls to a quota-limited provider.
package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Clock abstracts time so tests can run without sleeping.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Throttle enforces a minimum interval between calls. One Throttle is shared
// by every client that talks to the same provider key.
type Throttle struct {
	limiter     *rate.Limiter
	minInterval time.Duration
	clock       Clock

	mu   sync.Mutex
	last time.Time
}

// NewThrottle creates a Throttle for a provider quota of callsPerMinute.
func NewThrottle(callsPerMinute int) *Throttle {
	if callsPerMinute <= 0 {
		callsPerMinute = 1
	}
	interval := time.Minute / time.Duration(callsPerMinute)
	return &Throttle{
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		minInterval: interval,
		clock:       realClock{},
	}
}

// WithClock replaces the clock. Intended for tests.
func (t *Throttle) WithClock(c Clock) *Throttle {
	t.clock = c
	return t
}

// MinInterval returns the spacing between calls.
func (t *Throttle) MinInterval() time.Duration {
	return t.minInterval
}

// Wait blocks until the caller may issue its request. The slot is reserved
// before sleeping, so callers queued behind it throttle against its issue
// time. A cancelled wait gives the slot back.
func (t *Throttle) Wait(ctx context.Context) error {
	now := t.clock.Now()
	r := t.limiter.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	slot := now.Add(wait)

	t.mu.Lock()
	prev := t.last
	if slot.After(t.last) {
		t.last = slot
	}
	t.mu.Unlock()

	if wait > 0 {
		log.Printf("[INFO] rate limit: waiting %v before next call", wait.Round(time.Millisecond))
	}
	if err := t.clock.Sleep(ctx, wait); err != nil {
		r.CancelAt(t.clock.Now())
		t.mu.Lock()
		if t.last.Equal(slot) {
			t.last = prev
		}
		t.mu.Unlock()
		return err
	}
	return nil
}

// Cooldown reserves enough slots to cover d, so the next Wait returns no
// sooner than d from now.
func (t *Throttle) Cooldown(d time.Duration) {
	if d <= 0 {
		return
	}
	slots := int((d + t.minInterval - 1) / t.minInterval)
	now := t.clock.Now()
	var until time.Time
	for i := 0; i < slots; i++ {
		r := t.limiter.ReserveN(now, 1)
		until = now.Add(r.DelayFrom(now))
	}

	t.mu.Lock()
	if until.After(t.last) {
		t.last = until
	}
	t.mu.Unlock()
	log.Printf("[WARN] rate limit: cooling down for %v", d)
}

// Last returns the latest reserved issue time.
func (t *Throttle) Last() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
