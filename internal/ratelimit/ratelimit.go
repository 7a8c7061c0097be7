package ratelimit

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Limiter paces calls to the translation provider: a randomized delay between
// consecutive calls plus a hard per-run call budget. The budget keeps a
// runaway feed list from burning through the provider quota in one run.
type Limiter struct {
	mu       sync.Mutex
	count    int
	maxCalls int // 0 = unlimited
	minDelay time.Duration
	maxDelay time.Duration
	lastCall time.Time
}

func New(maxCalls int, minDelay, maxDelay time.Duration) *Limiter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Limiter{
		maxCalls: maxCalls,
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

// Wait blocks until the next provider call is allowed, or returns an error
// when the per-run budget is spent or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	if l.maxCalls > 0 && l.count >= l.maxCalls {
		l.mu.Unlock()
		return fmt.Errorf("translation call budget exhausted (%d calls)", l.maxCalls)
	}
	l.count++

	delay := l.minDelay
	if l.maxDelay > l.minDelay {
		delay += time.Duration(rand.Int63n(int64(l.maxDelay - l.minDelay)))
	}
	if !l.lastCall.IsZero() {
		if elapsed := time.Since(l.lastCall); elapsed < delay {
			delay -= elapsed
		} else {
			delay = 0
		}
	} else {
		delay = 0 // first call goes through immediately
	}
	l.lastCall = time.Now().Add(delay)
	l.mu.Unlock()

	if delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// Used reports how many calls were consumed so far.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
