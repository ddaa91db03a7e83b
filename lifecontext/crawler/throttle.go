package crawler

import (
	"sync"
	"time"
)

// DefaultThrottleDelay is the minimum interval between two accepted crawls.
const DefaultThrottleDelay = 3 * time.Second

// Throttle is a stateful rate gate. A burst of mutations inside the window
// is fully suppressed, not queued; the next mutation after the window
// re-triggers a crawl.
type Throttle struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time
}

func NewThrottle(delay time.Duration) *Throttle {
	if delay <= 0 {
		delay = DefaultThrottleDelay
	}
	return &Throttle{delay: delay}
}

// TryAcquire reports whether a crawl may start at now, updating the gate
// state only on success. Check and update happen under one lock so that two
// back-to-back qualifying mutations can never both proceed.
func (t *Throttle) TryAcquire(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if now.Sub(t.last) >= t.delay {
		t.last = now
		return true
	}
	return false
}

func (t *Throttle) Configure(delay time.Duration) {
	if delay <= 0 {
		return
	}
	t.mu.Lock()
	t.delay = delay
	t.mu.Unlock()
}

func (t *Throttle) Delay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}

// Last returns the time of the last accepted crawl, zero if none yet.
func (t *Throttle) Last() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
