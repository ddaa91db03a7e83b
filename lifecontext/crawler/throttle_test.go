package crawler

import (
	"testing"
	"time"
)

func TestThrottleWindow(t *testing.T) {
	th := NewThrottle(3 * time.Second)
	base := time.Now()

	if !th.TryAcquire(base) {
		t.Fatal("first acquire should succeed")
	}
	if th.TryAcquire(base.Add(2999 * time.Millisecond)) {
		t.Error("acquire inside the window should fail")
	}
	if !th.TryAcquire(base.Add(3 * time.Second)) {
		t.Error("acquire at window boundary should succeed")
	}
}

func TestThrottleFailedAcquireKeepsState(t *testing.T) {
	th := NewThrottle(3 * time.Second)
	base := time.Now()
	th.TryAcquire(base)

	// A suppressed attempt must not slide the window forward.
	th.TryAcquire(base.Add(time.Second))
	if !th.TryAcquire(base.Add(3 * time.Second)) {
		t.Error("window moved on a failed acquire")
	}
}

func TestThrottleDefaults(t *testing.T) {
	if d := NewThrottle(0).Delay(); d != DefaultThrottleDelay {
		t.Errorf("zero delay should fall back to default, got %v", d)
	}
	if d := NewThrottle(-time.Second).Delay(); d != DefaultThrottleDelay {
		t.Errorf("negative delay should fall back to default, got %v", d)
	}
}

func TestThrottleConfigure(t *testing.T) {
	th := NewThrottle(3 * time.Second)
	th.Configure(500 * time.Millisecond)
	base := time.Now()
	th.TryAcquire(base)
	if !th.TryAcquire(base.Add(500 * time.Millisecond)) {
		t.Error("reconfigured delay not applied")
	}

	th.Configure(0)
	if th.Delay() != 500*time.Millisecond {
		t.Error("non-positive delay should be ignored")
	}
}

func TestThrottleLast(t *testing.T) {
	th := NewThrottle(time.Second)
	if !th.Last().IsZero() {
		t.Error("Last should be zero before any acquire")
	}
	base := time.Now()
	th.TryAcquire(base)
	if !th.Last().Equal(base) {
		t.Errorf("Last = %v, want %v", th.Last(), base)
	}
}
