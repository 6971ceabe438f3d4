package gateway

import (
	"fmt"
	"testing"
	"time"
)

func TestRateLimiter_Disabled(t *testing.T) {
	for _, rpm := range []int{0, -1} {
		rl := NewRateLimiter(rpm, 1)
		if rl.Enabled() {
			t.Errorf("rpm=%d should be disabled", rpm)
		}
		for i := 0; i < 100; i++ {
			if !rl.Allow("ip") {
				t.Fatalf("rpm=%d: request %d rejected", rpm, i)
			}
		}
	}
}

func TestRateLimiter_PerKey(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(60, 2)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("burst should pass")
	}
	if rl.Allow("a") {
		t.Error("third request within the same instant should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other keys have their own bucket")
	}

	now = now.Add(time.Second)
	if !rl.Allow("a") {
		t.Error("one token refills per second at 60 rpm")
	}
}

func TestRateLimiter_BoundedKeys(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	for i := 0; i < maxTrackedKeys+50; i++ {
		rl.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	if n := len(rl.entries); n > maxTrackedKeys {
		t.Errorf("tracked keys = %d, want <= %d", n, maxTrackedKeys)
	}
}
