package ratelimiter

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	rl := NewFixedWindowRateLimiter(3, time.Minute)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow("client"); !ok {
			t.Fatalf("request %d denied under the limit", i+1)
		}
	}

	ok, retryAfter := rl.Allow("client")
	if ok {
		t.Error("request over the limit was allowed")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Errorf("retryAfter = %v, want within (0, window]", retryAfter)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	rl := NewFixedWindowRateLimiter(1, time.Minute)
	defer rl.Close()

	if ok, _ := rl.Allow("a"); !ok {
		t.Fatal("first request for a denied")
	}
	if ok, _ := rl.Allow("a"); ok {
		t.Error("second request for a allowed over limit 1")
	}
	if ok, _ := rl.Allow("b"); !ok {
		t.Error("b was throttled by a's usage")
	}
}

func TestWindowResets(t *testing.T) {
	rl := NewFixedWindowRateLimiter(1, 10*time.Millisecond)
	defer rl.Close()

	if ok, _ := rl.Allow("client"); !ok {
		t.Fatal("first request denied")
	}

	time.Sleep(15 * time.Millisecond)

	if ok, _ := rl.Allow("client"); !ok {
		t.Error("request denied after the window rolled over")
	}
}
