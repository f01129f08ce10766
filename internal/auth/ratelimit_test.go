package auth

import (
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, cfg RateLimitConfig) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)
	return rl
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := newTestLimiter(t, RateLimitConfig{MaxAttempts: 3})

	for i := 0; i < 2; i++ {
		if allowed, _ := rl.Allow("10.0.0.1", "user@example.com"); !allowed {
			t.Fatalf("attempt %d unexpectedly denied", i+1)
		}
		rl.RecordFailure("10.0.0.1", "user@example.com")
	}

	if allowed, _ := rl.Allow("10.0.0.1", "user@example.com"); !allowed {
		t.Error("denied before reaching the attempt limit")
	}
}

func TestRateLimiter_LocksOutAfterMaxAttempts(t *testing.T) {
	rl := newTestLimiter(t, RateLimitConfig{MaxAttempts: 3, LockoutDuration: time.Minute})

	var locked bool
	for i := 0; i < 3; i++ {
		locked, _ = rl.RecordFailure("10.0.0.1", "user@example.com")
	}
	if !locked {
		t.Fatal("expected lockout after max attempts")
	}

	allowed, retryAfter := rl.Allow("10.0.0.1", "user@example.com")
	if allowed {
		t.Error("locked pair still allowed")
	}
	if retryAfter <= 0 {
		t.Errorf("retryAfter = %v, want positive", retryAfter)
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := newTestLimiter(t, RateLimitConfig{MaxAttempts: 2, LockoutDuration: time.Minute})

	rl.RecordFailure("10.0.0.1", "user@example.com")
	rl.RecordFailure("10.0.0.1", "user@example.com")

	if allowed, _ := rl.Allow("10.0.0.1", "user@example.com"); allowed {
		t.Error("locked pair still allowed")
	}
	// Same IP, different email
	if allowed, _ := rl.Allow("10.0.0.1", "other@example.com"); !allowed {
		t.Error("different email denied")
	}
	// Same email, different IP
	if allowed, _ := rl.Allow("10.0.0.2", "user@example.com"); !allowed {
		t.Error("different IP denied")
	}
}

func TestRateLimiter_SuccessClearsFailures(t *testing.T) {
	rl := newTestLimiter(t, RateLimitConfig{MaxAttempts: 2, LockoutDuration: time.Minute})

	rl.RecordFailure("10.0.0.1", "user@example.com")
	rl.RecordSuccess("10.0.0.1", "user@example.com")

	rl.RecordFailure("10.0.0.1", "user@example.com")
	if allowed, _ := rl.Allow("10.0.0.1", "user@example.com"); !allowed {
		t.Error("denied after success reset the counter")
	}
}

func TestRateLimiter_WindowExpiryResetsCount(t *testing.T) {
	rl := newTestLimiter(t, RateLimitConfig{
		MaxAttempts:     2,
		WindowDuration:  10 * time.Millisecond,
		LockoutDuration: time.Minute,
	})

	rl.RecordFailure("10.0.0.1", "user@example.com")
	time.Sleep(20 * time.Millisecond)

	// Old failure fell out of the window, this starts a fresh count.
	if locked, _ := rl.RecordFailure("10.0.0.1", "user@example.com"); locked {
		t.Error("locked despite expired window")
	}
	if allowed, _ := rl.Allow("10.0.0.1", "user@example.com"); !allowed {
		t.Error("denied despite expired window")
	}
}
