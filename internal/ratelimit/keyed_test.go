package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestKeyedLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Name: "user", Burst: 1, RefillRate: 0.001})
	defer kl.Stop()

	if !kl.Allow("u1") {
		t.Fatal("u1 first request denied")
	}
	if kl.Allow("u1") {
		t.Error("u1 second request allowed beyond burst")
	}
	if !kl.Allow("u2") {
		t.Error("u2 first request denied despite empty bucket history")
	}
}

func TestKeyedLimiter_EmptyKeyNeverLimited(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Name: "user", Burst: 1, RefillRate: 0.001})
	defer kl.Stop()

	for i := 0; i < 10; i++ {
		if !kl.Allow("") {
			t.Fatal("empty key was limited")
		}
	}
	if kl.ActiveCount() != 0 {
		t.Errorf("ActiveCount() = %d, want 0 (empty key must not create a bucket)", kl.ActiveCount())
	}
}

type dropRecorder struct {
	mu    sync.Mutex
	drops map[string]int
}

func (d *dropRecorder) RecordRateLimiterDrop(limiterType string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.drops == nil {
		d.drops = make(map[string]int)
	}
	d.drops[limiterType]++
}

func TestKeyedLimiter_RecordsDrops(t *testing.T) {
	t.Parallel()

	rec := &dropRecorder{}
	kl := NewKeyedLimiter(KeyedConfig{Name: "user", Burst: 1, RefillRate: 0.001, Metrics: rec})
	defer kl.Stop()

	kl.Allow("u1")
	kl.Allow("u1") // denied

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.drops["user"] != 1 {
		t.Errorf("drops = %v, want one for %q", rec.drops, "user")
	}
}

func TestKeyedLimiter_CleanupRemovesIdleBuckets(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{
		Name:          "user",
		Burst:         1,
		RefillRate:    1000, // refills instantly, so the bucket is idle-full
		CleanupPeriod: 20 * time.Millisecond,
	})
	defer kl.Stop()

	kl.Allow("u1")
	if kl.ActiveCount() != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", kl.ActiveCount())
	}

	deadline := time.After(2 * time.Second)
	for kl.ActiveCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("idle bucket never cleaned up")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestKeyedLimiter_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Name: "user", Burst: 1, RefillRate: 0.001})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kl.Stop()
		}()
	}
	wg.Wait()

	// A second round after the channel is already closed must not panic.
	kl.Stop()
}

func TestKeyedLimiter_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Name: "user", Burst: 1000, RefillRate: 1000})
	defer kl.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%4))
			for j := 0; j < 50; j++ {
				kl.Allow(key)
			}
		}(i)
	}
	wg.Wait()

	if kl.ActiveCount() != 4 {
		t.Errorf("ActiveCount() = %d, want 4", kl.ActiveCount())
	}
}
