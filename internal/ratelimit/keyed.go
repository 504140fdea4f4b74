package ratelimit

import (
	"sync"
	"time"
)

const defaultCleanupPeriod = 5 * time.Minute

// MetricsRecorder receives drop events.
type MetricsRecorder interface {
	RecordRateLimiterDrop(limiterType string)
}

// KeyedConfig configures a KeyedLimiter.
type KeyedConfig struct {
	// Name identifies this limiter in metrics (e.g. "user").
	Name string

	Burst      float64
	RefillRate float64

	// CleanupPeriod controls how often idle buckets are removed.
	// Zero selects a default of five minutes.
	CleanupPeriod time.Duration

	Metrics MetricsRecorder
}

// KeyedLimiter keeps an independent token bucket per key and removes
// buckets that have refilled completely. An empty key is never limited.
type KeyedLimiter struct {
	mu       sync.RWMutex
	entries  map[string]*Limiter
	config   KeyedConfig
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewKeyedLimiter creates a per-key limiter and starts its cleanup loop.
// Call Stop when done.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = defaultCleanupPeriod
	}
	kl := &KeyedLimiter{
		entries: make(map[string]*Limiter),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}
	go kl.cleanupLoop()
	return kl
}

// Allow reports whether a request for key may proceed, consuming a token
// when it does.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	if kl.getOrCreate(key).Allow() {
		return true
	}
	if kl.config.Metrics != nil {
		kl.config.Metrics.RecordRateLimiterDrop(kl.config.Name)
	}
	return false
}

func (kl *KeyedLimiter) getOrCreate(key string) *Limiter {
	kl.mu.RLock()
	limiter, ok := kl.entries[key]
	kl.mu.RUnlock()
	if ok {
		return limiter
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	if limiter, ok = kl.entries[key]; ok {
		return limiter
	}
	limiter = New(kl.config.Burst, kl.config.RefillRate)
	kl.entries[key] = limiter
	return limiter
}

// Available returns the token count for key, or the burst capacity when
// the key has no bucket yet.
func (kl *KeyedLimiter) Available(key string) float64 {
	kl.mu.RLock()
	limiter, ok := kl.entries[key]
	kl.mu.RUnlock()
	if !ok {
		return kl.config.Burst
	}
	return limiter.Available()
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.mu.Lock()
			for key, limiter := range kl.entries {
				if limiter.IsFull() {
					delete(kl.entries, key)
				}
			}
			kl.mu.Unlock()
		}
	}
}

// Stop terminates the cleanup goroutine. Safe to call multiple times,
// including concurrently.
func (kl *KeyedLimiter) Stop() {
	kl.stopOnce.Do(func() { close(kl.stopCh) })
}
