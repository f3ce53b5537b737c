package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/garyellow/jojo-linebot-go/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestKeyedLimiter_Basic(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	kl := NewKeyedLimiter(KeyedConfig{
		Name:       "chat",
		Burst:      1,
		RefillRate: 0.001,
		Metrics:    m,
	})
	defer kl.Stop()

	if !kl.Allow("C1") {
		t.Error("C1 first request denied")
	}
	if kl.Allow("C1") {
		t.Error("C1 second request allowed (should limit)")
	}
	if !kl.Allow("C2") {
		t.Error("C2 first request denied")
	}
	if !kl.Allow("") {
		t.Error("empty key must never be limited")
	}

	if got := testutil.ToFloat64(m.RateLimiterDropped.WithLabelValues("chat")); got != 1 {
		t.Errorf("dropped metric = %v, want 1", got)
	}
}

func TestKeyedLimiter_Cleanup(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{
		Name:          "cleanup_test",
		Burst:         10,
		RefillRate:    100, // Fast refill to fill bucket quickly
		CleanupPeriod: 50 * time.Millisecond,
	})
	defer kl.Stop()

	kl.Allow("C1")
	if count := kl.ActiveCount(); count != 1 {
		t.Errorf("ActiveCount() = %d, want 1", count)
	}

	// Wait for refill (bucket full) + cleanup tick
	time.Sleep(200 * time.Millisecond)

	if count := kl.ActiveCount(); count != 0 {
		t.Errorf("ActiveCount() = %d, want 0 after cleanup", count)
	}
}

func TestKeyedLimiter_Available(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Name: "avail", Burst: 10, RefillRate: 0.001})
	defer kl.Stop()

	if v := kl.Available("new"); v != 10 {
		t.Errorf("new key available = %f, want 10", v)
	}
	kl.Allow("C1")
	if v := kl.Available("C1"); v >= 10 {
		t.Errorf("used key available = %f, want < 10", v)
	}
}

func TestKeyedLimiter_ThreadSafety(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Name: "concurrency_test", Burst: 1000, RefillRate: 1})
	defer kl.Stop()

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Go(func() {
			key := fmt.Sprintf("C%d", i%10)
			kl.Allow(key)
			kl.Available(key)
		})
	}
	wg.Wait()

	if count := kl.ActiveCount(); count != 10 {
		t.Errorf("ActiveCount() = %d, want 10", count)
	}
}

func TestKeyedLimiter_StopTwice(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Name: "stop", Burst: 1, RefillRate: 1, CleanupPeriod: time.Hour})
	kl.Stop()
	kl.Stop()
}
