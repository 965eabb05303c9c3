package keypool

import (
	"errors"
	"sync"
	"testing"
	"time"

	"notesqa/internal/service"
)

func TestNewRequiresKeys(t *testing.T) {
	if _, err := New(nil, time.Hour); err == nil {
		t.Fatalf("expected error for empty key set")
	}
}

func TestAcquireReturnsFirstKey(t *testing.T) {
	pool, err := New([]string{"k1", "k2"}, time.Hour)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	slot, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if slot.Key != "k1" {
		t.Errorf("expected first key, got %q", slot.Key)
	}
}

func TestReportExhaustedAdvancesRotation(t *testing.T) {
	pool, _ := New([]string{"k1", "k2", "k3"}, time.Hour)

	slot, _ := pool.Acquire()
	pool.ReportExhausted(slot)

	next, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if next.Key == slot.Key {
		t.Errorf("expected a different key after exhaustion, got %q again", next.Key)
	}
}

func TestPoolExhaustsAfterNSignals(t *testing.T) {
	keys := []string{"k1", "k2", "k3"}
	pool, _ := New(keys, time.Hour)

	// One logical operation: the attempt budget equals the pool size.
	for i := 0; i < pool.Size(); i++ {
		slot, err := pool.Acquire()
		if err != nil {
			t.Fatalf("attempt %d: Acquire returned error: %v", i, err)
		}
		pool.ReportExhausted(slot)
	}

	if _, err := pool.Acquire(); !errors.Is(err, service.ErrQuotaExhausted) {
		t.Fatalf("expected ErrQuotaExhausted after %d signals, got %v", len(keys), err)
	}
}

func TestExhaustedKeyRecoversAfterResetWindow(t *testing.T) {
	pool, _ := New([]string{"k1"}, time.Hour)

	clock := time.Now()
	pool.now = func() time.Time { return clock }

	slot, _ := pool.Acquire()
	pool.ReportExhausted(slot)

	if _, err := pool.Acquire(); !errors.Is(err, service.ErrQuotaExhausted) {
		t.Fatalf("expected pool exhausted inside reset window, got %v", err)
	}

	clock = clock.Add(time.Hour + time.Minute)
	recovered, err := pool.Acquire()
	if err != nil {
		t.Fatalf("expected key to recover after reset window, got %v", err)
	}
	if recovered.Key != "k1" {
		t.Errorf("expected recovered key k1, got %q", recovered.Key)
	}
}

func TestConcurrentReportNeverHandsOutExhaustedSlot(t *testing.T) {
	pool, _ := New([]string{"k1", "k2", "k3", "k4"}, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				slot, err := pool.Acquire()
				if err != nil {
					// All keys exhausted: valid terminal state.
					return
				}
				if j%3 == 0 {
					pool.ReportExhausted(slot)
				}
			}
		}()
	}
	wg.Wait()

	// The pool must stay internally consistent: either an active slot or
	// a clean exhaustion error.
	if slot, err := pool.Acquire(); err == nil {
		if slot.Key == "" {
			t.Fatalf("Acquire returned empty slot with nil error")
		}
	} else if !errors.Is(err, service.ErrQuotaExhausted) {
		t.Fatalf("unexpected error state: %v", err)
	}
}
