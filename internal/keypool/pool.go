// Package keypool manages a ring of provider API keys, advancing to the
// next key when the provider signals quota exhaustion. Exhausted keys
// recover after a configurable reset window.
package keypool

import (
	"fmt"
	"sync"
	"time"

	"notesqa/internal/service"
)

// Slot is a handle to one credential in the pool.
type Slot struct {
	// Key is the provider API key held by this slot.
	Key string

	index int
}

// Index returns the slot's position in the ring. Clients use it to key
// per-credential state such as cached provider clients.
func (s Slot) Index() int {
	return s.index
}

// Pool rotates through a fixed set of API keys. It is safe for concurrent
// use; the rotation pointer and exhaustion state are guarded by a single
// mutex, held only for pointer bookkeeping, never across network calls.
type Pool struct {
	mu          sync.Mutex
	keys        []string
	current     int
	exhaustedAt []time.Time
	resetWindow time.Duration
	now         func() time.Time
}

// New creates a pool over the given keys. resetWindow is how long a key
// stays out of rotation after a quota signal.
func New(keys []string, resetWindow time.Duration) (*Pool, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("keypool: at least one key is required")
	}
	return &Pool{
		keys:        keys,
		exhaustedAt: make([]time.Time, len(keys)),
		resetWindow: resetWindow,
		now:         time.Now,
	}, nil
}

// Size returns the number of keys in the pool. Callers use it to bound
// their retry loops: at most Size attempts per logical operation.
func (p *Pool) Size() int {
	return len(p.keys)
}

// Acquire returns the currently active slot. When every key is exhausted
// and still inside its reset window, it fails with service.ErrQuotaExhausted.
func (p *Pool) Acquire() (Slot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < len(p.keys); i++ {
		idx := (p.current + i) % len(p.keys)
		if p.activeLocked(idx) {
			p.current = idx
			return Slot{Key: p.keys[idx], index: idx}, nil
		}
	}
	return Slot{}, service.ErrQuotaExhausted
}

// ReportExhausted marks the slot's key as exhausted and advances the
// rotation pointer past it, so the next Acquire returns a different key
// when one is available.
func (p *Pool) ReportExhausted(s Slot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.index < 0 || s.index >= len(p.keys) {
		return
	}
	p.exhaustedAt[s.index] = p.now()
	if p.current == s.index {
		p.current = (p.current + 1) % len(p.keys)
	}
}

// activeLocked reports whether the key at idx is usable. A key whose reset
// window has elapsed transitions back to active. Caller holds p.mu.
func (p *Pool) activeLocked(idx int) bool {
	at := p.exhaustedAt[idx]
	if at.IsZero() {
		return true
	}
	if p.now().Sub(at) >= p.resetWindow {
		p.exhaustedAt[idx] = time.Time{}
		return true
	}
	return false
}
