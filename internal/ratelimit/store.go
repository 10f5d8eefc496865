package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// Store counts hits per key in fixed windows.
type Store interface {
	// Hit records one hit for key and returns the count in the current window
	// and when that window ends. A new window starts when the previous one has expired.
	Hit(ctx context.Context, key string, window time.Duration, now time.Time) (count int, resetAt time.Time, err error)
}

type bucket struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"resetAt"`
}

// MemoryStore keeps windows in process memory.
// Expired windows are swept opportunistically on a small fraction of hits.
type MemoryStore struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	sweepRate float64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*bucket), sweepRate: 0.01}
}

// Hit implements Store.
func (m *MemoryStore) Hit(_ context.Context, key string, window time.Duration, now time.Time) (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rand.Float64() < m.sweepRate {
		m.sweepLocked(now)
	}

	b, ok := m.buckets[key]
	if !ok || !now.Before(b.ResetAt) {
		b = &bucket{ResetAt: now.Add(window)}
		m.buckets[key] = b
	}
	b.Count++
	return b.Count, b.ResetAt, nil
}

// Len returns the number of tracked windows, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

// Sweep drops every window that has ended by now.
func (m *MemoryStore) Sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked(now)
}

func (m *MemoryStore) sweepLocked(now time.Time) {
	for k, b := range m.buckets {
		if !now.Before(b.ResetAt) {
			delete(m.buckets, k)
		}
	}
}

// KV is the subset of a Fiber storage backend used by KVStore.
// github.com/gofiber/storage/redis/v3 satisfies it.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

// KVStore keeps windows in a shared key/value backend so limits hold across instances.
// Read-modify-write is serialised per process only; concurrent instances may
// briefly over-admit at a window boundary.
type KVStore struct {
	mu     sync.Mutex
	kv     KV
	prefix string
}

// NewKVStore returns a store backed by kv. Keys are namespaced with "ratelimit:".
func NewKVStore(kv KV) *KVStore {
	return &KVStore{kv: kv, prefix: "ratelimit:"}
}

// Hit implements Store.
func (s *KVStore) Hit(ctx context.Context, key string, window time.Duration, now time.Time) (int, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return 0, time.Time{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key = s.prefix + key
	var b bucket
	raw, err := s.kv.Get(key)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to read window: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &b); err != nil {
			b = bucket{}
		}
	}
	if b.ResetAt.IsZero() || !now.Before(b.ResetAt) {
		b = bucket{ResetAt: now.Add(window)}
	}
	b.Count++

	data, err := json.Marshal(b)
	if err != nil {
		return 0, time.Time{}, err
	}
	ttl := b.ResetAt.Sub(now)
	if ttl <= 0 {
		return 0, time.Time{}, errors.New("window already expired")
	}
	if err := s.kv.Set(key, data, ttl); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to write window: %w", err)
	}
	return b.Count, b.ResetAt, nil
}
