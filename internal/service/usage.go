package service

import (
	"context"
	"sync"
	"time"
)

// UsageRepo tracks per-day order count and USDC volume for the account. The
// Redis implementation lives in the repository package; MemoryUsage below is
// the fallback when Redis is not configured.
type UsageRepo interface {
	GetDailyUsage(ctx context.Context, account string) (int, float64, error)
	AddDailyUsage(ctx context.Context, account string, orders int, amount float64) error
}

type usageKey struct {
	account string
	day     string
}

type usageEntry struct {
	orders int
	volume float64
}

// MemoryUsage is an in-process UsageRepo. Counters reset when the process
// restarts, which is acceptable for a single-instance deployment.
type MemoryUsage struct {
	mu      sync.Mutex
	entries map[usageKey]usageEntry
}

func NewMemoryUsage() *MemoryUsage {
	return &MemoryUsage{entries: make(map[usageKey]usageEntry)}
}

func (m *MemoryUsage) GetDailyUsage(_ context.Context, account string) (int, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := m.entries[usageKey{account, today()}]
	return entry.orders, entry.volume, nil
}

func (m *MemoryUsage) AddDailyUsage(_ context.Context, account string, orders int, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := usageKey{account, today()}
	entry := m.entries[key]
	entry.orders += orders
	entry.volume += amount

	// Drop stale days so the map stays bounded.
	for k := range m.entries {
		if k.day != key.day {
			delete(m.entries, k)
		}
	}
	m.entries[key] = entry
	return nil
}

func today() string {
	return time.Now().Format("2006-01-02")
}
