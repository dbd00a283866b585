package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"postcode_lookup/internal/addresslookup/transport"
)

type memoryEntry struct {
	candidates []transport.Candidate
	expiresAt  time.Time
}

// Memory is a process-local cache with a fixed time-to-live.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]transport.Candidate, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok || m.now().After(entry.expiresAt) {
		return nil, false
	}
	return slices.Clone(entry.candidates), true
}

func (m *Memory) Set(_ context.Context, key string, candidates []transport.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		candidates: slices.Clone(candidates),
		expiresAt:  m.now().Add(m.ttl),
	}
}

// Prune drops expired entries and returns how many were removed.
func (m *Memory) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// RunPruner drops expired entries every interval until ctx is done.
func (m *Memory) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune()
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear removes all cached entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
}
