package subjectcache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Memo is the short-lived read-through store behind Service. Implementations
// treat every failure as a miss; a memo is never the source of truth.
type Memo interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, keys ...string)
	DeletePrefix(ctx context.Context, prefix string)
}

type localEntry struct {
	value     []byte
	expiresAt time.Time
}

// LocalMemo is an in-process Memo with a fixed TTL and an entry cap.
type LocalMemo struct {
	mu         sync.Mutex
	entries    map[string]localEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func NewLocalMemo(ttl time.Duration, maxEntries int) *LocalMemo {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &LocalMemo{
		entries:    make(map[string]localEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *LocalMemo) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

func (m *LocalMemo) Set(_ context.Context, key string, value []byte) {
	if m.ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.evictLocked()
	}
	m.entries[key] = localEntry{value: value, expiresAt: m.now().Add(m.ttl)}
}

func (m *LocalMemo) Delete(_ context.Context, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
}

func (m *LocalMemo) DeletePrefix(_ context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
}

// Len returns the number of entries, expired ones included.
func (m *LocalMemo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// evictLocked drops expired entries, or the one closest to expiry if none are.
func (m *LocalMemo) evictLocked() {
	now := m.now()
	var oldestKey string
	var oldest time.Time
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			continue
		}
		if oldestKey == "" || e.expiresAt.Before(oldest) {
			oldestKey, oldest = k, e.expiresAt
		}
	}
	if len(m.entries) >= m.maxEntries && oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}
