package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultMemorySize bounds the in-memory store when no size is given.
const DefaultMemorySize = 256

// MemoryStore is a size-bounded LRU store with per-entry expiry.
type MemoryStore struct {
	entries *lru.Cache
	config  Config
	now     func() time.Time
}

type memoryItem struct {
	value      []byte
	expiration time.Time
}

// NewMemoryStore creates an LRU store holding at most size entries.
func NewMemoryStore(size int, config Config) (*MemoryStore, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("cache: create lru: %w", err)
	}
	return &MemoryStore{entries: entries, config: config, now: time.Now}, nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullKey := m.config.Prefix + key
	raw, ok := m.entries.Get(fullKey)
	if !ok {
		return nil, ErrMiss
	}
	item := raw.(memoryItem)
	if !item.expiration.IsZero() && m.now().After(item.expiration) {
		m.entries.Remove(fullKey)
		return nil, ErrMiss
	}
	return append([]byte(nil), item.value...), nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}
	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiration = m.now().Add(ttl)
	}
	m.entries.Add(m.config.Prefix+key, item)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.entries.Remove(m.config.Prefix + key)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.entries.Purge()
	return nil
}

// Len reports the number of entries, expired ones included.
func (m *MemoryStore) Len() int {
	return m.entries.Len()
}
