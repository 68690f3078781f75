package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"uct-dashboard/backend-go/internal/metrics"
)

// Cache keys shared by the services and the push handler.
const (
	KeyWireData          = "wire_data"
	KeyBreadth           = "breadth"
	KeyLeadership        = "leadership"
	KeyRundown           = "rundown"
	KeyRundownPostMarket = "rundown_post_market"
	KeyEarnings          = "earnings"
	KeyNews              = "news"
	KeyScreener          = "screener"
	KeyMovers            = "movers"
	KeySnapshot          = "snapshot"
)

func themesKey(period string) string { return "themes_" + period }

func tickerSnapshotKey(sym string) string { return KeySnapshot + ":" + sym }

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string)
}

// MemoryCache is a process-local TTL map. Entries expire lazily on read;
// there is no sweeper and no size bound.
type MemoryCache struct {
	mu      sync.Mutex
	items   map[string]memItem
	now     func() time.Time
	metrics *metrics.Metrics
}

type memItem struct {
	val []byte
	exp time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memItem), now: time.Now}
}

// WithMetrics reports hits and misses to m.
func (m *MemoryCache) WithMetrics(mt *metrics.Metrics) *MemoryCache {
	m.metrics = mt
	return m
}

// WithClock replaces the time source. Used by tests.
func (m *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	m.now = now
	return m
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		m.metrics.CacheMiss(key)
		return nil, false
	}
	if m.now().After(it.exp) {
		delete(m.items, key)
		m.metrics.CacheMiss(key)
		return nil, false
	}
	m.metrics.CacheHit(key)
	return it.val, true
}

func (m *MemoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memItem{val: val, exp: m.now().Add(ttl)}
	return nil
}

func (m *MemoryCache) Invalidate(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

func MarshalCache(v any) ([]byte, error) {
	return json.Marshal(v)
}

func UnmarshalCache(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// cacheGet decodes a cached view into T.
func cacheGet[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var out T
	b, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := UnmarshalCache(b, &out); err != nil {
		return out, false
	}
	return out, true
}

func cacheSet(ctx context.Context, c Cache, key string, v any, ttl time.Duration) {
	if b, err := MarshalCache(v); err == nil {
		_ = c.Set(ctx, key, b, ttl)
	}
}
