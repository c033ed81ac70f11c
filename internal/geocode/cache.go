package geocode

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/spacesedan/ideiamap/internal/clients"
	"github.com/spacesedan/ideiamap/internal/models"
)

const VALKEY_GEOCODE_PREFIX = "geocode:"

// Cache memoizes resolved points, including "not found" outcomes stored as
// absent points. Implementations must be safe for concurrent use.
//
// SetLocal records an outcome that must not outlive the process, such as a
// lookup that failed against a degraded geocoder.
type Cache interface {
	Get(ctx context.Context, key string) (models.GeoPoint, bool)
	Set(ctx context.Context, key string, point models.GeoPoint)
	SetLocal(ctx context.Context, key string, point models.GeoPoint)
}

// CacheKey normalizes a neighborhood name for cache lookups.
func CacheKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// MemoryCache keeps entries for the lifetime of the process.
type MemoryCache struct {
	items *cache.Cache
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: cache.New(cache.NoExpiration, 0)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (models.GeoPoint, bool) {
	cached, found := m.items.Get(key)
	if !found {
		return models.GeoPoint{}, false
	}
	point, ok := cached.(models.GeoPoint)
	return point, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, point models.GeoPoint) {
	m.items.Set(key, point, cache.NoExpiration)
}

func (m *MemoryCache) SetLocal(ctx context.Context, key string, point models.GeoPoint) {
	m.Set(ctx, key, point)
}

func (m *MemoryCache) Len() int {
	return m.items.ItemCount()
}

// KeyValueStore is the subset of the Valkey client the shared cache needs.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

var _ KeyValueStore = (*clients.ValkeyClient)(nil)

// ValkeyCache shares resolved points between processes. Failures are logged
// and treated as misses.
type ValkeyCache struct {
	store KeyValueStore
	ttl   time.Duration
}

func NewValkeyCache(store KeyValueStore, ttl time.Duration) *ValkeyCache {
	return &ValkeyCache{store: store, ttl: ttl}
}

func (v *ValkeyCache) Get(ctx context.Context, key string) (models.GeoPoint, bool) {
	raw, found, err := v.store.Get(ctx, VALKEY_GEOCODE_PREFIX+key)
	if err != nil {
		slog.Warn("[GeocodeCache] Valkey get failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return models.GeoPoint{}, false
	}
	if !found {
		return models.GeoPoint{}, false
	}

	var point models.GeoPoint
	if err := json.Unmarshal([]byte(raw), &point); err != nil {
		slog.Warn("[GeocodeCache] Discarding unreadable cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return models.GeoPoint{}, false
	}
	return point, true
}

func (v *ValkeyCache) Set(ctx context.Context, key string, point models.GeoPoint) {
	raw, err := json.Marshal(point)
	if err != nil {
		return
	}
	if err := v.store.Set(ctx, VALKEY_GEOCODE_PREFIX+key, string(raw), v.ttl); err != nil {
		slog.Warn("[GeocodeCache] Valkey set failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// SetLocal is a no-op, the shared tier only holds definitive answers.
func (v *ValkeyCache) SetLocal(context.Context, string, models.GeoPoint) {}

// TieredCache reads the in-process cache first and backfills it from the
// shared tier.
type TieredCache struct {
	local  Cache
	shared Cache
}

func NewTieredCache(local, shared Cache) *TieredCache {
	return &TieredCache{local: local, shared: shared}
}

func (t *TieredCache) Get(ctx context.Context, key string) (models.GeoPoint, bool) {
	if point, ok := t.local.Get(ctx, key); ok {
		return point, true
	}
	point, ok := t.shared.Get(ctx, key)
	if ok {
		t.local.Set(ctx, key, point)
	}
	return point, ok
}

func (t *TieredCache) Set(ctx context.Context, key string, point models.GeoPoint) {
	t.local.Set(ctx, key, point)
	t.shared.Set(ctx, key, point)
}

func (t *TieredCache) SetLocal(ctx context.Context, key string, point models.GeoPoint) {
	t.local.Set(ctx, key, point)
}
