package indicator

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// CacheKey identifies one indicator computation by function identity,
// parameters and the data window it ran over.
type CacheKey struct {
	Indicator string
	Length    int
	DataHash  string
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%d:%s", k.Indicator, k.Length, k.DataHash)
}

// SeriesCache provides content-addressed in-memory caching for computed
// indicator series, so repeated backtest runs over the same window never
// recompute identical columns.
type SeriesCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewSeriesCache creates a new indicator series cache
func NewSeriesCache(ttl time.Duration) *SeriesCache {
	return &SeriesCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// HashData fingerprints a data window for use as a cache key component.
func HashData(values []float64) string {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		h.Write(buf)
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}

// Get retrieves a cached series, or nil on miss.
func (sc *SeriesCache) Get(key CacheKey) []float64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if result, found := sc.cache.Get(key.String()); found {
		sc.hitCount++
		if values, ok := result.([]float64); ok {
			return values
		}
	}
	sc.missCount++
	return nil
}

// Set stores a computed series in cache.
func (sc *SeriesCache) Set(key CacheKey, values []float64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cache.Set(key.String(), values, sc.ttl)
}

// GetOrCompute returns the cached series for the key, computing and
// storing it on a miss.
func (sc *SeriesCache) GetOrCompute(key CacheKey, compute func() []float64) []float64 {
	if values := sc.Get(key); values != nil {
		return values
	}
	values := compute()
	sc.Set(key, values)
	return values
}

// Clear flushes the entire cache
func (sc *SeriesCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cache.Flush()
	sc.hitCount = 0
	sc.missCount = 0
}

// Stats returns cache statistics
func (sc *SeriesCache) Stats() (hits, misses uint64, ratio float64) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	hits = sc.hitCount
	misses = sc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (sc *SeriesCache) ItemCount() int {
	return sc.cache.ItemCount()
}
