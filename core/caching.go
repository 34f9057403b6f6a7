package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cachedResult serves a metric group from the query cache, computing and
// storing it on a miss. Failed results are never stored.
func cachedResult[T any](in *Insight, group schema.MetricGroup, repo string, compute func() Result[T]) Result[T] {
	store := in.queryStore()
	if store == nil {
		// Fallback to direct computation
		return compute()
	}

	key := generateCacheKey(group, repo)

	// Check for cache hit
	if value, hit := checkCacheHit[T](store, key, in.cacheTTL); hit {
		return success(value)
	}

	// Cache miss: compute and store
	r := compute()
	if r.Err == nil {
		storeResult(store, key, r.Value)
	}
	return r
}

// queryStore returns the configured query cache, if any.
func (in *Insight) queryStore() contract.CacheStore {
	if in.mgr == nil {
		return nil
	}
	return in.mgr.GetQueryStore()
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit[T any](store contract.CacheStore, key string, ttl time.Duration) (T, bool) {
	var result T
	data, version, ts, err := store.Get(key)
	if err != nil {
		return result, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > ttl {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}

// storeResult serializes value into the cache. Write failures only cost a future miss.
func storeResult[T any](store contract.CacheStore, key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to store query result", err)
	}
}

// generateCacheKey hashes the query name of group together with repo.
func generateCacheKey(group schema.MetricGroup, repo string) string {
	key := group.QueryKey() + ":" + repo
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
