// Package cache stores symbol-table snapshots in Redis.
//
// Bootstrapping the symbol→slug correspondence table costs one request to
// the quick-search index on every cold start. The snapshot cache lets
// multiple processes (or restarts) share one bootstrap for the duration
// of the snapshot TTL.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.Key{Scope: "symbols", Host: "coinmarketcap.com"}
//
//	snap, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// bootstrap from the live index, then manager.Set(ctx, key, snap)
//	}
//
// # Metrics
//
// The manager exports Prometheus metrics:
//
//   - cmc_cache_hits_total{layer="redis"} - Snapshot hits
//   - cmc_cache_misses_total - Snapshot misses
//   - cmc_cache_size_bytes{layer="redis"} - Stored snapshot size
//   - cmc_cache_errors_total{operation} - Cache operation errors
package cache
