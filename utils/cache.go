// utils/cache.go
package utils

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a ready client, or nil when addr is empty —
// callers treat a nil client as "cache disabled".
func ConnectRedis(addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// CacheGetJSON loads key into dest. Returns false on miss, disabled
// cache, or any decode error — callers always fall through to the DB.
func CacheGetJSON(ctx context.Context, rdb *redis.Client, key string, dest interface{}) bool {
	if rdb == nil {
		return false
	}
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

// CacheSetJSON stores v under key with a TTL. Failures are logged only;
// the cache is never load-bearing.
func CacheSetJSON(ctx context.Context, rdb *redis.Client, key string, v interface{}, ttl time.Duration) {
	if rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("⚠️ [CACHE] set %s failed: %v", key, err)
	}
}
