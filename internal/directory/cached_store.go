package directory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/healthylinkx/chatbot/internal/cache"
	"github.com/healthylinkx/chatbot/pkg/log"
)

const (
	keyPrefix = "healthylinkx:doctors:"

	// sharedQueryTimeout bounds a coalesced query, which outlives any one caller.
	sharedQueryTimeout = 30 * time.Second
)

// Cache is the byte-oriented key/value store CachedStore reads through.
// *cache.Client satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedStore is a read-through cache in front of another Store. Cache
// failures degrade to a direct query; they never fail the lookup.
type CachedStore struct {
	next  Store
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedStore(next Store, c Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{next: next, cache: c, ttl: ttl}
}

// CacheKey derives the cache key for a filter and limit.
func CacheKey(f Filter, limit int) string {
	sum := sha256.Sum256([]byte(f.String() + "|" + strconv.Itoa(limit)))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (s *CachedStore) Query(ctx context.Context, f Filter, limit int) ([]Doctor, error) {
	key := CacheKey(f, limit)

	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var doctors []Doctor
		if jerr := json.Unmarshal(raw, &doctors); jerr == nil {
			return doctors, nil
		}
		log.Warn("Discarding undecodable cache entry %s", key)
	case errors.Is(err, cache.ErrCacheMiss):
	default:
		log.Warn("Directory cache get failed: %v", err)
	}

	// The shared query runs detached from every caller so one caller's
	// cancellation cannot fail the others waiting on the same key.
	ch := s.group.DoChan(key, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedQueryTimeout)
		defer cancel()

		doctors, err := s.next.Query(qctx, f, limit)
		if err != nil {
			return nil, err
		}
		if payload, err := json.Marshal(doctors); err == nil {
			if err := s.cache.Set(qctx, key, payload, s.ttl); err != nil {
				log.Warn("Directory cache set failed: %v", err)
			}
		}
		return doctors, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Doctor), nil
	}
}
