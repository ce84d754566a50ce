package searchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lokamap/placesearch/internal/db"
	"github.com/lokamap/placesearch/internal/domain/intent"
	"github.com/lokamap/placesearch/internal/domain/place"
)

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache stores search results keyed by the intent fields that shape them.
// Store failures degrade to a miss; the cache never fails a search.
type Cache struct {
	store      store
	keyPrefix  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a result cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	s store,
	keyPrefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{
		store:      s,
		keyPrefix:  keyPrefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Get returns the cached result list for an intent. A stored empty list
// reads as a miss, so empty provider answers get retried on the next request.
func (c *Cache) Get(ctx context.Context, i *intent.Intent) ([]place.Place, bool) {
	key := c.cacheKey(i)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached results", zap.String("key", key), zap.Error(err))
		}
		c.incCache("miss")
		return nil, false
	}

	var places []place.Place
	if err := json.Unmarshal(data, &places); err != nil {
		c.logger.Warn("Failed to parse cached results", zap.String("key", key), zap.Error(err))
		c.incCache("miss")
		return nil, false
	}
	if len(places) == 0 {
		c.incCache("miss")
		return nil, false
	}

	c.incCache("hit")
	return places, true
}

// Put stores a result list for an intent with the configured TTL.
func (c *Cache) Put(ctx context.Context, i *intent.Intent, places []place.Place) {
	key := c.cacheKey(i)

	data, err := json.Marshal(places)
	if err != nil {
		c.logger.Warn("Failed to encode results for cache", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache results", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) cacheKey(i *intent.Intent) string {
	return fmt.Sprintf("%splaces:%s:%s:%d:%t",
		c.keyPrefix, i.Query(), i.LocationText(), i.RadiusMeters(), i.OpenNow())
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
