package quotes

import (
	"context"
	"errors"
	"time"

	"stockbot/src/metrics"
	"stockbot/src/models"
	"stockbot/src/utils"
	redis_utils "stockbot/src/utils/redis"
)

type QuoteCache interface {
	Get(ctx context.Context, key string) (models.Quote, bool, error)
	Set(ctx context.Context, key string, quote models.Quote, ttl time.Duration) error
}

// CachedOracle serves recent quotes from a cache and asks next otherwise.
// Failed lookups are not cached.
type CachedOracle struct {
	next    Oracle
	cache   QuoteCache
	ttl     time.Duration
	metrics *metrics.QuoteMetrics
}

func NewCachedOracle(next Oracle, cache QuoteCache, ttl time.Duration, quoteMetrics *metrics.QuoteMetrics) *CachedOracle {
	return &CachedOracle{next: next, cache: cache, ttl: ttl, metrics: quoteMetrics}
}

func (o *CachedOracle) CurrentPrice(ctx context.Context, symbol string, region models.Region) (models.Quote, error) {
	logger := utils.LoggerFromContext(ctx)
	key := string(region) + ":" + models.CanonicalSymbol(symbol)

	quote, ok, err := o.cache.Get(ctx, key)
	if err != nil {
		logger.WithError(err).WithField("key", key).Warn("quote cache read failed")
	}
	if ok {
		o.metrics.ObserveLookup("hit")
		return quote, nil
	}

	quote, err = o.next.CurrentPrice(ctx, symbol, region)
	if err != nil {
		o.metrics.ObserveLookup("error")
		return models.Quote{}, err
	}
	o.metrics.ObserveLookup("miss")

	if err := o.cache.Set(ctx, key, quote, o.ttl); err != nil {
		logger.WithError(err).WithField("key", key).Warn("quote cache write failed")
	}
	return quote, nil
}

type MemoryQuoteCache struct {
	cache *utils.Cache[string, models.Quote]
}

func NewMemoryQuoteCache() *MemoryQuoteCache {
	return &MemoryQuoteCache{cache: utils.NewCache[string, models.Quote]()}
}

func (c *MemoryQuoteCache) Get(_ context.Context, key string) (models.Quote, bool, error) {
	quote, ok := c.cache.Get(key)
	return quote, ok, nil
}

func (c *MemoryQuoteCache) Set(_ context.Context, key string, quote models.Quote, ttl time.Duration) error {
	c.cache.Set(key, quote, ttl)
	c.cache.Purge()
	return nil
}

// RedisQuoteCache shares quotes between the API and worker processes.
type RedisQuoteCache struct {
	handler *redis_utils.RedisHandler
}

func NewRedisQuoteCache(handler *redis_utils.RedisHandler) *RedisQuoteCache {
	return &RedisQuoteCache{handler: handler}
}

func (c *RedisQuoteCache) Get(ctx context.Context, key string) (models.Quote, bool, error) {
	var quote models.Quote
	err := c.handler.Get(ctx, key, &quote)
	if errors.Is(err, redis_utils.ErrCacheMiss) {
		return models.Quote{}, false, nil
	}
	if err != nil {
		return models.Quote{}, false, err
	}
	return quote, true, nil
}

func (c *RedisQuoteCache) Set(ctx context.Context, key string, quote models.Quote, ttl time.Duration) error {
	return c.handler.Set(ctx, key, quote, ttl)
}
