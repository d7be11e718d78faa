package quotes

import (
	"context"

	"stockbot/src/config"
	"stockbot/src/metrics"
	redis_utils "stockbot/src/utils/redis"
)

// NewOracleFromConfig returns the HTTP client behind a cache: Redis when
// enabled, in-process otherwise. The close function releases the cache.
func NewOracleFromConfig(ctx context.Context, cfg *config.Config, quoteMetrics *metrics.QuoteMetrics) (*CachedOracle, func(), error) {
	client := NewClient(cfg)
	ttl := cfg.ExternalClients.Quotes.CacheTTL()

	if !cfg.Databases.Redis.Enabled {
		return NewCachedOracle(client, NewMemoryQuoteCache(), ttl, quoteMetrics), func() {}, nil
	}

	handler, err := redis_utils.NewRedisHandler(ctx, cfg.Databases.Redis, "stockbot:quote:")
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = handler.Close() }
	return NewCachedOracle(client, NewRedisQuoteCache(handler), ttl, quoteMetrics), closeFn, nil
}
