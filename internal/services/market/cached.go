package market

import (
	"context"
	"errors"
	"time"

	"StockX/internal/domain/models"
	"StockX/internal/domain/repository"
	"StockX/pkg/cache"
	"StockX/pkg/logger"
)

// CachedFeed memoizes another PriceFeed in a cache.Service. Empty results
// are not cached so a newly listed symbol shows up on the next call.
type CachedFeed struct {
	next   repository.PriceFeed
	cache  cache.Service
	ttl    time.Duration
	logger *logger.Logger
}

func NewCachedFeed(next repository.PriceFeed, c cache.Service, ttl time.Duration, lgr *logger.Logger) *CachedFeed {
	return &CachedFeed{next: next, cache: c, ttl: ttl, logger: lgr}
}

func (f *CachedFeed) History(ctx context.Context, symbol string, period repository.Period) ([]models.PriceBar, error) {
	key := cache.Key("prices", symbol, period.String())

	var bars []models.PriceBar
	err := f.cache.Get(ctx, key, &bars)
	if err == nil {
		return bars, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		f.logger.Warn("price cache read", logger.String("key", key), logger.Error(err))
	}

	bars, err = f.next.History(ctx, symbol, period)
	if err != nil || len(bars) == 0 {
		return bars, err
	}
	if err := f.cache.Set(ctx, key, bars, f.ttl); err != nil {
		f.logger.Warn("price cache write", logger.String("key", key), logger.Error(err))
	}
	return bars, nil
}
