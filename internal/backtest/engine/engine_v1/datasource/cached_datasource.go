package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-options/internal/types"
)

// CachedDataSource wraps a DataSource and memoizes successful lookups.
// Errors are not cached so a transient failure can succeed on a later step.
type CachedDataSource struct {
	underlying       DataSource
	priceCache       map[string]optional.Option[float64]
	expirationsCache map[string][]time.Time
	chainCache       map[string][]types.OptionQuote
	mu               sync.RWMutex
}

// NewCachedDataSource creates a new CachedDataSource wrapping the given DataSource.
func NewCachedDataSource(underlying DataSource) *CachedDataSource {
	return &CachedDataSource{
		underlying:       underlying,
		priceCache:       make(map[string]optional.Option[float64]),
		expirationsCache: make(map[string][]time.Time),
		chainCache:       make(map[string][]types.OptionQuote),
	}
}

// ClearCache drops every cached entry.
func (c *CachedDataSource) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.priceCache = make(map[string]optional.Option[float64])
	c.expirationsCache = make(map[string][]time.Time)
	c.chainCache = make(map[string][]types.OptionQuote)
}

// GetUnderlyingPrice implements DataSource with caching.
func (c *CachedDataSource) GetUnderlyingPrice(ctx context.Context, ticker string, date time.Time) (optional.Option[float64], error) {
	key := fmt.Sprintf("%s_%s", ticker, dateKey(date))

	c.mu.RLock()
	if price, ok := c.priceCache[key]; ok {
		c.mu.RUnlock()
		return price, nil
	}
	c.mu.RUnlock()

	price, err := c.underlying.GetUnderlyingPrice(ctx, ticker, date)
	if err != nil {
		return price, err
	}

	c.mu.Lock()
	c.priceCache[key] = price
	c.mu.Unlock()

	return price, nil
}

// ListExpirations implements DataSource with caching.
func (c *CachedDataSource) ListExpirations(ctx context.Context, ticker string, date time.Time, minDTE int, maxDTE int) ([]time.Time, error) {
	key := fmt.Sprintf("%s_%s_%d_%d", ticker, dateKey(date), minDTE, maxDTE)

	c.mu.RLock()
	if expirations, ok := c.expirationsCache[key]; ok {
		c.mu.RUnlock()
		return expirations, nil
	}
	c.mu.RUnlock()

	expirations, err := c.underlying.ListExpirations(ctx, ticker, date, minDTE, maxDTE)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.expirationsCache[key] = expirations
	c.mu.Unlock()

	return expirations, nil
}

// GetOptionChain implements DataSource with caching.
func (c *CachedDataSource) GetOptionChain(ctx context.Context, ticker string, date time.Time, expiration time.Time) ([]types.OptionQuote, error) {
	key := fmt.Sprintf("%s_%s_%s", ticker, dateKey(date), dateKey(expiration))

	c.mu.RLock()
	if chain, ok := c.chainCache[key]; ok {
		c.mu.RUnlock()
		return chain, nil
	}
	c.mu.RUnlock()

	chain, err := c.underlying.GetOptionChain(ctx, ticker, date, expiration)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.chainCache[key] = chain
	c.mu.Unlock()

	return chain, nil
}

// Close implements DataSource.
func (c *CachedDataSource) Close() error {
	return c.underlying.Close()
}

func dateKey(t time.Time) string {
	return types.Date(t).Format("2006-01-02")
}
