package nws

import (
	"context"
	"fmt"

	"github.com/couchcryptid/weather-outlook/internal/observability"
)

// API is the NWS client surface consumed by the weather service.
type API interface {
	Point(ctx context.Context, lat, lon float64) (GridPoint, error)
	Office(ctx context.Context, id string) (OfficeLocation, error)
	Forecast(ctx context.Context, gp GridPoint) ([]ForecastPeriod, error)
	HourlyForecast(ctx context.Context, gp GridPoint) ([]ForecastPeriod, error)
	Outlook(ctx context.Context, office string) ([]string, error)
}

// CachedClient wraps an API with in-memory LRU caches for gridpoint and
// office lookups. Those mappings are effectively static, unlike forecasts
// and outlooks which pass through uncached.
type CachedClient struct {
	inner   API
	points  *lruCache[GridPoint]
	offices *lruCache[OfficeLocation]
	metrics *observability.Metrics
}

// NewCachedClient creates a cache decorator around an NWS client.
func NewCachedClient(inner API, maxEntries int, metrics *observability.Metrics) *CachedClient {
	return &CachedClient{
		inner:   inner,
		points:  newLRUCache[GridPoint](maxEntries),
		offices: newLRUCache[OfficeLocation](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedClient) Point(ctx context.Context, lat, lon float64) (GridPoint, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	if gp, ok := c.points.get(key); ok {
		c.metrics.LocationCache.WithLabelValues("hit").Inc()
		return gp, nil
	}
	c.metrics.LocationCache.WithLabelValues("miss").Inc()

	gp, err := c.inner.Point(ctx, lat, lon)
	if err != nil {
		return gp, err
	}
	c.points.put(key, gp)
	return gp, nil
}

func (c *CachedClient) Office(ctx context.Context, id string) (OfficeLocation, error) {
	if loc, ok := c.offices.get(id); ok {
		c.metrics.LocationCache.WithLabelValues("hit").Inc()
		return loc, nil
	}
	c.metrics.LocationCache.WithLabelValues("miss").Inc()

	loc, err := c.inner.Office(ctx, id)
	if err != nil {
		return loc, err
	}
	// Only cache offices with a known location so transient API gaps retry.
	if loc.City != "" {
		c.offices.put(id, loc)
	}
	return loc, nil
}

func (c *CachedClient) Forecast(ctx context.Context, gp GridPoint) ([]ForecastPeriod, error) {
	return c.inner.Forecast(ctx, gp)
}

func (c *CachedClient) HourlyForecast(ctx context.Context, gp GridPoint) ([]ForecastPeriod, error) {
	return c.inner.HourlyForecast(ctx, gp)
}

func (c *CachedClient) Outlook(ctx context.Context, office string) ([]string, error) {
	return c.inner.Outlook(ctx, office)
}
