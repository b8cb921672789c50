package nws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-outlook/internal/observability"
)

type fakeAPI struct {
	pointCalls    int
	officeCalls   int
	forecastCalls int
	point         GridPoint
	office        OfficeLocation
}

func (f *fakeAPI) Point(_ context.Context, _, _ float64) (GridPoint, error) {
	f.pointCalls++
	return f.point, nil
}

func (f *fakeAPI) Office(_ context.Context, _ string) (OfficeLocation, error) {
	f.officeCalls++
	return f.office, nil
}

func (f *fakeAPI) Forecast(_ context.Context, _ GridPoint) ([]ForecastPeriod, error) {
	f.forecastCalls++
	return nil, nil
}

func (f *fakeAPI) HourlyForecast(_ context.Context, _ GridPoint) ([]ForecastPeriod, error) {
	return nil, nil
}

func (f *fakeAPI) Outlook(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func TestCachedClientPoint(t *testing.T) {
	inner := &fakeAPI{point: GridPoint{Office: "LMK", GridX: 50, GridY: 78}}
	c := NewCachedClient(inner, 10, observability.NewMetricsForTesting())

	ctx := context.Background()
	first, err := c.Point(ctx, 38.2527, -85.7585)
	require.NoError(t, err)
	second, err := c.Point(ctx, 38.2527, -85.7585)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.pointCalls)

	// Different coordinates miss.
	_, err = c.Point(ctx, 39.7684, -86.1581)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.pointCalls)
}

func TestCachedClientOffice(t *testing.T) {
	inner := &fakeAPI{office: OfficeLocation{City: "Louisville", State: "KY"}}
	c := NewCachedClient(inner, 10, observability.NewMetricsForTesting())

	ctx := context.Background()
	_, err := c.Office(ctx, "LMK")
	require.NoError(t, err)
	_, err = c.Office(ctx, "LMK")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.officeCalls)
}

func TestCachedClientSkipsUnknownOffice(t *testing.T) {
	inner := &fakeAPI{}
	c := NewCachedClient(inner, 10, observability.NewMetricsForTesting())

	ctx := context.Background()
	_, err := c.Office(ctx, "XXX")
	require.NoError(t, err)
	_, err = c.Office(ctx, "XXX")
	require.NoError(t, err)

	// Empty results are not cached, so the lookup retries.
	assert.Equal(t, 2, inner.officeCalls)
}

func TestCachedClientForecastPassesThrough(t *testing.T) {
	inner := &fakeAPI{}
	c := NewCachedClient(inner, 10, observability.NewMetricsForTesting())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.Forecast(ctx, GridPoint{Office: "LMK"})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.forecastCalls)
}

func TestLRUCacheEviction(t *testing.T) {
	cache := newLRUCache[int](2)

	cache.put("a", 1)
	cache.put("b", 2)

	// Touch "a" so "b" becomes least recently used.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", 3)

	_, ok = cache.get("b")
	assert.False(t, ok)
	v, ok := cache.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = cache.get("c")
	assert.True(t, ok)
}
