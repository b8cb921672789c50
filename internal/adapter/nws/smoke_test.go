//go:build nws

package nws

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-outlook/internal/observability"
)

// These tests hit the real weather.gov APIs.
// Run with: go test -tags=nws ./internal/adapter/nws/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient("weather-outlook smoke test (github.com/couchcryptid/weather-outlook)",
		15*time.Second, logger, observability.NewMetricsForTesting())
}

func TestSmoke_Point(t *testing.T) {
	c := smokeClient(t)

	// Downtown Louisville, KY.
	gp, err := c.Point(context.Background(), 38.2527, -85.7585)
	require.NoError(t, err)

	assert.Equal(t, "LMK", gp.Office)
	assert.Greater(t, gp.GridX, 0)
	assert.Greater(t, gp.GridY, 0)
	assert.Equal(t, "KY", gp.State)
}

func TestSmoke_Office(t *testing.T) {
	c := smokeClient(t)

	loc, err := c.Office(context.Background(), "LMK")
	require.NoError(t, err)

	assert.Equal(t, "Louisville", loc.City)
	assert.Equal(t, "KY", loc.State)
}

func TestSmoke_Forecast(t *testing.T) {
	c := smokeClient(t)
	ctx := context.Background()

	gp, err := c.Point(ctx, 38.2527, -85.7585)
	require.NoError(t, err)

	periods, err := c.Forecast(ctx, gp)
	require.NoError(t, err)
	require.NotEmpty(t, periods)
	assert.NotEmpty(t, periods[0].Name)
	assert.NotEmpty(t, periods[0].ShortForecast)
}

func TestSmoke_Outlook(t *testing.T) {
	c := smokeClient(t)

	// The page always exists; whether it carries products depends on the
	// weather, so only the fetch itself is asserted.
	_, err := c.Outlook(context.Background(), "LMK")
	require.NoError(t, err)
}
