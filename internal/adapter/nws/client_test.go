package nws

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-outlook/internal/observability"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewClient("weather-outlook-test", 2*time.Second, logger, observability.NewMetricsForTesting())
	c.baseURL = srv.URL
	c.outlookURL = srv.URL + "/wwamap/wwatxtget.php"
	return c, srv
}

func TestPoint(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/points/38.2527,-85.7585", r.URL.Path)
		assert.Equal(t, "weather-outlook-test", r.Header.Get("User-Agent"))
		w.Write([]byte(`{
			"properties": {
				"cwa": "LMK",
				"gridX": 50,
				"gridY": 78,
				"relativeLocation": {
					"properties": {"city": "Louisville", "state": "KY"}
				}
			}
		}`))
	}))

	gp, err := c.Point(context.Background(), 38.2527, -85.7585)
	require.NoError(t, err)

	assert.Equal(t, GridPoint{Office: "LMK", GridX: 50, GridY: 78, City: "Louisville", State: "KY"}, gp)
}

func TestPointMissingOffice(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"properties": {}}`))
	}))

	_, err := c.Point(context.Background(), 38.25, -85.75)
	assert.Error(t, err)
}

func TestOffice(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/offices/LMK", r.URL.Path)
		w.Write([]byte(`{"address": {"addressLocality": "Louisville", "addressRegion": "KY"}}`))
	}))

	loc, err := c.Office(context.Background(), "LMK")
	require.NoError(t, err)
	assert.Equal(t, OfficeLocation{City: "Louisville", State: "KY"}, loc)
}

func TestForecast(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gridpoints/LMK/50,78/forecast", r.URL.Path)
		w.Write([]byte(`{
			"properties": {
				"periods": [
					{
						"name": "Today",
						"isDaytime": true,
						"temperature": 82,
						"temperatureUnit": "F",
						"probabilityOfPrecipitation": {"unitCode": "wmoUnit:percent", "value": 40},
						"windSpeed": "10 mph",
						"windDirection": "SW",
						"shortForecast": "Scattered Thunderstorms"
					}
				]
			}
		}`))
	}))

	periods, err := c.Forecast(context.Background(), GridPoint{Office: "LMK", GridX: 50, GridY: 78})
	require.NoError(t, err)

	require.Len(t, periods, 1)
	assert.Equal(t, "Today", periods[0].Name)
	assert.True(t, periods[0].IsDaytime)
	assert.Equal(t, 82, periods[0].Temperature)
	require.NotNil(t, periods[0].Precipitation.Value)
	assert.Equal(t, 40, *periods[0].Precipitation.Value)
	assert.Equal(t, "Scattered Thunderstorms", periods[0].ShortForecast)
}

func TestHourlyForecastPath(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gridpoints/LMK/50,78/forecast/hourly", r.URL.Path)
		w.Write([]byte(`{"properties": {"periods": []}}`))
	}))

	_, err := c.HourlyForecast(context.Background(), GridPoint{Office: "LMK", GridX: 50, GridY: 78})
	require.NoError(t, err)
}

func TestOutlook(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "LMK", r.URL.Query().Get("cwa"))
		assert.Equal(t, "hazardous weather outlook", r.URL.Query().Get("wwa"))
		w.Write([]byte(`<html><body>
<pre class="glossaryProduct">
Hazardous Weather Outlook
National Weather Service Louisville KY

.DAY ONE...Today.

&amp;&amp;
</pre>
<pre>   </pre>
<pre>Second product</pre>
</body></html>`))
	}))

	texts, err := c.Outlook(context.Background(), "LMK")
	require.NoError(t, err)

	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "National Weather Service Louisville KY")
	// HTML entities come back as product text.
	assert.Contains(t, texts[0], "&&")
	assert.Equal(t, "Second product", texts[1])
}

func TestErrorStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))

	_, err := c.Point(context.Background(), 38.25, -85.75)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
