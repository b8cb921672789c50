// Package nws talks to the National Weather Service public APIs: the JSON
// api.weather.gov endpoints for gridpoint resolution and forecasts, and the
// forecast.weather.gov text product page for hazardous weather outlooks.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/couchcryptid/weather-outlook/internal/observability"
)

// GridPoint identifies an NWS forecast grid cell and the place it covers.
type GridPoint struct {
	Office string
	GridX  int
	GridY  int
	City   string
	State  string
}

// OfficeLocation is the city and state of a weather forecast office.
type OfficeLocation struct {
	City  string
	State string
}

// ForecastPeriod is one condensed period from a gridpoint forecast.
type ForecastPeriod struct {
	Name             string      `json:"name"`
	StartTime        string      `json:"startTime"`
	EndTime          string      `json:"endTime"`
	IsDaytime        bool        `json:"isDaytime"`
	Temperature      int         `json:"temperature"`
	TemperatureUnit  string      `json:"temperatureUnit"`
	Precipitation    PrecipValue `json:"probabilityOfPrecipitation"`
	WindSpeed        string      `json:"windSpeed"`
	WindDirection    string      `json:"windDirection"`
	ShortForecast    string      `json:"shortForecast"`
	DetailedForecast string      `json:"detailedForecast"`
}

// PrecipValue is the percent chance of precipitation. The API reports null
// for "no measurable chance", which decodes as a nil Value.
type PrecipValue struct {
	Value *int `json:"value"`
}

// Client calls the NWS APIs. The weather.gov endpoints require a descriptive
// User-Agent and return 403 without one.
type Client struct {
	httpClient *http.Client
	baseURL    string
	outlookURL string
	userAgent  string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an NWS API client.
func NewClient(userAgent string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:    "https://api.weather.gov",
		outlookURL: "https://forecast.weather.gov/wwamap/wwatxtget.php",
		userAgent:  userAgent,
		logger:     logger,
		metrics:    metrics,
	}
}

// Point resolves coordinates to the forecast grid cell covering them.
func (c *Client) Point(ctx context.Context, lat, lon float64) (GridPoint, error) {
	u := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)

	var resp pointsResponse
	if err := c.getJSON(ctx, u, "points", &resp); err != nil {
		return GridPoint{}, err
	}
	if resp.Properties.CWA == "" {
		return GridPoint{}, fmt.Errorf("points response missing grid office for %.4f,%.4f", lat, lon)
	}

	return GridPoint{
		Office: resp.Properties.CWA,
		GridX:  resp.Properties.GridX,
		GridY:  resp.Properties.GridY,
		City:   resp.Properties.RelativeLocation.Properties.City,
		State:  resp.Properties.RelativeLocation.Properties.State,
	}, nil
}

// Office returns the location of a weather forecast office by its identifier.
func (c *Client) Office(ctx context.Context, id string) (OfficeLocation, error) {
	u := fmt.Sprintf("%s/offices/%s", c.baseURL, url.PathEscape(id))

	var resp officeResponse
	if err := c.getJSON(ctx, u, "offices", &resp); err != nil {
		return OfficeLocation{}, err
	}

	return OfficeLocation{
		City:  resp.Address.Locality,
		State: resp.Address.Region,
	}, nil
}

// Forecast fetches the condensed multi-day forecast for a grid cell.
func (c *Client) Forecast(ctx context.Context, gp GridPoint) ([]ForecastPeriod, error) {
	u := fmt.Sprintf("%s/gridpoints/%s/%d,%d/forecast", c.baseURL, gp.Office, gp.GridX, gp.GridY)
	return c.fetchPeriods(ctx, u, "forecast")
}

// HourlyForecast fetches the hour-by-hour forecast for a grid cell.
func (c *Client) HourlyForecast(ctx context.Context, gp GridPoint) ([]ForecastPeriod, error) {
	u := fmt.Sprintf("%s/gridpoints/%s/%d,%d/forecast/hourly", c.baseURL, gp.Office, gp.GridX, gp.GridY)
	return c.fetchPeriods(ctx, u, "forecast_hourly")
}

// preBlockRe pulls the text product out of the wwatxtget HTML page. Each
// outlook on the page is wrapped in its own pre element.
var preBlockRe = regexp.MustCompile(`(?s)<pre[^>]*>(.*?)</pre>`)

// Outlook fetches the hazardous weather outlook products issued by an office.
// Returns the raw bulletin text of each pre block on the page, HTML-unescaped.
func (c *Client) Outlook(ctx context.Context, office string) ([]string, error) {
	params := url.Values{
		"cwa": {office},
		"wwa": {"hazardous weather outlook"},
	}
	u := c.outlookURL + "?" + params.Encode()

	body, err := c.getBody(ctx, u, "outlook")
	if err != nil {
		return nil, err
	}

	matches := preBlockRe.FindAllStringSubmatch(string(body), -1)
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		text := strings.TrimSpace(html.UnescapeString(m[1]))
		if text != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

func (c *Client) fetchPeriods(ctx context.Context, fullURL, endpoint string) ([]ForecastPeriod, error) {
	var resp forecastResponse
	if err := c.getJSON(ctx, fullURL, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Properties.Periods, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL, endpoint string, out any) error {
	body, err := c.getBody(ctx, fullURL, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) getBody(ctx context.Context, fullURL, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json, application/json, text/html")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.NWSSeconds.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.NWSRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.NWSRequests.WithLabelValues(endpoint, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("NWS API error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.NWSRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	c.metrics.NWSRequests.WithLabelValues(endpoint, "ok").Inc()
	return body, nil
}

// NWS API response types.

type pointsResponse struct {
	Properties struct {
		CWA              string `json:"cwa"`
		GridX            int    `json:"gridX"`
		GridY            int    `json:"gridY"`
		RelativeLocation struct {
			Properties struct {
				City  string `json:"city"`
				State string `json:"state"`
			} `json:"properties"`
		} `json:"relativeLocation"`
	} `json:"properties"`
}

type officeResponse struct {
	Address struct {
		Locality string `json:"addressLocality"`
		Region   string `json:"addressRegion"`
	} `json:"address"`
}

type forecastResponse struct {
	Properties struct {
		Periods []ForecastPeriod `json:"periods"`
	} `json:"properties"`
}
