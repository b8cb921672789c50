// Package service assembles NWS data into location-oriented weather
// snapshots with short-lived caching.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-outlook/internal/adapter/nws"
	"github.com/couchcryptid/weather-outlook/internal/domain"
	"github.com/couchcryptid/weather-outlook/internal/observability"
)

var (
	// ErrLocationRequired is returned when a query names no location and no
	// default location is configured.
	ErrLocationRequired = errors.New("location required")

	// ErrUnknownLocation is returned when a query names a location that is
	// not configured.
	ErrUnknownLocation = errors.New("unknown location")
)

// Location is a named place the service can answer queries about.
type Location struct {
	Name string
	Lat  float64
	Lon  float64
}

// Query selects a location either by coordinates or by configured name.
// An empty query resolves to the default location. State narrows a name
// lookup when the location table distinguishes same-named places.
type Query struct {
	Lat       float64
	Lon       float64
	HasCoords bool
	City      string
	State     string
}

// Snapshot is everything the service knows about a location at one moment.
type Snapshot struct {
	City      string               `json:"city"`
	State     string               `json:"state"`
	Forecast  []nws.ForecastPeriod `json:"forecast"`
	Hourly    []nws.ForecastPeriod `json:"hourly"`
	Outlook   []domain.Bulletin    `json:"outlook"`
	FetchedAt time.Time            `json:"fetched_at"`
}

// Weather resolves queries to grid cells and serves cached snapshots.
// Snapshots are cached per grid cell for the configured TTL, so repeated
// queries inside the window never hit the NWS API.
type Weather struct {
	api       nws.API
	locations map[string]Location // keyed by lowercased name
	defName   string
	ttl       time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu        sync.Mutex
	snapshots map[string]cachedSnapshot
}

type cachedSnapshot struct {
	snap      Snapshot
	fetchedAt time.Time
}

// NewWeather creates the weather service. The first location in locations is
// the default for queries that name no place.
func NewWeather(api nws.API, locations []Location, ttl time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Weather {
	byName := make(map[string]Location, len(locations))
	defName := ""
	for i, loc := range locations {
		if i == 0 {
			defName = loc.Name
		}
		byName[strings.ToLower(loc.Name)] = loc
	}
	return &Weather{
		api:       api,
		locations: byName,
		defName:   defName,
		ttl:       ttl,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		snapshots: make(map[string]cachedSnapshot),
	}
}

// Snapshot returns the full weather picture for the queried location.
func (w *Weather) Snapshot(ctx context.Context, q Query) (Snapshot, error) {
	lat, lon, err := w.resolve(q)
	if err != nil {
		return Snapshot{}, err
	}

	gp, err := w.api.Point(ctx, lat, lon)
	if err != nil {
		return Snapshot{}, fmt.Errorf("resolve grid point: %w", err)
	}

	key := fmt.Sprintf("%s/%d,%d", gp.Office, gp.GridX, gp.GridY)
	now := w.clock.Now()

	w.mu.Lock()
	cached, ok := w.snapshots[key]
	w.mu.Unlock()
	if ok && now.Sub(cached.fetchedAt) < w.ttl {
		w.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return cached.snap, nil
	}
	w.metrics.WeatherCache.WithLabelValues("miss").Inc()

	snap, err := w.fetch(ctx, gp, now)
	if err != nil {
		// Serve a stale snapshot over an error if we have one.
		if ok {
			w.metrics.WeatherCache.WithLabelValues("stale").Inc()
			w.logger.Warn("serving stale weather snapshot", "grid", key, "error", err)
			return cached.snap, nil
		}
		return Snapshot{}, err
	}

	w.mu.Lock()
	w.snapshots[key] = cachedSnapshot{snap: snap, fetchedAt: now}
	w.mu.Unlock()
	return snap, nil
}

// Forecast returns the condensed forecast periods for the queried location.
func (w *Weather) Forecast(ctx context.Context, q Query) ([]nws.ForecastPeriod, error) {
	snap, err := w.Snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	return snap.Forecast, nil
}

// Hourly returns the hour-by-hour forecast for the queried location.
func (w *Weather) Hourly(ctx context.Context, q Query) ([]nws.ForecastPeriod, error) {
	snap, err := w.Snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	return snap.Hourly, nil
}

// Outlook returns the parsed hazardous weather outlooks for the queried
// location's forecast office.
func (w *Weather) Outlook(ctx context.Context, q Query) ([]domain.Bulletin, error) {
	snap, err := w.Snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	return snap.Outlook, nil
}

// Spotter returns the spotter information statement for the queried
// location, or "" when the current outlook carries none.
func (w *Weather) Spotter(ctx context.Context, q Query) (string, error) {
	snap, err := w.Snapshot(ctx, q)
	if err != nil {
		return "", err
	}
	for _, b := range snap.Outlook {
		if b.SpotterStatement != nil {
			return *b.SpotterStatement, nil
		}
	}
	return "", nil
}

func (w *Weather) resolve(q Query) (float64, float64, error) {
	if q.HasCoords {
		return q.Lat, q.Lon, nil
	}

	name := strings.TrimSpace(q.City)
	if name == "" {
		name = w.defName
	}
	if name == "" {
		return 0, 0, ErrLocationRequired
	}

	if q.State != "" {
		if loc, ok := w.locations[strings.ToLower(name+" "+strings.TrimSpace(q.State))]; ok {
			return loc.Lat, loc.Lon, nil
		}
	}
	loc, ok := w.locations[strings.ToLower(name)]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	}
	return loc.Lat, loc.Lon, nil
}

func (w *Weather) fetch(ctx context.Context, gp nws.GridPoint, now time.Time) (Snapshot, error) {
	forecast, err := w.api.Forecast(ctx, gp)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch forecast: %w", err)
	}

	hourly, err := w.api.HourlyForecast(ctx, gp)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch hourly forecast: %w", err)
	}

	outlook, err := w.fetchOutlook(ctx, gp)
	if err != nil {
		// The outlook page is flakier than the API; a snapshot without it
		// is still useful.
		w.logger.Warn("fetch outlook failed", "office", gp.Office, "error", err)
		outlook = nil
	}

	return Snapshot{
		City:      gp.City,
		State:     gp.State,
		Forecast:  forecast,
		Hourly:    hourly,
		Outlook:   outlook,
		FetchedAt: now,
	}, nil
}

// fetchOutlook parses every outlook product on the office's page and narrows
// to the products issued by the office serving this grid cell. The page can
// carry outlooks from neighboring offices covering the same state.
func (w *Weather) fetchOutlook(ctx context.Context, gp nws.GridPoint) ([]domain.Bulletin, error) {
	texts, err := w.api.Outlook(ctx, gp.Office)
	if err != nil {
		return nil, err
	}

	var bulletins []domain.Bulletin
	for _, text := range texts {
		b, err := domain.ParseBulletin(text)
		if err != nil {
			w.metrics.BulletinParseErrors.Inc()
			w.logger.Warn("skipping malformed outlook product", "office", gp.Office, "error", err)
			continue
		}
		w.metrics.BulletinsParsed.Inc()
		bulletins = append(bulletins, b)
	}

	loc, err := w.api.Office(ctx, gp.Office)
	if err != nil || loc.City == "" {
		if err != nil {
			w.logger.Warn("resolve office location failed", "office", gp.Office, "error", err)
		}
		return bulletins, nil
	}

	var matched []domain.Bulletin
	for _, b := range bulletins {
		if strings.Contains(strings.ToLower(b.Office), strings.ToLower(loc.City)) {
			matched = append(matched, b)
		}
	}
	if len(matched) == 0 {
		return bulletins, nil
	}
	return matched, nil
}
