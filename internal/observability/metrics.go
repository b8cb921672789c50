package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// weather-outlook service.
type Metrics struct {
	BulletinsParsed     prometheus.Counter
	BulletinParseErrors prometheus.Counter

	AlertsReceived  prometheus.Counter
	AlertsRejected  prometheus.Counter
	ActionsMatched  prometheus.Histogram
	DispatchTotal   *prometheus.CounterVec // labels: action, outcome={success,failure,skipped}
	DispatchSeconds prometheus.Histogram

	NWSRequests   *prometheus.CounterVec   // labels: endpoint, outcome={ok,error}
	NWSSeconds    *prometheus.HistogramVec // labels: endpoint
	WeatherCache  *prometheus.CounterVec   // labels: result={hit,miss,stale}
	LocationCache *prometheus.CounterVec   // labels: result={hit,miss}

	EngineRunning prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.BulletinsParsed,
		m.BulletinParseErrors,
		m.AlertsReceived,
		m.AlertsRejected,
		m.ActionsMatched,
		m.DispatchTotal,
		m.DispatchSeconds,
		m.NWSRequests,
		m.NWSSeconds,
		m.WeatherCache,
		m.LocationCache,
		m.EngineRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		BulletinsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_outlook",
			Name:      "bulletins_parsed_total",
			Help:      "Total HWO bulletins parsed into structured records.",
		}),
		BulletinParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_outlook",
			Name:      "bulletin_parse_errors_total",
			Help:      "Total HWO bulletins missing the header/body boundary.",
		}),
		AlertsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_outlook",
			Name:      "alerts_received_total",
			Help:      "Total alert events received from all sources.",
		}),
		AlertsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_outlook",
			Name:      "alerts_rejected_total",
			Help:      "Total alert events failing validation.",
		}),
		ActionsMatched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_outlook",
			Name:      "actions_matched",
			Help:      "Number of actions resolved per alert event.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_outlook",
			Name:      "dispatch_total",
			Help:      "Dispatched actions by action type and outcome.",
		}, []string{"action", "outcome"}),
		DispatchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_outlook",
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of a single outbound action attempt.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		NWSRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_outlook",
			Name:      "nws_requests_total",
			Help:      "Upstream NWS requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		NWSSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_outlook",
			Name:      "nws_request_duration_seconds",
			Help:      "Upstream NWS request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_outlook",
			Name:      "weather_cache_total",
			Help:      "Weather snapshot cache lookups by result.",
		}, []string{"result"}),
		LocationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_outlook",
			Name:      "location_cache_total",
			Help:      "Point-lookup cache lookups by result.",
		}, []string{"result"}),
		EngineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_outlook",
			Name:      "alert_engine_running",
			Help:      "1 when the alert engine loop is active, 0 when shut down.",
		}),
	}
}
