// Package alerting wires an alert-event source to the rule matcher and the
// action dispatcher.
package alerting

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-outlook/internal/dispatch"
	"github.com/couchcryptid/weather-outlook/internal/domain"
	"github.com/couchcryptid/weather-outlook/internal/observability"
	"github.com/couchcryptid/weather-outlook/internal/rules"
)

// Source yields incoming alert events. Next blocks until an event arrives or
// the context is cancelled.
type Source interface {
	Next(ctx context.Context) (domain.AlertEvent, error)
}

// Engine normalizes incoming alerts, resolves matching actions, and hands
// them to the dispatcher. The rule config is immutable process-wide state, so
// Handle is safe for concurrent callers.
type Engine struct {
	source     Source
	rules      *rules.RuleConfig
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
}

// New creates an Engine. Source may be nil when alerts only arrive via the
// HTTP ingest endpoint.
func New(source Source, cfg *rules.RuleConfig, d *dispatch.Dispatcher, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		source:     source,
		rules:      cfg,
		dispatcher: d,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once the consume loop is running, or
// immediately when there is no streaming source to wait for.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if e.source == nil {
		return nil
	}
	if !e.ready.Load() {
		return errors.New("alert engine has not started")
	}
	return nil
}

// Handle processes one alert event synchronously: normalize, validate,
// match, dispatch. Returns the per-action outcomes; dispatch failures live in
// the outcomes, not in the error.
func (e *Engine) Handle(ctx context.Context, event domain.AlertEvent) ([]dispatch.Outcome, error) {
	e.metrics.AlertsReceived.Inc()

	event = event.Normalize()
	if err := event.Validate(); err != nil {
		e.metrics.AlertsRejected.Inc()
		return nil, err
	}

	actions := e.rules.Match(event)
	e.metrics.ActionsMatched.Observe(float64(len(actions)))
	if len(actions) == 0 {
		e.logger.Debug("no actions matched",
			"same_code", event.SameCode,
			"severity", event.Severity,
			"alert_type", event.AlertType,
		)
		return nil, nil
	}

	outcomes := e.dispatcher.Dispatch(ctx, actions, event)

	failed := 0
	for _, o := range outcomes {
		if !o.OK() {
			failed++
		}
	}
	e.logger.Info("alert dispatched",
		"same_code", event.SameCode,
		"severity", event.Severity,
		"alert_type", event.AlertType,
		"actions", len(outcomes),
		"failed", failed,
	)
	return outcomes, nil
}

// Run consumes events from the source until the context is cancelled.
// Returns nil immediately when no source is configured.
func (e *Engine) Run(ctx context.Context) error {
	if e.source == nil {
		return nil
	}

	e.logger.Info("alert engine started")
	e.metrics.EngineRunning.Set(1)
	defer e.metrics.EngineRunning.Set(0)
	e.ready.Store(true)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("alert engine stopping", "reason", ctx.Err())
			return nil
		default:
		}

		event, err := e.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			e.logger.Error("read alert event failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond

		if _, err := e.Handle(ctx, event); err != nil {
			e.logger.Warn("dropping invalid alert event", "error", err)
		}
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
