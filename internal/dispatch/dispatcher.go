// Package dispatch executes the actions resolved for an alert event.
// Each attempt is independent: one failing webhook never blocks its siblings,
// and no retries are performed (at-most-one-attempt semantics).
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/weather-outlook/internal/domain"
	"github.com/couchcryptid/weather-outlook/internal/observability"
	"github.com/couchcryptid/weather-outlook/internal/rules"
)

// Outcome records the result of one action attempt.
type Outcome struct {
	Action string `json:"action"`
	URL    string `json:"url,omitempty"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// OK reports whether the attempt succeeded.
func (o Outcome) OK() bool {
	return o.Error == ""
}

// Dispatcher issues outbound calls for resolved actions.
type Dispatcher struct {
	client  *http.Client
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewDispatcher creates a Dispatcher with a fixed per-call timeout so one
// slow target cannot stall unrelated actions indefinitely.
func NewDispatcher(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// payload is the JSON body forwarded to body-carrying webhook calls.
type payload struct {
	Event     string            `json:"event"`
	Timestamp string            `json:"timestamp"`
	Alert     domain.AlertEvent `json:"alert"`
}

// Dispatch runs every action in order and returns one Outcome per action, in
// the same order. A failed action is reported in its Outcome, never raised.
func (d *Dispatcher) Dispatch(ctx context.Context, actions []rules.ActionDef, event domain.AlertEvent) []Outcome {
	body, err := json.Marshal(payload{
		Event:     "weather_alert",
		Timestamp: domain.Clock().Now().UTC().Format(time.RFC3339),
		Alert:     event,
	})
	if err != nil {
		// Marshal of a plain struct only fails on programming errors, but a
		// dispatch must still report per-action outcomes rather than panic.
		outcomes := make([]Outcome, len(actions))
		for i, a := range actions {
			outcomes[i] = Outcome{Action: a.Type, Error: fmt.Sprintf("marshal alert payload: %v", err)}
		}
		return outcomes
	}

	outcomes := make([]Outcome, 0, len(actions))
	for _, action := range actions {
		outcomes = append(outcomes, d.run(ctx, action, body))
	}
	return outcomes
}

func (d *Dispatcher) run(ctx context.Context, action rules.ActionDef, body []byte) Outcome {
	switch action.Type {
	case rules.ActionWebhook:
		return d.webhook(ctx, action.Data, body)
	default:
		// Unrecognized types are a configuration error, reported per action
		// rather than aborting the dispatch.
		d.logger.Warn("skipping action with unknown type", "type", action.Type)
		d.metrics.DispatchTotal.WithLabelValues(action.Type, "skipped").Inc()
		return Outcome{Action: action.Type, Error: fmt.Sprintf("unknown action type %q", action.Type)}
	}
}

// bodyMethods are the HTTP verbs that carry the alert payload as a body.
var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

func (d *Dispatcher) webhook(ctx context.Context, data rules.WebhookData, body []byte) Outcome {
	outcome := Outcome{Action: rules.ActionWebhook, URL: data.URL}

	var reader io.Reader
	if bodyMethods[data.Method] {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, data.Method, data.URL, reader)
	if err != nil {
		outcome.Error = fmt.Sprintf("create webhook request: %v", err)
		d.metrics.DispatchTotal.WithLabelValues(rules.ActionWebhook, "failure").Inc()
		return outcome
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Configured header values may carry credentials; they are set on the
	// request but never logged.
	for name, value := range data.Headers {
		req.Header.Set(name, value)
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	d.metrics.DispatchSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome.Error = fmt.Sprintf("send webhook: %v", err)
		d.metrics.DispatchTotal.WithLabelValues(rules.ActionWebhook, "failure").Inc()
		d.logger.Warn("webhook dispatch failed", "url", data.URL, "error", err)
		return outcome
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // drain for connection reuse

	outcome.Status = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome.Error = fmt.Sprintf("webhook returned status %d", resp.StatusCode)
		d.metrics.DispatchTotal.WithLabelValues(rules.ActionWebhook, "failure").Inc()
		d.logger.Warn("webhook dispatch failed", "url", data.URL, "status", resp.StatusCode)
		return outcome
	}

	d.metrics.DispatchTotal.WithLabelValues(rules.ActionWebhook, "success").Inc()
	return outcome
}
