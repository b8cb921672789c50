package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Code is a string identifier that tolerates clients sending bare JSON
// numbers. The textual form is preserved as written, so values with leading
// zeros are never routed through an integer (a SAME code like "012345" must
// never become 12345, or worse, an octal reinterpretation).
type Code string

func (c *Code) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	if trimmed == "null" {
		*c = ""
		return nil
	}

	// Bare number token: keep the text exactly as the client wrote it.
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("code must be a string or number: %w", err)
	}
	*c = Code(n.String())
	return nil
}

// AlertEvent is one incoming emergency alert to match against the rule
// configuration. All three fields are required.
type AlertEvent struct {
	// SameCode is the Specific Area Message Encoding geographic code,
	// always handled as a string.
	SameCode Code `json:"same_code"`

	// Severity is the alert severity, e.g. "test", "watch", "advisory",
	// "warning". The set is open-ended at the config level.
	Severity string `json:"severity"`

	// AlertType is the three-letter alert type code, e.g. "TOR", "RWT".
	AlertType string `json:"alert_type"`

	// Headline is optional free text forwarded to dispatched actions.
	Headline string `json:"headline,omitempty"`
}

// Normalize returns a copy with whitespace trimmed and case folded: severity
// lower, type upper. SAME codes compare byte-for-byte and are only trimmed.
func (e AlertEvent) Normalize() AlertEvent {
	e.SameCode = Code(strings.TrimSpace(string(e.SameCode)))
	e.Severity = strings.ToLower(strings.TrimSpace(e.Severity))
	e.AlertType = strings.ToUpper(strings.TrimSpace(e.AlertType))
	return e
}

// Validate reports whether the event carries all required fields.
func (e AlertEvent) Validate() error {
	if e.SameCode == "" {
		return errors.New("alert event: same_code is required")
	}
	if e.Severity == "" {
		return errors.New("alert event: severity is required")
	}
	if e.AlertType == "" {
		return errors.New("alert event: alert_type is required")
	}
	return nil
}
