package rules

import "github.com/couchcryptid/weather-outlook/internal/domain"

// Match resolves the ordered set of actions that fire for one alert event.
// Every matching layer contributes; this is a union, not a first-match:
//
//  1. global severity rules for the event's severity
//  2. global type rules for the event's alert type
//  3. the SAME code override's unconditional actions
//  4. the SAME code override's severity rules
//  5. the SAME code override's type rules
//
// Each layer's internal order is preserved and nothing is de-duplicated: an
// action configured at two layers legitimately fires twice. A severity or
// type value with no configured rules matches nothing at that layer.
func (c *RuleConfig) Match(event domain.AlertEvent) []ActionDef {
	var actions []ActionDef
	actions = append(actions, c.Severity[event.Severity]...)
	actions = append(actions, c.Types[event.AlertType]...)

	if ov, ok := c.Same[string(event.SameCode)]; ok {
		actions = append(actions, ov.Actions...)
		actions = append(actions, ov.Severity[event.Severity]...)
		actions = append(actions, ov.Types[event.AlertType]...)
	}

	return actions
}
