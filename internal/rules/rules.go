// Package rules holds the layered alert-action configuration and the matcher
// that resolves which actions fire for an incoming alert event.
//
// The configuration is loaded once at startup and treated as read-only for
// the process lifetime; concurrent readers need no locking.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig reports that the alert rule tree failed shape validation.
// The process refuses to start on it: silently degraded emergency
// notification is worse than a failed boot.
var ErrInvalidConfig = errors.New("invalid alert rule configuration")

// ActionWebhook is the only action type currently supported.
const ActionWebhook = "webhook"

// WebhookData configures one outbound webhook call. Header values may carry
// secrets and must never be logged.
type WebhookData struct {
	URL     string            `yaml:"url" json:"url"`
	Method  string            `yaml:"method" json:"method"`
	Headers map[string]string `yaml:"headers" json:"headers,omitempty"`
}

// ActionDef is one configured reaction to a matching alert.
type ActionDef struct {
	Type string      `yaml:"type" json:"type"`
	Data WebhookData `yaml:"data" json:"data"`
}

// SameOverride holds the per-SAME-code rule layers.
type SameOverride struct {
	Comment  string                 `yaml:"comment" json:"comment,omitempty"`
	Actions  []ActionDef            `yaml:"actions" json:"actions,omitempty"`
	Severity map[string][]ActionDef `yaml:"severity" json:"severity,omitempty"`
	Types    map[string][]ActionDef `yaml:"types" json:"types,omitempty"`
}

// RuleConfig is the full layered rule tree: global severity rules, global
// type rules, and per-SAME-code overrides. SAME code keys are strings end to
// end; they are never routed through an integer.
type RuleConfig struct {
	Severity map[string][]ActionDef  `yaml:"severity" json:"severity,omitempty"`
	Types    map[string][]ActionDef  `yaml:"types" json:"types,omitempty"`
	Same     map[string]SameOverride `yaml:"same" json:"same,omitempty"`
}

// Parse decodes the "alerts" tree from raw YAML configuration and validates
// it. Map keys decode directly into Go strings, so a SAME code like "012345"
// keeps its leading zero whether or not the operator quoted it. An empty
// document yields an empty (match-nothing) config.
func Parse(data []byte) (*RuleConfig, error) {
	var root struct {
		Alerts RuleConfig `yaml:"alerts"`
	}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := root.Alerts
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize case-folds lookup keys (severity lower, type upper) and fills in
// webhook method defaults. The severity/type sets are open-ended, so unknown
// values are kept; they simply never match an event.
func (c *RuleConfig) normalize() {
	c.Severity = normalizeRuleMap(c.Severity, strings.ToLower)
	c.Types = normalizeRuleMap(c.Types, strings.ToUpper)
	for code, ov := range c.Same {
		ov.Actions = normalizeActions(ov.Actions)
		ov.Severity = normalizeRuleMap(ov.Severity, strings.ToLower)
		ov.Types = normalizeRuleMap(ov.Types, strings.ToUpper)
		c.Same[code] = ov
	}
}

func normalizeRuleMap(in map[string][]ActionDef, fold func(string) string) map[string][]ActionDef {
	if in == nil {
		return nil
	}
	out := make(map[string][]ActionDef, len(in))
	for key, actions := range in {
		key = fold(strings.TrimSpace(key))
		out[key] = append(out[key], normalizeActions(actions)...)
	}
	return out
}

func normalizeActions(actions []ActionDef) []ActionDef {
	for i := range actions {
		if actions[i].Data.Method == "" {
			actions[i].Data.Method = "POST"
		}
		actions[i].Data.Method = strings.ToUpper(actions[i].Data.Method)
	}
	return actions
}

func (c *RuleConfig) validate() error {
	for severity, actions := range c.Severity {
		if err := validateActions("severity", severity, actions); err != nil {
			return err
		}
	}
	for alertType, actions := range c.Types {
		if err := validateActions("types", alertType, actions); err != nil {
			return err
		}
	}
	for code, ov := range c.Same {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("%w: empty SAME code key", ErrInvalidConfig)
		}
		if err := validateActions("same", code, ov.Actions); err != nil {
			return err
		}
		for severity, actions := range ov.Severity {
			if err := validateActions("same."+code+".severity", severity, actions); err != nil {
				return err
			}
		}
		for alertType, actions := range ov.Types {
			if err := validateActions("same."+code+".types", alertType, actions); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateActions(layer, key string, actions []ActionDef) error {
	for _, a := range actions {
		if a.Type != ActionWebhook {
			return fmt.Errorf("%w: %s.%s: unknown action type %q", ErrInvalidConfig, layer, key, a.Type)
		}
		if a.Data.URL == "" {
			return fmt.Errorf("%w: %s.%s: webhook action requires a url", ErrInvalidConfig, layer, key)
		}
	}
	return nil
}
