package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Code
	}{
		{"quoted string", `{"same_code": "018089"}`, "018089"},
		{"quoted with leading zeros kept", `{"same_code": "000001"}`, "000001"},
		{"bare number stringified", `{"same_code": 18089}`, "18089"},
		{"null is empty", `{"same_code": null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var event AlertEvent
			require.NoError(t, json.Unmarshal([]byte(tt.json), &event))
			assert.Equal(t, tt.want, event.SameCode)
		})
	}
}

func TestCodeUnmarshalRejectsObjects(t *testing.T) {
	var event AlertEvent
	err := json.Unmarshal([]byte(`{"same_code": {"nested": true}}`), &event)
	assert.Error(t, err)
}

func TestAlertEventNormalize(t *testing.T) {
	event := AlertEvent{
		SameCode:  " 018089 ",
		Severity:  " WARNING ",
		AlertType: " tor ",
	}

	got := event.Normalize()

	assert.Equal(t, Code("018089"), got.SameCode)
	assert.Equal(t, "warning", got.Severity)
	assert.Equal(t, "TOR", got.AlertType)
}

func TestAlertEventValidate(t *testing.T) {
	valid := AlertEvent{SameCode: "018089", Severity: "warning", AlertType: "TOR"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		event AlertEvent
	}{
		{"missing same code", AlertEvent{Severity: "warning", AlertType: "TOR"}},
		{"missing severity", AlertEvent{SameCode: "018089", AlertType: "TOR"}},
		{"missing alert type", AlertEvent{SameCode: "018089", Severity: "warning"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.event.Validate())
		})
	}
}
