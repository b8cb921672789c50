package kafka

import (
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-outlook/internal/domain"
)

func TestMapMessage(t *testing.T) {
	msg := kafkago.Message{
		Value: []byte(`{"same_code": "018089", "severity": "warning", "alert_type": "TOR", "headline": "Tornado Warning"}`),
	}

	event, err := mapMessage(msg)
	require.NoError(t, err)

	assert.Equal(t, domain.Code("018089"), event.SameCode)
	assert.Equal(t, "warning", event.Severity)
	assert.Equal(t, "TOR", event.AlertType)
	assert.Equal(t, "Tornado Warning", event.Headline)
}

func TestMapMessageNumericSAMECode(t *testing.T) {
	// Producers sometimes emit the code as a bare number; it must arrive as
	// the equivalent string, never an integer.
	msg := kafkago.Message{
		Value: []byte(`{"same_code": 18089, "severity": "warning", "alert_type": "TOR"}`),
	}

	event, err := mapMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, domain.Code("18089"), event.SameCode)
}

func TestMapMessageInvalidJSON(t *testing.T) {
	_, err := mapMessage(kafkago.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
