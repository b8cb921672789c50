package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-outlook/internal/config"
	"github.com/couchcryptid/weather-outlook/internal/domain"
)

// Reader consumes alert events from a Kafka topic.
// It implements alerting.Source.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a Kafka consumer for the configured alert topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.AlertTopic,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{reader: r, logger: logger}
}

// Next blocks until a message arrives and maps it to an alert event.
func (r *Reader) Next(ctx context.Context) (domain.AlertEvent, error) {
	msg, err := r.reader.ReadMessage(ctx)
	if err != nil {
		return domain.AlertEvent{}, fmt.Errorf("read alert message: %w", err)
	}
	event, err := mapMessage(msg)
	if err != nil {
		r.logger.Warn("skipping malformed alert message",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return domain.AlertEvent{}, err
	}
	return event, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessage unmarshals a Kafka message into an alert event.
func mapMessage(msg kafkago.Message) (domain.AlertEvent, error) {
	var event domain.AlertEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return domain.AlertEvent{}, fmt.Errorf("deserialize alert event: %w", err)
	}
	return event, nil
}
