package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/config"
)

// PipelineEvent is the envelope for analytics events emitted by the
// recommendation pipeline and the save workflow.
type PipelineEvent struct {
	EventID   uuid.UUID   `json:"event_id"`
	EventType string      `json:"event_type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EventPublisher writes pipeline events to Kafka. Publishing is
// fire-and-forget: the async writer never blocks a request, and an
// unconfigured broker list yields a nil-safe no-op publisher.
type EventPublisher struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

func NewEventPublisher(cfg *config.KafkaConfig, logger *logrus.Logger) *EventPublisher {
	if len(cfg.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, pipeline events disabled")
		return &EventPublisher{logger: logger}
	}

	return &EventPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topics.PipelineEvents,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			BatchTimeout: 10 * time.Millisecond,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					logger.WithError(err).Warn("Failed to deliver pipeline events")
				}
			},
		},
		logger: logger,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) {
	if p.writer == nil {
		return
	}

	event := PipelineEvent{
		EventID:   uuid.New(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Error("Failed to encode pipeline event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(eventType),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		// Async mode only errors synchronously on a closed writer or
		// invalid message.
		p.logger.WithError(err).Warn("Failed to enqueue pipeline event")
	}
}

func (p *EventPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
