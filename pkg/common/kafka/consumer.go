package kafka

import (
	"context"
	"encoding/json"

	"github.com/revara-health/platform/pkg/common/config"
	"github.com/revara-health/platform/pkg/common/logger"
	"github.com/revara-health/platform/pkg/common/models"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

type EventHandler func(ctx context.Context, event models.Event) error

func NewConsumer(topic string, groupID string) *Consumer {
	cfg := config.Load()
	if groupID == "" {
		groupID = cfg.KafkaGroupID
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{reader: reader}
}

func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := c.reader.FetchMessage(ctx)
			if err != nil {
				logger.Log.WithError(err).Error("Failed to fetch message")
				continue
			}

			var event models.Event
			if err := json.Unmarshal(message.Value, &event); err != nil {
				logger.Log.WithError(err).Error("Failed to unmarshal event")
				c.reader.CommitMessages(ctx, message)
				continue
			}

			if err := handler(ctx, event); err != nil {
				logger.Log.WithError(err).WithFields(map[string]interface{}{
					"event_id": event.ID,
				}).Error("Failed to process event")
				// Don't commit on error, will retry
				continue
			}

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				logger.Log.WithError(err).Error("Failed to commit message")
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// WithDeadLetter forwards failed events to a dead letter topic so one
// poison message cannot block the consumer group. The original error is
// returned, leaving the message to be retried, only when the dead letter
// publish itself fails.
func WithDeadLetter(next EventHandler, dlq *Producer) EventHandler {
	return func(ctx context.Context, event models.Event) error {
		err := next(ctx, event)
		if err == nil {
			return nil
		}

		payload := map[string]interface{}{
			"failed_event_id":   event.ID,
			"failed_event_type": event.Type,
			"error":             err.Error(),
			"data":              event.Data,
		}
		if pubErr := dlq.PublishEvent(ctx, "dead-letter", event.Source, payload); pubErr != nil {
			logger.Log.WithError(pubErr).WithFields(map[string]interface{}{
				"event_id": event.ID,
			}).Error("Failed to publish dead letter")
			return err
		}

		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id": event.ID,
		}).Warn("Event routed to dead letter topic")
		return nil
	}
}
