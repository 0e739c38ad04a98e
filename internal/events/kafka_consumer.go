package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/pousadapro/service-booking/internal/platform/kafka"
)

// FeedApplier materializes a parsed feed result. Satisfied by
// application.CalendarService.
type FeedApplier interface {
	ApplyFeedResult(ctx context.Context, event CalendarFeedParsedEvent) error
}

// CalendarFeedConsumer listens for parsed-feed events from the external sync
// worker and materializes them as imported bookings.
type CalendarFeedConsumer struct {
	consumer *kafka.Consumer
	applier  FeedApplier
	logger   *zap.Logger
}

// NewCalendarFeedConsumer creates a new CalendarFeedConsumer.
func NewCalendarFeedConsumer(
	brokers []string,
	groupID string,
	applier FeedApplier,
	logger *zap.Logger,
) *CalendarFeedConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicCalendarEvents, logger)
	return &CalendarFeedConsumer{
		consumer: consumer,
		applier:  applier,
		logger:   logger,
	}
}

// Start begins consuming calendar events. This blocks until the context is
// cancelled.
func (c *CalendarFeedConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CalendarFeedConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CalendarFeedConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from calendar topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case CalendarFeedParsed:
		return c.handleFeedParsed(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled calendar event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *CalendarFeedConsumer) handleFeedParsed(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt CalendarFeedParsedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse CalendarFeedParsedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing parsed calendar feed",
		zap.String("sync_id", evt.SyncID.String()),
		zap.String("property_id", evt.PropertyID.String()),
		zap.Int("events", len(evt.Events)),
	)

	if err := c.applier.ApplyFeedResult(ctx, evt); err != nil {
		c.logger.Error("failed to apply parsed feed",
			zap.String("sync_id", evt.SyncID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
