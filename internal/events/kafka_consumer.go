package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/LankaTrails/service-booking/internal/platform/domain"
	"github.com/LankaTrails/service-booking/internal/platform/kafka"
	"github.com/LankaTrails/service-booking/internal/proto/events"
)

// CatalogSyncer applies listing changes to the local offering ledger.
type CatalogSyncer interface {
	SyncFromCatalog(ctx context.Context, evt events.OfferingUpsertedEvent) error
	RemoveFromCatalog(ctx context.Context, id uuid.UUID) error
}

// ListingEventConsumer keeps bookable offerings in step with the listing catalog.
type ListingEventConsumer struct {
	consumer *kafka.Consumer
	syncer   CatalogSyncer
	logger   *zap.Logger
}

// NewListingEventConsumer creates a new ListingEventConsumer.
func NewListingEventConsumer(
	brokers []string,
	groupID string,
	syncer CatalogSyncer,
	logger *zap.Logger,
) *ListingEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicListingEvents, logger)
	return &ListingEventConsumer{
		consumer: consumer,
		syncer:   syncer,
		logger:   logger,
	}
}

// Start begins consuming listing events. This blocks until the context is cancelled.
func (c *ListingEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *ListingEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *ListingEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from listing topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.OfferingUpserted:
		var evt events.OfferingUpsertedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse OfferingUpsertedEvent data", zap.Error(err))
			return nil
		}
		return c.settle(evt.OfferingID, "upsert", c.syncer.SyncFromCatalog(ctx, evt))

	case events.OfferingRemoved:
		var evt events.OfferingRemovedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse OfferingRemovedEvent data", zap.Error(err))
			return nil
		}
		return c.settle(evt.OfferingID, "remove", c.syncer.RemoveFromCatalog(ctx, evt.OfferingID))

	default:
		c.logger.Debug("ignoring unhandled listing event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

// settle decides whether a failed sync is worth redelivering. Domain errors are
// permanent for this message and are only logged; anything else is retried.
func (c *ListingEventConsumer) settle(offeringID uuid.UUID, action string, err error) error {
	if err == nil {
		c.logger.Info("offering synced from catalog",
			zap.String("offering_id", offeringID.String()),
			zap.String("action", action),
		)
		return nil
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		c.logger.Warn("skipping catalog event",
			zap.String("offering_id", offeringID.String()),
			zap.String("action", action),
			zap.String("code", string(de.Code)),
			zap.Error(err),
		)
		return nil
	}

	c.logger.Error("failed to sync offering from catalog",
		zap.String("offering_id", offeringID.String()),
		zap.String("action", action),
		zap.Error(err),
	)
	return err
}
