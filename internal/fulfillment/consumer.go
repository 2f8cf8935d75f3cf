package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/beezio/settlement-backend/pkg/enums"
	"github.com/beezio/settlement-backend/pkg/logger"
	"github.com/beezio/settlement-backend/pkg/outbox"
	"github.com/beezio/settlement-backend/pkg/outbox/payloads"
	"github.com/beezio/settlement-backend/pkg/outbox/registry"
)

const consumerName = "fulfillment-worker"

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type fulfillmentAPI interface {
	StartFulfillment(ctx context.Context, req OrderFulfillmentRequest) error
	CreateDropshipOrder(ctx context.Context, req DropshipOrderRequest) error
	CancelFulfillment(ctx context.Context, req CancelFulfillmentRequest) error
	DropshipConfigured() bool
}

// Consumer drains settlement events from Pub/Sub and drives the
// downstream fulfillment surfaces, honoring Redis idempotency.
type Consumer struct {
	subscription *gcppubsub.Subscriber
	client       fulfillmentAPI
	manager      idempotencyChecker
	decoders     *registry.DecoderRegistry
	logg         *logger.Logger
}

// NewConsumer builds the fulfillment consumer.
func NewConsumer(subscription *gcppubsub.Subscriber, client fulfillmentAPI, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, errors.New("fulfillment subscription is required")
	}
	if client == nil {
		return nil, errors.New("fulfillment client is required")
	}
	if manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	return &Consumer{
		subscription: subscription,
		client:       client,
		manager:      manager,
		decoders:     newDecoderRegistry(),
		logg:         logg,
	}, nil
}

func newDecoderRegistry() *registry.DecoderRegistry {
	decoders := registry.NewDecoderRegistry()
	decoders.Register(enums.EventOrderSettled, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.OrderSettledEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return &event, nil
	})
	decoders.Register(enums.EventTransactionRefunded, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.TransactionRefundedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return &event, nil
	})
	decoders.Register(enums.EventTransactionDisputed, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.TransactionDisputedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return &event, nil
	})
	return decoders
}

type processResult struct {
	nack bool
}

// Run consumes fulfillment messages until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if c.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{"message_id": msg.ID}
	logCtx := c.logg.WithFields(ctx, fields)

	eventType, envelope, err := c.decodeMessage(msg)
	if err != nil {
		// Malformed messages can never succeed; ack and move on.
		fields["error"] = err.Error()
		c.logg.Warn(logCtx, "invalid fulfillment message")
		return processResult{}
	}

	fields["event_id"] = envelope.EventID
	fields["event_type"] = eventType
	fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	logCtx = c.logg.WithFields(ctx, fields)

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Warn(logCtx, "invalid event id")
		return processResult{}
	}

	already, err := c.manager.CheckAndMarkProcessed(logCtx, consumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	if err := c.handle(logCtx, eventType, envelope); err != nil {
		c.logg.Error(logCtx, "fulfillment handler error", err)
		_ = c.manager.Delete(logCtx, consumerName, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "fulfillment event handled")
	return processResult{}
}

func (c *Consumer) decodeMessage(msg *gcppubsub.Message) (enums.OutboxEventType, outbox.PayloadEnvelope, error) {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		return "", envelope, fmt.Errorf("decode payload envelope: %w", err)
	}

	eventType, err := enums.ParseOutboxEventType(strings.TrimSpace(msg.Attributes["event_type"]))
	if err != nil {
		return "", envelope, fmt.Errorf("event_type: %w", err)
	}

	if strings.TrimSpace(envelope.EventID) == "" {
		envelope.EventID = strings.TrimSpace(msg.Attributes["event_id"])
	}
	if envelope.EventID == "" {
		return "", envelope, errors.New("event_id missing")
	}
	if envelope.Version == 0 {
		envelope.Version = 1
	}
	return eventType, envelope, nil
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	decoded, err := c.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		return err
	}

	switch event := decoded.(type) {
	case *payloads.OrderSettledEvent:
		return c.handleSettled(ctx, event)
	case *payloads.TransactionRefundedEvent:
		return c.client.CancelFulfillment(ctx, CancelFulfillmentRequest{
			TransactionID: event.TransactionID,
			Reason:        "refunded",
		})
	case *payloads.TransactionDisputedEvent:
		return c.client.CancelFulfillment(ctx, CancelFulfillmentRequest{
			TransactionID: event.TransactionID,
			Reason:        "disputed",
		})
	default:
		c.logg.Info(ctx, "event not handled by fulfillment consumer")
		return nil
	}
}

func (c *Consumer) handleSettled(ctx context.Context, event *payloads.OrderSettledEvent) error {
	err := c.client.StartFulfillment(ctx, OrderFulfillmentRequest{
		TransactionID:   event.TransactionID,
		OrderID:         event.OrderID,
		SellerID:        event.SellerID,
		PaymentIntentID: event.PaymentIntentID,
		TotalCents:      event.TotalCents,
		Currency:        event.Currency,
		SettledAt:       event.SettledAt,
	})

	if event.Dropship && c.client.DropshipConfigured() {
		err = multierr.Append(err, c.client.CreateDropshipOrder(ctx, DropshipOrderRequest{
			TransactionID: event.TransactionID,
			OrderID:       event.OrderID,
			Currency:      event.Currency,
		}))
	}
	return err
}
