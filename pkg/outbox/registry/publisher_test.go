package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/config"
	"github.com/beezio/settlement-backend/pkg/db/models"
	"github.com/beezio/settlement-backend/pkg/enums"
	"github.com/beezio/settlement-backend/pkg/outbox"
	"github.com/beezio/settlement-backend/pkg/outbox/payloads"
)

func newTestRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{
		FulfillmentTopic:        "fulfillment-topic",
		FulfillmentSubscription: "fulfillment-sub",
	})
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	return reg
}

func encodeEnvelope(t *testing.T, data interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       raw,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return payload
}

func TestResolveOrderSettled(t *testing.T) {
	reg := newTestRegistry(t)

	txID := uuid.New()
	event := models.OutboxEvent{
		EventType:     enums.EventOrderSettled,
		AggregateType: enums.AggregateTransaction,
		AggregateID:   txID,
		Payload: encodeEnvelope(t, payloads.OrderSettledEvent{
			TransactionID:   txID,
			SellerID:        uuid.New(),
			PaymentIntentID: "pi_123",
			TotalCents:      5000,
			Currency:        "usd",
		}),
	}

	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Descriptor.Topic != "fulfillment-topic" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}
	settled, ok := resolved.Payload.(*payloads.OrderSettledEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if settled.TransactionID != txID || settled.TotalCents != 5000 {
		t.Fatalf("payload fields lost: %+v", settled)
	}
}

func TestResolveRejectsUnknownEventType(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.OutboxEventType("mystery"),
		AggregateType: enums.AggregateTransaction,
		AggregateID:   uuid.New(),
	})
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func TestResolveRejectsAggregateMismatch(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderSettled,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       encodeEnvelope(t, payloads.OrderSettledEvent{}),
	})
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func TestResolveRejectsEmptyPayload(t *testing.T) {
	reg := newTestRegistry(t)

	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version: 1,
		EventID: uuid.NewString(),
		Data:    json.RawMessage("null"),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	_, err = reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderSettled,
		AggregateType: enums.AggregateTransaction,
		AggregateID:   uuid.New(),
		Payload:       envelope,
	})
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}
