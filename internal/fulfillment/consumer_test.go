package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/logger"
	"github.com/beezio/settlement-backend/pkg/outbox"
	"github.com/beezio/settlement-backend/pkg/outbox/payloads"
)

type stubClient struct {
	started    []OrderFulfillmentRequest
	dropships  []DropshipOrderRequest
	canceled   []CancelFulfillmentRequest
	dropshipOK bool
	startErr   error
	cancelErr  error
}

func (s *stubClient) StartFulfillment(ctx context.Context, req OrderFulfillmentRequest) error {
	s.started = append(s.started, req)
	return s.startErr
}

func (s *stubClient) CreateDropshipOrder(ctx context.Context, req DropshipOrderRequest) error {
	s.dropships = append(s.dropships, req)
	return nil
}

func (s *stubClient) CancelFulfillment(ctx context.Context, req CancelFulfillmentRequest) error {
	s.canceled = append(s.canceled, req)
	return s.cancelErr
}

func (s *stubClient) DropshipConfigured() bool {
	return s.dropshipOK
}

type stubManager struct {
	checkResult bool
	checkErr    error
	checked     []uuid.UUID
	deleted     []uuid.UUID
}

func (s *stubManager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	s.checked = append(s.checked, eventID)
	return s.checkResult, s.checkErr
}

func (s *stubManager) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	s.deleted = append(s.deleted, eventID)
	return nil
}

func newTestConsumer(client *stubClient, manager *stubManager) *Consumer {
	return &Consumer{
		client:   client,
		manager:  manager,
		decoders: newDecoderRegistry(),
		logg:     logger.New(logger.Options{ServiceName: "fulfillment-test", Output: io.Discard}),
	}
}

func settledMessage(t *testing.T, event payloads.OrderSettledEvent) *gcppubsub.Message {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Source:     "settlement",
		Data:       data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &gcppubsub.Message{
		ID:         "msg-1",
		Data:       raw,
		Attributes: map[string]string{"event_type": "order_settled"},
	}
}

func TestConsumerProcessesSettledEvent(t *testing.T) {
	client := &stubClient{}
	manager := &stubManager{}
	consumer := newTestConsumer(client, manager)

	event := payloads.OrderSettledEvent{
		TransactionID:   uuid.New(),
		SellerID:        uuid.New(),
		PaymentIntentID: "pi_123",
		TotalCents:      5000,
		Currency:        "usd",
	}
	res := consumer.process(context.Background(), settledMessage(t, event))
	if res.nack {
		t.Fatal("expected ack")
	}
	if len(client.started) != 1 {
		t.Fatalf("expected one fulfillment start, got %d", len(client.started))
	}
	if client.started[0].TransactionID != event.TransactionID {
		t.Fatalf("unexpected transaction id %s", client.started[0].TransactionID)
	}
	if len(client.dropships) != 0 {
		t.Fatal("dropship order should not be placed")
	}
}

func TestConsumerPlacesDropshipOrder(t *testing.T) {
	client := &stubClient{dropshipOK: true}
	manager := &stubManager{}
	consumer := newTestConsumer(client, manager)

	event := payloads.OrderSettledEvent{
		TransactionID: uuid.New(),
		SellerID:      uuid.New(),
		TotalCents:    5000,
		Currency:      "usd",
		Dropship:      true,
	}
	res := consumer.process(context.Background(), settledMessage(t, event))
	if res.nack {
		t.Fatal("expected ack")
	}
	if len(client.dropships) != 1 {
		t.Fatalf("expected one dropship order, got %d", len(client.dropships))
	}
}

func TestConsumerSkipsAlreadyProcessed(t *testing.T) {
	client := &stubClient{}
	manager := &stubManager{checkResult: true}
	consumer := newTestConsumer(client, manager)

	res := consumer.process(context.Background(), settledMessage(t, payloads.OrderSettledEvent{TransactionID: uuid.New()}))
	if res.nack {
		t.Fatal("duplicate should ack")
	}
	if len(client.started) != 0 {
		t.Fatal("duplicate should not reach the client")
	}
}

func TestConsumerNacksAndReleasesOnHandlerError(t *testing.T) {
	client := &stubClient{startErr: errors.New("orders service down")}
	manager := &stubManager{}
	consumer := newTestConsumer(client, manager)

	res := consumer.process(context.Background(), settledMessage(t, payloads.OrderSettledEvent{TransactionID: uuid.New()}))
	if !res.nack {
		t.Fatal("handler error should nack")
	}
	if len(manager.deleted) != 1 {
		t.Fatalf("expected idempotency release, got %d deletes", len(manager.deleted))
	}
}

func TestConsumerNacksOnIdempotencyError(t *testing.T) {
	client := &stubClient{}
	manager := &stubManager{checkErr: errors.New("redis down")}
	consumer := newTestConsumer(client, manager)

	res := consumer.process(context.Background(), settledMessage(t, payloads.OrderSettledEvent{TransactionID: uuid.New()}))
	if !res.nack {
		t.Fatal("idempotency failure should nack for retry")
	}
}

func TestConsumerAcksMalformedMessage(t *testing.T) {
	client := &stubClient{}
	manager := &stubManager{}
	consumer := newTestConsumer(client, manager)

	msg := &gcppubsub.Message{ID: "msg-bad", Data: []byte("{not json")}
	res := consumer.process(context.Background(), msg)
	if res.nack {
		t.Fatal("malformed message should ack")
	}
	if len(manager.checked) != 0 {
		t.Fatal("malformed message should not reach idempotency")
	}
}

func TestConsumerCancelsOnRefund(t *testing.T) {
	client := &stubClient{}
	manager := &stubManager{}
	consumer := newTestConsumer(client, manager)

	event := payloads.TransactionRefundedEvent{TransactionID: uuid.New(), AmountCents: 5000}
	data, _ := json.Marshal(event)
	envelope := outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), Data: data}
	raw, _ := json.Marshal(envelope)
	msg := &gcppubsub.Message{
		ID:         "msg-2",
		Data:       raw,
		Attributes: map[string]string{"event_type": "transaction_refunded"},
	}

	res := consumer.process(context.Background(), msg)
	if res.nack {
		t.Fatal("expected ack")
	}
	if len(client.canceled) != 1 {
		t.Fatalf("expected one cancel, got %d", len(client.canceled))
	}
	if client.canceled[0].Reason != "refunded" {
		t.Fatalf("unexpected reason %s", client.canceled[0].Reason)
	}
}
