package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PaymentEvent records every inbound processor event by its globally unique
// identifier. The unique index on stripe_event_id is the durable idempotency
// guard: a second insert of the same event id fails and the delivery is
// treated as a replay.
type PaymentEvent struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StripeEventID    string          `gorm:"column:stripe_event_id;not null;unique"`
	Type             string          `gorm:"column:type;not null"`
	PaymentIntentID  *string         `gorm:"column:payment_intent_id;index"`
	CheckoutIntentID *uuid.UUID      `gorm:"column:checkout_intent_id;type:uuid"`
	Raw              json.RawMessage `gorm:"column:raw;type:jsonb"`
	ProcessedAt      time.Time       `gorm:"column:processed_at;not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}
