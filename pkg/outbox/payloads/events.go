package payloads

import (
	"time"

	"github.com/google/uuid"
)

// OrderSettledEvent signals a completed settlement ready for fulfillment.
type OrderSettledEvent struct {
	TransactionID   uuid.UUID  `json:"transaction_id"`
	OrderID         *uuid.UUID `json:"order_id,omitempty"`
	SellerID        uuid.UUID  `json:"seller_id"`
	PaymentIntentID string     `json:"payment_intent_id"`
	TotalCents      int64      `json:"total_cents"`
	Currency        string     `json:"currency"`
	Dropship        bool       `json:"dropship"`
	SettledAt       time.Time  `json:"settled_at"`
}

// TransactionRefundedEvent is emitted when a settled payment is refunded.
type TransactionRefundedEvent struct {
	TransactionID   uuid.UUID `json:"transaction_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	AmountCents     int64     `json:"amount_cents"`
	RefundedAt      time.Time `json:"refunded_at"`
}

// TransactionDisputedEvent is emitted when a charge dispute opens or closes.
type TransactionDisputedEvent struct {
	TransactionID   uuid.UUID `json:"transaction_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	DisputeStatus   string    `json:"dispute_status"`
	AmountCents     int64     `json:"amount_cents"`
	OccurredAt      time.Time `json:"occurred_at"`
}
