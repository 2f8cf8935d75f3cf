package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/enums"
)

// Transaction is created exactly once per confirmed payment. The unique index
// on stripe_payment_intent_id is the authoritative per-payment settlement
// guard: concurrent deliveries of the same payment race on it and the loser's
// insert fails harmlessly.
type Transaction struct {
	ID                    uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StripePaymentIntentID string                  `gorm:"column:stripe_payment_intent_id;not null;unique"`
	StripeChargeID        *string                 `gorm:"column:stripe_charge_id;index"`
	AmountTotalCents      int64                   `gorm:"column:amount_total_cents;not null"`
	Currency              string                  `gorm:"column:currency;not null;default:'USD'"`
	Status                enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null;default:'pending'"`
	CreatedAt             time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
