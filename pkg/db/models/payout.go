package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/enums"
)

// Payout tracks money actually pushed to a recipient's connected
// account. Rows are matched to incoming transfer events by the Stripe
// transfer id.
type Payout struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID      uuid.UUID          `gorm:"column:recipient_id;type:uuid;not null;index"`
	AmountCents      int64              `gorm:"column:amount_cents;not null"`
	Currency         string             `gorm:"column:currency;not null;default:usd"`
	Status           enums.PayoutStatus `gorm:"column:status;type:payout_status;not null"`
	StripeTransferID *string            `gorm:"column:stripe_transfer_id;uniqueIndex"`
	FailureReason    *string            `gorm:"column:failure_reason"`
	CompletedAt      *time.Time         `gorm:"column:completed_at"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
