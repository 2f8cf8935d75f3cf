package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/enums"
)

// CheckoutIntent is the immutable split snapshot created before payment
// capture. Once a successful transaction references it the row is read-only;
// settlement trusts its precomputed totals over any recomputation.
type CheckoutIntent struct {
	ID                      uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID                uuid.UUID                  `gorm:"column:seller_id;type:uuid;not null"`
	AffiliateID             *uuid.UUID                 `gorm:"column:affiliate_id;type:uuid"`
	ReferrerID              *uuid.UUID                 `gorm:"column:referrer_id;type:uuid"`
	FundraiserID            *uuid.UUID                 `gorm:"column:fundraiser_id;type:uuid"`
	Currency                string                     `gorm:"column:currency;not null;default:'USD'"`
	ProductSubtotalCents    int64                      `gorm:"column:product_subtotal_cents;not null;default:0"`
	AffiliateFeeCents       int64                      `gorm:"column:affiliate_fee_cents;not null;default:0"`
	BeezioFeeCents          int64                      `gorm:"column:beezio_fee_cents;not null;default:0"`
	RefOrFundraiserFeeCents int64                      `gorm:"column:ref_or_fundraiser_fee_cents;not null;default:0"`
	ProcessingFeeCents      int64                      `gorm:"column:processing_fee_cents;not null;default:0"`
	SellerTransferCents     int64                      `gorm:"column:seller_transfer_cents;not null;default:0"`
	TaxCents                int64                      `gorm:"column:tax_cents;not null;default:0"`
	ShippingCents           int64                      `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents              int64                      `gorm:"column:total_cents;not null;default:0"`
	Split                   json.RawMessage            `gorm:"column:split;type:jsonb"`
	Status                  enums.CheckoutIntentStatus `gorm:"column:status;type:checkout_intent_status;not null;default:'pending'"`
	StripePaymentIntentID   *string                    `gorm:"column:stripe_payment_intent_id;index"`
	CreatedAt               time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
