package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/enums"
)

type Order struct {
	ID                    uuid.UUID                    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID               *uuid.UUID                   `gorm:"column:buyer_id;type:uuid;index"`
	SellerID              uuid.UUID                    `gorm:"column:seller_id;type:uuid;not null;index"`
	TransactionID         *uuid.UUID                   `gorm:"column:transaction_id;type:uuid;index"`
	StripePaymentIntentID *string                      `gorm:"column:stripe_payment_intent_id;index"`
	TotalCents            int64                        `gorm:"column:total_cents;not null"`
	Currency              string                       `gorm:"column:currency;not null;default:usd"`
	Status                enums.OrderStatus            `gorm:"column:status;type:order_status;not null"`
	PaymentStatus         enums.OrderPaymentStatus     `gorm:"column:payment_status;type:order_payment_status;not null"`
	FulfillmentStatus     enums.OrderFulfillmentStatus `gorm:"column:fulfillment_status;type:order_fulfillment_status;not null"`
	CreatedAt             time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}
