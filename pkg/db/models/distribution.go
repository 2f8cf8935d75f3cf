package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/enums"
)

// Distribution is an append-only obligation row: one per (transaction,
// recipient) pair. Released holds advance status; rows are never deleted.
// The unique index across transaction/recipient type/recipient makes the
// batched ledger write safe to re-attempt after partial failure.
type Distribution struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID uuid.UUID                `gorm:"column:transaction_id;type:uuid;not null;uniqueIndex:ux_distributions_tx_recipient,priority:1"`
	OrderID       *uuid.UUID               `gorm:"column:order_id;type:uuid;index"`
	RecipientType enums.RecipientType      `gorm:"column:recipient_type;type:recipient_type;not null;uniqueIndex:ux_distributions_tx_recipient,priority:2"`
	RecipientID   *uuid.UUID               `gorm:"column:recipient_id;type:uuid;uniqueIndex:ux_distributions_tx_recipient,priority:3"`
	AmountCents   int64                    `gorm:"column:amount_cents;not null"`
	Status        enums.DistributionStatus `gorm:"column:status;type:distribution_status;not null"`
	AvailableAt   *time.Time               `gorm:"column:available_at"`
	HoldReason    *string                  `gorm:"column:hold_reason"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
