package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/enums"
)

// ReferralCommission records a recruiter bonus funded out of the
// platform's gross fee on a sale made by a recruited seller or
// affiliate. Capped so it can never exceed what the platform earned.
type ReferralCommission struct {
	ID            uuid.UUID                      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID uuid.UUID                      `gorm:"column:transaction_id;type:uuid;not null;index"`
	ReferrerID    uuid.UUID                      `gorm:"column:referrer_id;type:uuid;not null;index"`
	ReferredID    uuid.UUID                      `gorm:"column:referred_id;type:uuid;not null"`
	AmountCents   int64                          `gorm:"column:amount_cents;not null"`
	Status        enums.ReferralCommissionStatus `gorm:"column:status;type:referral_commission_status;not null"`
	CreatedAt     time.Time                      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                      `gorm:"column:updated_at;autoUpdateTime"`
}
