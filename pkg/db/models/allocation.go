package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/enums"
)

// Allocation is advisory audit data carved off a settled transaction:
// tax, reserves, fee gross, estimated COGS. Allocation writes are
// best-effort and never gate settlement itself.
type Allocation struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID uuid.UUID            `gorm:"column:transaction_id;type:uuid;not null;index"`
	Type          enums.AllocationType `gorm:"column:type;type:allocation_type;not null"`
	AmountCents   int64                `gorm:"column:amount_cents;not null"`
	Note          *string              `gorm:"column:note"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}
