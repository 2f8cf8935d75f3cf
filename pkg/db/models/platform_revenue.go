package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/enums"
)

// PlatformRevenue is a monthly rollup row. Month is stored as the
// string "YYYY-MM" so upserts key naturally on (month, type).
type PlatformRevenue struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Month       string            `gorm:"column:month;not null;uniqueIndex:ux_platform_revenue_month_type,priority:1"`
	Type        enums.RevenueType `gorm:"column:type;type:revenue_type;not null;uniqueIndex:ux_platform_revenue_month_type,priority:2"`
	AmountCents int64             `gorm:"column:amount_cents;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
