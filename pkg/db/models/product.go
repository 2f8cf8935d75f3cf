package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/enums"
)

type Product struct {
	ID                  uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID            uuid.UUID            `gorm:"column:seller_id;type:uuid;not null;index"`
	Title               string               `gorm:"column:title;not null"`
	AskPriceCents       int64                `gorm:"column:ask_price_cents;not null"`
	CommissionType      enums.CommissionType `gorm:"column:commission_type;type:commission_type;not null;default:percentage"`
	CommissionRate      int64                `gorm:"column:commission_rate;not null;default:0"`
	FlatCommissionCents int64                `gorm:"column:flat_commission_cents;not null;default:0"`
	DropshipProvider    *string              `gorm:"column:dropship_provider"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

type ProductVariant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	SKU       string    `gorm:"column:sku"`
	Title     string    `gorm:"column:title"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// DropshipCostMapping stores the supplier unit cost for a dropshipped
// product. Variant-level rows win over the product-level row.
type DropshipCostMapping struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_dropship_cost_product_variant,priority:1"`
	VariantID     *uuid.UUID `gorm:"column:variant_id;type:uuid;uniqueIndex:ux_dropship_cost_product_variant,priority:2"`
	Provider      string     `gorm:"column:provider;not null"`
	UnitCostCents int64      `gorm:"column:unit_cost_cents;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
