package enums

import "fmt"

// AllocationType tags internal accounting rows. Allocations are informational
// and are never read by the payout process.
type AllocationType string

const (
	AllocationTypeSalesTax               AllocationType = "sales_tax"
	AllocationTypeShippingReserve        AllocationType = "shipping_reserve"
	AllocationTypeCOGSReserve            AllocationType = "cogs_reserve"
	AllocationTypeBeezioFeeGross         AllocationType = "beezio_fee_gross"
	AllocationTypeReferrerBonusTotal     AllocationType = "referrer_bonus_total"
	AllocationTypePlatformRetainMerch    AllocationType = "platform_retain_merchandise"
	AllocationTypePurchasingReserveTotal AllocationType = "purchasing_reserve_total"
)

var validAllocationTypes = []AllocationType{
	AllocationTypeSalesTax,
	AllocationTypeShippingReserve,
	AllocationTypeCOGSReserve,
	AllocationTypeBeezioFeeGross,
	AllocationTypeReferrerBonusTotal,
	AllocationTypePlatformRetainMerch,
	AllocationTypePurchasingReserveTotal,
}

// String implements fmt.Stringer.
func (a AllocationType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AllocationType.
func (a AllocationType) IsValid() bool {
	for _, candidate := range validAllocationTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAllocationType converts raw input into an AllocationType.
func ParseAllocationType(value string) (AllocationType, error) {
	for _, candidate := range validAllocationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid allocation type %q", value)
}
