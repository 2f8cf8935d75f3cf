package enums

import "fmt"

// RevenueType tags monthly platform revenue rows.
type RevenueType string

const (
	RevenueTypeBeezioFee  RevenueType = "beezio_fee"
	RevenueTypeCommission RevenueType = "commission"
)

var validRevenueTypes = []RevenueType{
	RevenueTypeBeezioFee,
	RevenueTypeCommission,
}

// IsValid reports whether the value is a known RevenueType.
func (r RevenueType) IsValid() bool {
	for _, candidate := range validRevenueTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRevenueType converts raw input into a RevenueType.
func ParseRevenueType(value string) (RevenueType, error) {
	for _, candidate := range validRevenueTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid revenue type %q", value)
}
