package enums

import "fmt"

// DistributionStatus tracks the payout lifecycle of a distribution row.
type DistributionStatus string

const (
	DistributionStatusHeld      DistributionStatus = "held"
	DistributionStatusPending   DistributionStatus = "pending"
	DistributionStatusCompleted DistributionStatus = "completed"
)

var validDistributionStatuses = []DistributionStatus{
	DistributionStatusHeld,
	DistributionStatusPending,
	DistributionStatusCompleted,
}

// String implements fmt.Stringer.
func (d DistributionStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DistributionStatus.
func (d DistributionStatus) IsValid() bool {
	for _, candidate := range validDistributionStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDistributionStatus converts raw input into a DistributionStatus.
func ParseDistributionStatus(value string) (DistributionStatus, error) {
	for _, candidate := range validDistributionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid distribution status %q", value)
}
