package enums

import "fmt"

// ReferralCommissionStatus tracks recruiter override audit rows.
type ReferralCommissionStatus string

const (
	ReferralCommissionStatusPending ReferralCommissionStatus = "pending"
	ReferralCommissionStatusPaid    ReferralCommissionStatus = "paid"
)

var validReferralCommissionStatuses = []ReferralCommissionStatus{
	ReferralCommissionStatusPending,
	ReferralCommissionStatusPaid,
}

// IsValid reports whether the value is a known ReferralCommissionStatus.
func (r ReferralCommissionStatus) IsValid() bool {
	for _, candidate := range validReferralCommissionStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReferralCommissionStatus converts raw input into a ReferralCommissionStatus.
func ParseReferralCommissionStatus(value string) (ReferralCommissionStatus, error) {
	for _, candidate := range validReferralCommissionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid referral commission status %q", value)
}
