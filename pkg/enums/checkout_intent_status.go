package enums

import "fmt"

// CheckoutIntentStatus tracks the lifecycle of a precomputed checkout snapshot.
type CheckoutIntentStatus string

const (
	CheckoutIntentStatusPending   CheckoutIntentStatus = "pending"
	CheckoutIntentStatusCompleted CheckoutIntentStatus = "completed"
	CheckoutIntentStatusFailed    CheckoutIntentStatus = "failed"
)

var validCheckoutIntentStatuses = []CheckoutIntentStatus{
	CheckoutIntentStatusPending,
	CheckoutIntentStatusCompleted,
	CheckoutIntentStatusFailed,
}

// IsValid reports whether the value is a known CheckoutIntentStatus.
func (c CheckoutIntentStatus) IsValid() bool {
	for _, candidate := range validCheckoutIntentStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckoutIntentStatus converts raw input into a CheckoutIntentStatus.
func ParseCheckoutIntentStatus(value string) (CheckoutIntentStatus, error) {
	for _, candidate := range validCheckoutIntentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout intent status %q", value)
}
