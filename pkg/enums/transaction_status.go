package enums

import "fmt"

// TransactionStatus maps to the transaction_status enum in Postgres.
type TransactionStatus string

const (
	TransactionStatusPending     TransactionStatus = "pending"
	TransactionStatusCompleted   TransactionStatus = "completed"
	TransactionStatusFailed      TransactionStatus = "failed"
	TransactionStatusCanceled    TransactionStatus = "canceled"
	TransactionStatusRefunded    TransactionStatus = "refunded"
	TransactionStatusDisputed    TransactionStatus = "disputed"
	TransactionStatusDisputeWon  TransactionStatus = "dispute_won"
	TransactionStatusDisputeLost TransactionStatus = "dispute_lost"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusPending,
	TransactionStatusCompleted,
	TransactionStatusFailed,
	TransactionStatusCanceled,
	TransactionStatusRefunded,
	TransactionStatusDisputed,
	TransactionStatusDisputeWon,
	TransactionStatusDisputeLost,
}

// String implements fmt.Stringer.
func (t TransactionStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionStatus.
func (t TransactionStatus) IsValid() bool {
	for _, candidate := range validTransactionStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsTerminalDispute reports whether the status is a closed dispute variant.
func (t TransactionStatus) IsTerminalDispute() bool {
	return t == TransactionStatusDisputeWon || t == TransactionStatusDisputeLost
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	for _, candidate := range validTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", value)
}
