package settlement

import (
	"fmt"

	"github.com/beezio/settlement-backend/pkg/enums"
	"github.com/beezio/settlement-backend/pkg/errors"
)

// legalTransitions is the complete transaction state machine. Terminal
// states (failed, canceled, refunded, dispute_won, dispute_lost) have
// no outgoing edges.
var legalTransitions = map[enums.TransactionStatus][]enums.TransactionStatus{
	enums.TransactionStatusPending: {
		enums.TransactionStatusCompleted,
		enums.TransactionStatusFailed,
		enums.TransactionStatusCanceled,
	},
	enums.TransactionStatusCompleted: {
		enums.TransactionStatusRefunded,
		enums.TransactionStatusDisputed,
	},
	enums.TransactionStatusDisputed: {
		enums.TransactionStatusDisputeWon,
		enums.TransactionStatusDisputeLost,
	},
}

// CanTransition reports whether moving a transaction from one status to
// another is legal.
func CanTransition(from, to enums.TransactionStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// guardTransition returns a conflict error for illegal moves so callers
// surface them without retry.
func guardTransition(from, to enums.TransactionStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return errors.New(errors.CodeStateConflict, fmt.Sprintf("illegal transaction transition %s -> %s", from, to))
}
