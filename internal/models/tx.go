package models

import "math/big"

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// AttemptOutcome classifies the terminal state of a single submission attempt.
type AttemptOutcome string

const (
	AttemptOutcomePending        AttemptOutcome = "pending"
	AttemptOutcomeConfirmed      AttemptOutcome = "confirmed"
	AttemptOutcomeRetryableError AttemptOutcome = "retryable-error"
	AttemptOutcomeFatalError     AttemptOutcome = "fatal-error"
)

// TransactionAttempt is in-memory bookkeeping for one submission attempt. It
// is never persisted; it exists only for the duration of a Submit call.
type TransactionAttempt struct {
	AttemptNumber int
	Nonce         uint64
	GasPrice      *big.Int
	Outcome       AttemptOutcome
}
