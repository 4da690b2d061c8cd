package constants

import (
	"math/big"
	"time"
)

// WeiPerUSDCent is the fixed decimal-exponent scale used to convert USD cents
// into the contract's base unit. All conversions are integer arithmetic on
// scaled values.
var WeiPerUSDCent = new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)

// PlaceholderTxHash is returned for success-pending submissions where the
// transaction is already in the mempool from an earlier attempt and the
// current attempt never produced a hash of its own.
const PlaceholderTxHash = "0x0000000000000000000000000000000000000000000000000000000000000000"

const (
	// DefaultMaxAttempts bounds the submission retry loop.
	DefaultMaxAttempts = 5

	// RetryBaseDelay is the linear backoff unit between retryable attempts:
	// attempt n sleeps RetryBaseDelay * (n+1).
	RetryBaseDelay = 2 * time.Second

	// GasEscalationPercent is added to the base gas price per retry attempt.
	GasEscalationPercent = 20

	// DefaultEditionAssumption is the edition count assumed when a campaign
	// carries no explicit copy count anywhere.
	DefaultEditionAssumption = 100

	// ReceiptPollInterval is how often a broadcast transaction is polled for
	// its one confirmation.
	ReceiptPollInterval = 500 * time.Millisecond

	// DefaultGasLimit caps calls that do not supply their own limit.
	DefaultGasLimit uint64 = 500_000
)
