package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/fundmint-lab/fundmint/internal/constants"
	"github.com/fundmint-lab/fundmint/internal/models"
	"github.com/sirupsen/logrus"
)

// ContractCall is one state-mutating call to a bound contract.
type ContractCall struct {
	Binding  models.ContractBinding
	Data     []byte
	Value    *big.Int
	GasLimit uint64
}

// SubmitConfig tunes one Submit invocation. Predict optionally reads a
// monotonically-assigned identifier (e.g. the contract's campaign counter)
// before broadcasting; the hint is best-effort, the identifier is only
// authoritative after confirmation.
type SubmitConfig struct {
	MaxAttempts int
	Predict     func(ctx context.Context) (uint64, error)
}

// SubmitResult is the terminal outcome of a Submit call. Pending marks the
// success-pending case: the transaction is already in the node's mempool from
// an earlier attempt and TxHash is a placeholder, not an observed hash.
type SubmitResult struct {
	TxHash      string
	PredictedID *uint64
	Pending     bool
	Receipt     *types.Receipt
	Attempts    []models.TransactionAttempt
}

// TransactionSubmitter submits one state-mutating contract call and returns a
// confirmed result or a definitive error, absorbing transient chain failures.
// It never touches the off-chain cache.
type TransactionSubmitter interface {
	Submit(ctx context.Context, signer *Signer, call ContractCall, cfg SubmitConfig) (*SubmitResult, error)
}

type txSubmitter struct {
	chains ChainService
	sleep  func(time.Duration)
	log    *logrus.Entry
}

// NewTransactionSubmitter creates a TransactionSubmitter over the registry's
// backends.
func NewTransactionSubmitter(chains ChainService) TransactionSubmitter {
	return &txSubmitter{
		chains: chains,
		sleep:  time.Sleep,
		log:    logrus.WithField("component", "tx_submitter"),
	}
}

func (s *txSubmitter) Submit(ctx context.Context, signer *Signer, call ContractCall, cfg SubmitConfig) (*SubmitResult, error) {
	if signer == nil {
		return nil, fmt.Errorf("signer cannot be nil")
	}
	if len(call.Data) == 0 {
		return nil, fmt.Errorf("call data cannot be empty")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = constants.DefaultMaxAttempts
	}

	backend, err := s.chains.Backend(&call.Binding)
	if err != nil {
		return nil, err
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}

	basePrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gas price: %w", err)
	}

	var predicted *uint64
	if cfg.Predict != nil {
		if id, err := cfg.Predict(ctx); err == nil {
			predicted = &id
		} else {
			s.log.WithError(err).Warn("identifier prediction failed, continuing without hint")
		}
	}

	to := common.HexToAddress(call.Binding.ContractAddress)
	value := call.Value
	if value == nil {
		value = big.NewInt(0)
	}
	gasLimit := call.GasLimit
	if gasLimit == 0 {
		gasLimit = constants.DefaultGasLimit
	}

	var attempts []models.TransactionAttempt
	var lastErr error

	for i := 0; i < cfg.MaxAttempts; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// The pending count can be stale after a failed broadcast, so retries
		// re-read confirmed chain state instead of the mempool.
		var nonce uint64
		if i == 0 {
			nonce, err = backend.PendingNonceAt(ctx, signer.Address())
		} else {
			nonce, err = backend.NonceAt(ctx, signer.Address(), nil)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch nonce on attempt %d: %w", i, err)
		}

		gasPrice := escalatedGasPrice(basePrice, i)
		attempt := models.TransactionAttempt{
			AttemptNumber: i,
			Nonce:         nonce,
			GasPrice:      gasPrice,
			Outcome:       models.AttemptOutcomePending,
		}

		tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, call.Data)
		signed, err := signer.SignTx(tx, chainID)
		if err != nil {
			return nil, fmt.Errorf("failed to sign transaction: %w", err)
		}

		if err := backend.SendTransaction(ctx, signed); err != nil {
			switch {
			case isAlreadyKnownError(err):
				// A prior attempt's transaction is still in the mempool; it
				// will confirm on its own. Report success-pending.
				attempt.Outcome = models.AttemptOutcomePending
				s.log.WithField("attempt", i).Info("transaction already known to the mempool")
				return &SubmitResult{
					TxHash:      constants.PlaceholderTxHash,
					PredictedID: predicted,
					Pending:     true,
					Attempts:    append(attempts, attempt),
				}, nil
			case isRetryableSubmitError(err):
				attempt.Outcome = models.AttemptOutcomeRetryableError
				attempts = append(attempts, attempt)
				lastErr = err
				s.log.WithError(err).WithField("attempt", i).Warn("retryable submission error")
				if i+1 < cfg.MaxAttempts {
					s.sleep(constants.RetryBaseDelay * time.Duration(i+1))
				}
				continue
			default:
				attempt.Outcome = models.AttemptOutcomeFatalError
				return nil, fmt.Errorf("transaction submission failed: %w", err)
			}
		}

		receipt, err := s.waitMined(ctx, backend, signed.Hash())
		if err != nil {
			return nil, err
		}
		if receipt.Status != types.ReceiptStatusSuccessful {
			return nil, fmt.Errorf("transaction %s reverted on-chain", signed.Hash().Hex())
		}

		attempt.Outcome = models.AttemptOutcomeConfirmed
		return &SubmitResult{
			TxHash:      signed.Hash().Hex(),
			PredictedID: predicted,
			Receipt:     receipt,
			Attempts:    append(attempts, attempt),
		}, nil
	}

	return nil, fmt.Errorf("submission failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// waitMined polls for the transaction's receipt. Cancellation stops the wait
// but cannot recall a broadcast transaction; it may still confirm later.
func (s *txSubmitter) waitMined(ctx context.Context, backend ChainBackend, txHash common.Hash) (*types.Receipt, error) {
	for {
		receipt, err := backend.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("canceled waiting for %s (transaction may still confirm): %w", txHash.Hex(), ctx.Err())
		case <-time.After(constants.ReceiptPollInterval):
		}
	}
}

// escalatedGasPrice bids base*(100+20*i)/100 on attempt i.
func escalatedGasPrice(base *big.Int, attempt int) *big.Int {
	price := new(big.Int).Mul(base, big.NewInt(int64(100+constants.GasEscalationPercent*attempt)))
	return price.Div(price, big.NewInt(100))
}

func isAlreadyKnownError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "already known")
}

func isRetryableSubmitError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"nonce too low",
		"nonce expired",
		"nonce conflict",
		"invalid nonce",
		"replacement transaction underpriced",
		"replacement underpriced",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
