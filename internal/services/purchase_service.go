package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fundmint-lab/fundmint/internal/contract"
	"github.com/fundmint-lab/fundmint/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// PurchaseRequest asks for quantity editions of one campaign, minted to the
// buyer's wallet. TipUSD rides on the final unit only.
type PurchaseRequest struct {
	BindingID   uint   `json:"binding_id" validate:"required"`
	CampaignID  uint64 `json:"campaign_id"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	BuyerWallet string `json:"buyer_wallet" validate:"required"`
	TipUSD      int64  `json:"tip_usd" validate:"min=0"`
}

// UnitFailure describes the first failed unit of a batch.
type UnitFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// PurchaseResult reports every unit that minted. When Failure is set the
// batch stopped early and the already-confirmed units stand: callers present
// this as "N of quantity minted", never as an outright failure, and minted
// units are never rolled back.
type PurchaseResult struct {
	Requested      int          `json:"requested"`
	TxHashes       []string     `json:"tx_hashes"`
	MintedTokenIDs []int64      `json:"minted_token_ids"`
	Failure        *UnitFailure `json:"failure,omitempty"`
}

// PurchaseService mints editions for a buyer, one transaction per unit, in
// strict sequence.
type PurchaseService interface {
	Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error)
}

type purchaseService struct {
	chains    ChainService
	submitter TransactionSubmitter
	signers   *SignerRegistry
	validator *validator.Validate
	log       *logrus.Entry
}

func NewPurchaseService(chains ChainService, submitter TransactionSubmitter, signers *SignerRegistry) PurchaseService {
	return &purchaseService{
		chains:    chains,
		submitter: submitter,
		signers:   signers,
		validator: validator.New(),
		log:       logrus.WithField("component", "purchase_orchestrator"),
	}
}

func (s *purchaseService) Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if !utils.ValidAddress(req.BuyerWallet) {
		return nil, fmt.Errorf("invalid buyer wallet address %q", req.BuyerWallet)
	}

	binding, err := s.chains.GetBinding(req.BindingID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve contract binding %d: %w", req.BindingID, err)
	}
	backend, err := s.chains.Backend(binding)
	if err != nil {
		return nil, err
	}
	codec, err := s.chains.Codec(binding)
	if err != nil {
		return nil, err
	}

	// Liveness checks run before any transaction is sent; a violation has
	// zero side effects.
	total, err := readTotalCampaigns(ctx, backend, codec, binding)
	if err != nil {
		return nil, err
	}
	if req.CampaignID >= total {
		return nil, fmt.Errorf("campaign %d does not exist on-chain yet", req.CampaignID)
	}
	state, err := readCampaign(ctx, backend, codec, binding, req.CampaignID)
	if err != nil {
		return nil, err
	}
	if !state.Active {
		return nil, fmt.Errorf("campaign %d is not active", req.CampaignID)
	}
	if state.Closed {
		return nil, fmt.Errorf("campaign %d is closed", req.CampaignID)
	}

	signer, err := s.signers.For(RoleEditionMinter)
	if err != nil {
		return nil, err
	}

	buyer := common.HexToAddress(req.BuyerWallet)
	tipWei := utils.USDCentsToWei(req.TipUSD)
	data, err := codec.EncodeMintEdition(new(big.Int).SetUint64(req.CampaignID), buyer)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mintEdition: %w", err)
	}

	result := &PurchaseResult{Requested: req.Quantity}

	// Units are minted strictly in sequence: edition numbering and nonce
	// ordering on-chain depend on it, so the loop waits out each unit's
	// confirmation before the next is submitted.
	for i := 0; i < req.Quantity; i++ {
		value := new(big.Int).Set(state.PricePerEdition)
		if i == req.Quantity-1 && tipWei.Sign() > 0 {
			// The whole tip rides on the batch's final unit.
			value.Add(value, tipWei)
		}

		unit, err := s.submitter.Submit(ctx, signer, ContractCall{
			Binding: *binding,
			Data:    data,
			Value:   value,
		}, SubmitConfig{})
		if err != nil {
			if len(result.TxHashes) == 0 {
				return nil, fmt.Errorf("minting failed before any edition was produced: %w", err)
			}
			// Confirmed units stand; the chain cannot be rolled back from
			// this layer.
			result.Failure = &UnitFailure{Index: i, Reason: err.Error()}
			s.log.WithFields(logrus.Fields{
				"campaign_id": req.CampaignID,
				"unit":        i,
				"minted":      len(result.MintedTokenIDs),
			}).Warn("purchase batch aborted mid-way")
			break
		}

		result.TxHashes = append(result.TxHashes, unit.TxHash)

		if unit.Receipt == nil {
			s.log.WithFields(logrus.Fields{
				"campaign_id": req.CampaignID,
				"unit":        i,
			}).Warn("unit accepted as pending, token id unknown until confirmation")
			continue
		}

		tokenID, found := extractMintedTokenID(codec, unit)
		if !found {
			// The token can still be recovered later from a balance diff.
			s.log.WithFields(logrus.Fields{
				"campaign_id": req.CampaignID,
				"tx_hash":     unit.TxHash,
			}).Warn("no mint event in receipt, token id not captured")
			continue
		}

		result.MintedTokenIDs = append(result.MintedTokenIDs, tokenID)
		s.log.WithFields(logrus.Fields{
			"campaign_id": req.CampaignID,
			"unit":        i,
			"token_id":    tokenID,
		}).Info("edition minted")
	}

	return result, nil
}

func extractMintedTokenID(codec contract.Codec, unit *SubmitResult) (int64, bool) {
	for _, lg := range unit.Receipt.Logs {
		if ev, ok := codec.ParseMintEvent(*lg); ok {
			return ev.TokenID.Int64(), true
		}
	}
	return 0, false
}
