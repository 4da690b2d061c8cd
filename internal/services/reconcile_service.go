package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fundmint-lab/fundmint/internal/models"
	"github.com/fundmint-lab/fundmint/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReconcileInput carries the on-chain facts of one confirmed purchase.
type ReconcileInput struct {
	TxHash         string  `json:"tx_hash" validate:"required"`
	CampaignID     uint64  `json:"campaign_id"`
	BindingID      uint    `json:"binding_id" validate:"required"`
	WalletAddress  string  `json:"wallet_address" validate:"required"`
	Quantity       int64   `json:"quantity" validate:"required,min=1"`
	AmountUSD      int64   `json:"amount_usd" validate:"min=0"` // cents
	AmountWei      string  `json:"amount_wei"`
	TipUSD         int64   `json:"tip_usd" validate:"min=0"` // cents
	TipWei         string  `json:"tip_wei"`
	MintedTokenIDs []int64 `json:"minted_token_ids"`
	Email          string  `json:"email"`
	Note           string  `json:"note"`
}

// NotificationsSent reports best-effort delivery outcomes as data so callers
// and tests can branch on them instead of inspecting logs.
type NotificationsSent struct {
	BuyerReceipt  bool `json:"buyer_receipt"`
	CreatorNotice bool `json:"creator_notice"`
}

// ReconcileResult is the outcome of one ingestion. Created is false when the
// transaction hash was already recorded and the call was a no-op.
type ReconcileResult struct {
	Purchase          *models.PurchaseRecord `json:"purchase"`
	Created           bool                   `json:"created"`
	NotificationsSent NotificationsSent      `json:"notifications_sent"`
	Warnings          []string               `json:"warnings,omitempty"`
}

// Correction is one cache/chain divergence found by Resync. It is reported,
// never applied automatically.
type Correction struct {
	Field string `json:"field"`
	Cache string `json:"cache"`
	Chain string `json:"chain"`
}

// ReconcileService makes a confirmed purchase durable in the cache exactly
// once, no matter how many times ingestion is invoked for the same
// transaction hash.
type ReconcileService interface {
	Reconcile(ctx context.Context, input ReconcileInput) (*ReconcileResult, error)
	Resync(ctx context.Context, bindingID uint, campaignID uint64) ([]Correction, error)
	AnnotatePurchase(txHash, email, note string) error
	GetPurchase(txHash string) (*models.PurchaseRecord, error)
	ListEvents(campaignID uint64, limit int) ([]models.PurchaseEvent, error)
}

type reconcileService struct {
	db        *gorm.DB
	chains    ChainService
	hooks     HookService
	validator *validator.Validate
	log       *logrus.Entry
}

func NewReconcileService(db *gorm.DB, chains ChainService, hooks HookService) ReconcileService {
	return &reconcileService{
		db:        db,
		chains:    chains,
		hooks:     hooks,
		validator: validator.New(),
		log:       logrus.WithField("component", "purchase_reconciler"),
	}
}

func (s *reconcileService) Reconcile(ctx context.Context, input ReconcileInput) (*ReconcileResult, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	result := &ReconcileResult{}

	// (1) Append-only event log. Informational: duplicates are acceptable
	// here and a write failure never blocks the durable record below.
	event := models.PurchaseEvent{
		ID:         uuid.New().String(),
		TxHash:     input.TxHash,
		CampaignID: input.CampaignID,
		Kind:       "purchase_recorded",
		Payload: models.JSON{
			"wallet_address": input.WalletAddress,
			"quantity":       input.Quantity,
			"amount_usd":     input.AmountUSD,
			"tip_usd":        input.TipUSD,
		},
		CreatedAt: time.Now(),
	}
	if err := s.db.Create(&event).Error; err != nil {
		s.warn(result, fmt.Sprintf("event log append failed: %v", err))
	}

	// (2) Purchase upsert keyed by tx_hash. The unique constraint turns a
	// duplicate write into a no-op; this failure alone is fatal for the call.
	purchase := models.PurchaseRecord{
		TxHash:         input.TxHash,
		CampaignID:     input.CampaignID,
		BindingID:      input.BindingID,
		WalletAddress:  input.WalletAddress,
		Quantity:       input.Quantity,
		AmountUSD:      input.AmountUSD,
		AmountWei:      input.AmountWei,
		TipUSD:         input.TipUSD,
		TipWei:         input.TipWei,
		MintedTokenIDs: input.MintedTokenIDs,
		Email:          input.Email,
		Note:           input.Note,
	}
	insert := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tx_hash"}},
		DoNothing: true,
	}).Create(&purchase)
	if insert.Error != nil {
		return nil, fmt.Errorf("failed to record purchase %s: %w", input.TxHash, insert.Error)
	}
	if insert.RowsAffected == 0 {
		existing, err := s.GetPurchase(input.TxHash)
		if err != nil {
			return nil, fmt.Errorf("failed to load existing purchase %s: %w", input.TxHash, err)
		}
		result.Purchase = existing
		s.warn(result, fmt.Sprintf("purchase %s already recorded, reconcile was a no-op", input.TxHash))
		return result, nil
	}
	result.Purchase = &purchase
	result.Created = true

	binding, bindingErr := s.chains.GetBinding(input.BindingID)
	if bindingErr != nil {
		s.warn(result, fmt.Sprintf("binding %d unresolved, token rows skipped: %v", input.BindingID, bindingErr))
	}

	// (3) Token rows, keyed per contract to avoid cross-contract collisions.
	if bindingErr == nil {
		for _, tokenID := range input.MintedTokenIDs {
			token := models.TokenRecord{
				TokenID:         tokenID,
				ChainID:         binding.ChainID,
				ContractAddress: binding.ContractAddress,
				CampaignID:      input.CampaignID,
				OwnerWallet:     input.WalletAddress,
				MintTxHash:      input.TxHash,
			}
			err := s.db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "token_id"}, {Name: "chain_id"}, {Name: "contract_address"}},
				DoNothing: true,
			}).Create(&token).Error
			if err != nil {
				s.warn(result, fmt.Sprintf("token %d not cached: %v", tokenID, err))
			}
		}
	}

	// (4) sold_count moves by a storage-layer atomic increment: concurrent
	// reconciles for different purchases on the same campaign must not lose
	// updates.
	increment := s.db.Model(&models.Submission{}).
		Where("campaign_id = ? AND binding_id = ?", input.CampaignID, input.BindingID).
		UpdateColumn("sold_count", gorm.Expr("sold_count + ?", input.Quantity))
	if increment.Error != nil {
		s.warn(result, fmt.Sprintf("sold_count increment failed: %v", increment.Error))
	} else if increment.RowsAffected == 0 {
		s.warn(result, fmt.Sprintf("no mirror row for campaign %d, sold_count not updated", input.CampaignID))
	}

	// (5) totalRaised is re-derived from fresh aggregates; accumulating it
	// incrementally diverges from the tip table whenever a write is retried.
	if err := s.refreshTotals(input.BindingID, input.CampaignID); err != nil {
		s.warn(result, fmt.Sprintf("total refresh failed: %v", err))
	}

	// (6) Best-effort notifications, reported as flags.
	var submission models.Submission
	err := s.db.Where("campaign_id = ? AND binding_id = ?", input.CampaignID, input.BindingID).First(&submission).Error
	if err != nil {
		s.warn(result, fmt.Sprintf("notifications skipped, mirror row unavailable: %v", err))
	} else {
		outcomes := s.hooks.DispatchPurchaseRecorded(ctx, &purchase, &submission)
		result.NotificationsSent = NotificationsSent{
			BuyerReceipt:  outcomes[HookBuyerReceipt],
			CreatorNotice: outcomes[HookCreatorNotice],
		}
	}

	s.log.WithFields(logrus.Fields{
		"tx_hash":     input.TxHash,
		"campaign_id": input.CampaignID,
		"quantity":    input.Quantity,
	}).Info("purchase reconciled")

	return result, nil
}

// refreshTotals recomputes total_raised_usd = sold_count*price + sum(tips)
// from the live tables.
func (s *reconcileService) refreshTotals(bindingID uint, campaignID uint64) error {
	var submission models.Submission
	err := s.db.Where("campaign_id = ? AND binding_id = ?", campaignID, bindingID).First(&submission).Error
	if err != nil {
		return err
	}

	var tips int64
	err = s.db.Model(&models.PurchaseRecord{}).
		Where("campaign_id = ? AND binding_id = ?", campaignID, bindingID).
		Select("COALESCE(SUM(tip_usd), 0)").
		Scan(&tips).Error
	if err != nil {
		return err
	}

	total := submission.SoldCount*derivePriceCents(&submission) + tips
	return s.db.Model(&models.Submission{}).
		Where("id = ?", submission.ID).
		UpdateColumn("total_raised_usd", total).Error
}

// Resync compares the mirror row with on-chain state and reports the
// divergence as corrections. Neither side is overwritten.
func (s *reconcileService) Resync(ctx context.Context, bindingID uint, campaignID uint64) ([]Correction, error) {
	var submission models.Submission
	err := s.db.Where("campaign_id = ? AND binding_id = ?", campaignID, bindingID).First(&submission).Error
	if err != nil {
		return nil, fmt.Errorf("no mirror row for campaign %d: %w", campaignID, err)
	}

	binding, err := s.chains.GetBinding(bindingID)
	if err != nil {
		return nil, err
	}
	backend, err := s.chains.Backend(binding)
	if err != nil {
		return nil, err
	}
	codec, err := s.chains.Codec(binding)
	if err != nil {
		return nil, err
	}

	state, err := readCampaign(ctx, backend, codec, binding, campaignID)
	if err != nil {
		return nil, err
	}

	var corrections []Correction
	if uint64(submission.SoldCount) != state.EditionsMinted {
		corrections = append(corrections, Correction{
			Field: "sold_count",
			Cache: fmt.Sprintf("%d", submission.SoldCount),
			Chain: fmt.Sprintf("%d", state.EditionsMinted),
		})
	}
	if chainRaised := utils.WeiToUSDCents(state.GrossRaised); submission.TotalRaisedUSD != chainRaised {
		corrections = append(corrections, Correction{
			Field: "total_raised_usd",
			Cache: fmt.Sprintf("%d", submission.TotalRaisedUSD),
			Chain: fmt.Sprintf("%d", chainRaised),
		})
	}
	cacheLive := submission.Status == models.SubmissionStatusMinted
	chainLive := state.Active && !state.Closed
	if cacheLive != chainLive {
		corrections = append(corrections, Correction{
			Field: "status",
			Cache: string(submission.Status),
			Chain: fmt.Sprintf("active=%t closed=%t", state.Active, state.Closed),
		})
	}

	return corrections, nil
}

// AnnotatePurchase attaches donor contact details to an existing purchase.
// Money fields are never touched here.
func (s *reconcileService) AnnotatePurchase(txHash, email, note string) error {
	updates := map[string]interface{}{}
	if email != "" {
		updates["email"] = email
	}
	if note != "" {
		updates["note"] = note
	}
	if len(updates) == 0 {
		return nil
	}

	update := s.db.Model(&models.PurchaseRecord{}).Where("tx_hash = ?", txHash).Updates(updates)
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return fmt.Errorf("no purchase recorded for %s", txHash)
	}
	return nil
}

func (s *reconcileService) GetPurchase(txHash string) (*models.PurchaseRecord, error) {
	var purchase models.PurchaseRecord
	err := s.db.Where("tx_hash = ?", txHash).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (s *reconcileService) ListEvents(campaignID uint64, limit int) ([]models.PurchaseEvent, error) {
	query := s.db.Model(&models.PurchaseEvent{}).Where("campaign_id = ?", campaignID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var events []models.PurchaseEvent
	err := query.Find(&events).Error
	return events, err
}

func (s *reconcileService) warn(result *ReconcileResult, msg string) {
	result.Warnings = append(result.Warnings, msg)
	s.log.Warn(msg)
}
