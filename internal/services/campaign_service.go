package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fundmint-lab/fundmint/internal/contract"
	"github.com/fundmint-lab/fundmint/internal/models"
	"github.com/fundmint-lab/fundmint/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProvisionResult reports a completed (or previously completed) provisioning.
type ProvisionResult struct {
	CampaignID         uint64 `json:"campaign_id"`
	TxHash             string `json:"tx_hash"`
	AlreadyProvisioned bool   `json:"already_provisioned"`
	Pending            bool   `json:"pending"`
	CreatorNotified    bool   `json:"creator_notified"`
}

// CampaignService turns an approved off-chain submission into an on-chain
// campaign exactly once.
type CampaignService interface {
	Provision(ctx context.Context, submissionID uint) (*ProvisionResult, error)
	GetSubmission(id uint) (*models.Submission, error)
	ListSubmissions(status models.SubmissionStatus, limit int) ([]models.Submission, error)
	CreateSubmission(submission *models.Submission) error
}

type campaignService struct {
	db        *gorm.DB
	chains    ChainService
	submitter TransactionSubmitter
	signers   *SignerRegistry
	notifier  Notifier

	// relayerAddress receives funds when a creator supplied no wallet; such
	// funds accrue to the platform pending manual reassignment.
	relayerAddress common.Address

	log *logrus.Entry
}

func NewCampaignService(db *gorm.DB, chains ChainService, submitter TransactionSubmitter, signers *SignerRegistry, notifier Notifier, relayerAddress common.Address) CampaignService {
	return &campaignService{
		db:             db,
		chains:         chains,
		submitter:      submitter,
		signers:        signers,
		notifier:       notifier,
		relayerAddress: relayerAddress,
		log:            logrus.WithField("component", "campaign_provisioner"),
	}
}

func (s *campaignService) CreateSubmission(submission *models.Submission) error {
	return s.db.Create(submission).Error
}

func (s *campaignService) GetSubmission(id uint) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Preload("Binding.Chain").First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *campaignService) ListSubmissions(status models.SubmissionStatus, limit int) ([]models.Submission, error) {
	query := s.db.Model(&models.Submission{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var submissions []models.Submission
	err := query.Find(&submissions).Error
	return submissions, err
}

// Provision creates the campaign on-chain and joins the mirror row to it. A
// submission that is already minted returns its existing identifiers without
// any chain call, so retried admin actions are harmless.
func (s *campaignService) Provision(ctx context.Context, submissionID uint) (*ProvisionResult, error) {
	submission, err := s.GetSubmission(submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission %d: %w", submissionID, err)
	}

	if submission.Status == models.SubmissionStatusMinted && submission.CampaignID != nil {
		return &ProvisionResult{
			CampaignID:         *submission.CampaignID,
			TxHash:             submission.TxHash,
			AlreadyProvisioned: true,
		}, nil
	}

	if submission.Status != models.SubmissionStatusApproved {
		return nil, fmt.Errorf("submission %d has status %s, want %s", submissionID, submission.Status, models.SubmissionStatusApproved)
	}
	if submission.MetadataURI == "" {
		return nil, fmt.Errorf("submission %d has no metadata URI", submissionID)
	}

	beneficiary := s.relayerAddress
	if utils.ValidAddress(submission.CreatorWallet) {
		beneficiary = common.HexToAddress(submission.CreatorWallet)
	} else {
		s.log.WithField("submission_id", submissionID).Info("creator supplied no wallet, routing funds to the relayer")
	}

	priceCents := derivePriceCents(submission)
	codec, err := s.chains.Codec(&submission.Binding)
	if err != nil {
		return nil, err
	}

	data, err := codec.EncodeCreateCampaign(contract.CreateCampaignParams{
		Category:        submission.Category,
		MetadataURI:     submission.MetadataURI,
		Beneficiary:     beneficiary,
		Goal:            utils.USDCentsToWei(submission.GoalUSD),
		MaxEditions:     big.NewInt(submission.NumCopies),
		PricePerEdition: utils.USDCentsToWei(priceCents),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode createCampaign: %w", err)
	}

	signer, err := s.signers.For(RoleCampaignCreator)
	if err != nil {
		return nil, err
	}

	backend, err := s.chains.Backend(&submission.Binding)
	if err != nil {
		return nil, err
	}

	result, err := s.submitter.Submit(ctx, signer, ContractCall{
		Binding: submission.Binding,
		Data:    data,
	}, SubmitConfig{
		// Campaign IDs are assigned from the contract's counter, so the next
		// campaign's identifier equals the current total.
		Predict: func(ctx context.Context) (uint64, error) {
			return readTotalCampaigns(ctx, backend, codec, &submission.Binding)
		},
	})
	if err != nil {
		// The cache stays untouched so a later retry is safe.
		return nil, fmt.Errorf("failed to provision campaign for submission %d: %w", submissionID, err)
	}

	campaignID, err := resolveCampaignID(codec, result)
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.Submission{}).
		Where("id = ?", submissionID).
		Updates(map[string]interface{}{
			"campaign_id":      campaignID,
			"contract_address": submission.Binding.ContractAddress,
			"tx_hash":          result.TxHash,
			"status":           string(models.SubmissionStatusMinted),
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to persist provisioned campaign %d: %w", campaignID, err)
	}

	notified := false
	if submission.CreatorEmail != "" {
		err := s.notifier.Send(ctx, submission.CreatorEmail, TemplateCampaignLive, map[string]interface{}{
			"campaign_title": submission.Title,
			"campaign_id":    campaignID,
			"tx_hash":        result.TxHash,
		})
		notified = err == nil
		if err != nil {
			s.log.WithError(err).WithField("submission_id", submissionID).Warn("creator notification failed")
		}
	}

	s.log.WithFields(logrus.Fields{
		"submission_id": submissionID,
		"campaign_id":   campaignID,
		"tx_hash":       result.TxHash,
	}).Info("campaign provisioned")

	return &ProvisionResult{
		CampaignID:      campaignID,
		TxHash:          result.TxHash,
		Pending:         result.Pending,
		CreatorNotified: notified,
	}, nil
}

// resolveCampaignID prefers the confirmed CampaignCreated event over the
// pre-submission prediction.
func resolveCampaignID(codec contract.Codec, result *SubmitResult) (uint64, error) {
	if result.Receipt != nil {
		for _, lg := range result.Receipt.Logs {
			if id, ok := codec.ParseCampaignCreated(*lg); ok {
				return id, nil
			}
		}
	}
	if result.PredictedID != nil {
		return *result.PredictedID, nil
	}
	return 0, fmt.Errorf("campaign identifier unavailable: no creation event and no prediction")
}

// derivePriceCents resolves the per-edition price for provisioning: the
// explicit price if one was set, else goal spread across the copies, else
// zero.
func derivePriceCents(submission *models.Submission) int64 {
	if submission.NFTPriceUSD != nil {
		return *submission.NFTPriceUSD
	}
	if submission.PricePerCopyUSD != nil {
		return *submission.PricePerCopyUSD
	}
	if submission.NumCopies > 0 {
		return submission.GoalUSD / submission.NumCopies
	}
	return 0
}
