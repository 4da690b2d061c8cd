package services

import (
	"context"
	"errors"
	"testing"

	"github.com/fundmint-lab/fundmint/internal/models"
	"github.com/fundmint-lab/fundmint/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubHook struct {
	name string
	err  error
}

func (h stubHook) Name() string { return h.name }

func (h stubHook) OnPurchaseRecorded(ctx context.Context, purchase *models.PurchaseRecord, submission *models.Submission) error {
	return h.err
}

func newTestReconcileService(db *gorm.DB, chains ChainService, hooks HookService) *reconcileService {
	return &reconcileService{
		db:        db,
		chains:    chains,
		hooks:     hooks,
		validator: validator.New(),
		log:       testLogEntry("purchase_reconciler"),
	}
}

// mintedSubmission seeds the mirror row of a provisioned campaign: $5,000 goal
// across 100 copies, so $50.00 per edition.
func mintedSubmission(t *testing.T, db *gorm.DB, bindingID uint, campaignID uint64) *models.Submission {
	submission := &models.Submission{
		Title:        "Clean Water Project",
		GoalUSD:      500_000,
		NumCopies:    100,
		Status:       models.SubmissionStatusMinted,
		CreatorEmail: "creator@example.com",
		BindingID:    bindingID,
		CampaignID:   &campaignID,
	}
	require.NoError(t, db.Create(submission).Error)
	return submission
}

func TestReconcileRecordsPurchase(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	chains, binding := newTestChainService(t, db, backend, "v1")
	mintedSubmission(t, db, binding.ID, 0)

	hooks := NewHookService()
	hooks.RegisterHook(stubHook{name: HookBuyerReceipt})
	hooks.RegisterHook(stubHook{name: HookCreatorNotice, err: errors.New("smtp down")})
	service := newTestReconcileService(db, chains, hooks)

	result, err := service.Reconcile(context.Background(), ReconcileInput{
		TxHash:         "0xabc123",
		CampaignID:     0,
		BindingID:      binding.ID,
		WalletAddress:  testBuyerWallet,
		Quantity:       2,
		AmountUSD:      10_000,
		TipUSD:         300,
		MintedTokenIDs: []int64{10, 11},
		Email:          "buyer@example.com",
	})
	require.NoError(t, err)

	assert.True(t, result.Created)
	require.NotNil(t, result.Purchase)
	assert.Equal(t, "0xabc123", result.Purchase.TxHash)

	// Hook outcomes surface as flags, and a failed hook never fails the call.
	assert.True(t, result.NotificationsSent.BuyerReceipt)
	assert.False(t, result.NotificationsSent.CreatorNotice)

	var submission models.Submission
	require.NoError(t, db.Where("campaign_id = ?", 0).First(&submission).Error)
	assert.Equal(t, int64(2), submission.SoldCount)
	// totalRaised = 2 editions * $50.00 + $3.00 tip
	assert.Equal(t, int64(2*5_000+300), submission.TotalRaisedUSD)

	var tokens []models.TokenRecord
	require.NoError(t, db.Where("campaign_id = ?", 0).Find(&tokens).Error)
	assert.Len(t, tokens, 2)

	var events []models.PurchaseEvent
	require.NoError(t, db.Where("tx_hash = ?", "0xabc123").Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestReconcileDuplicateIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	chains, binding := newTestChainService(t, db, backend, "v1")
	mintedSubmission(t, db, binding.ID, 0)

	hooks := NewHookService()
	hooks.RegisterHook(stubHook{name: HookBuyerReceipt})
	service := newTestReconcileService(db, chains, hooks)

	input := ReconcileInput{
		TxHash:         "0xsame",
		CampaignID:     0,
		BindingID:      binding.ID,
		WalletAddress:  testBuyerWallet,
		Quantity:       1,
		AmountUSD:      5_000,
		MintedTokenIDs: []int64{42},
	}

	first, err := service.Reconcile(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := service.Reconcile(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, second.Created)
	require.NotNil(t, second.Purchase)
	assert.Equal(t, "0xsame", second.Purchase.TxHash)
	// The duplicate skipped increments and notifications.
	assert.False(t, second.NotificationsSent.BuyerReceipt)

	var submission models.Submission
	require.NoError(t, db.Where("campaign_id = ?", 0).First(&submission).Error)
	assert.Equal(t, int64(1), submission.SoldCount)
	assert.Equal(t, int64(5_000), submission.TotalRaisedUSD)

	var count int64
	require.NoError(t, db.Model(&models.PurchaseRecord{}).Where("tx_hash = ?", "0xsame").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReconcileRederivesTotalsFromLiveTables(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	chains, binding := newTestChainService(t, db, backend, "v1")
	submission := mintedSubmission(t, db, binding.ID, 0)

	// A stale accumulated figure is overwritten by the fresh aggregation.
	require.NoError(t, db.Model(submission).UpdateColumn("total_raised_usd", 999_999).Error)

	service := newTestReconcileService(db, chains, NewHookService())
	_, err := service.Reconcile(context.Background(), ReconcileInput{
		TxHash:        "0xfresh",
		CampaignID:    0,
		BindingID:     binding.ID,
		WalletAddress: testBuyerWallet,
		Quantity:      1,
		TipUSD:        250,
	})
	require.NoError(t, err)

	var stored models.Submission
	require.NoError(t, db.First(&stored, submission.ID).Error)
	assert.Equal(t, int64(1*5_000+250), stored.TotalRaisedUSD)
}

func TestReconcileValidation(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	chains, _ := newTestChainService(t, db, backend, "v1")
	service := newTestReconcileService(db, chains, NewHookService())

	_, err := service.Reconcile(context.Background(), ReconcileInput{
		CampaignID: 0,
		Quantity:   1,
	})
	require.Error(t, err)
}

func TestAnnotatePurchase(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	chains, binding := newTestChainService(t, db, backend, "v1")
	mintedSubmission(t, db, binding.ID, 0)
	service := newTestReconcileService(db, chains, NewHookService())

	_, err := service.Reconcile(context.Background(), ReconcileInput{
		TxHash:        "0xannotate",
		CampaignID:    0,
		BindingID:     binding.ID,
		WalletAddress: testBuyerWallet,
		Quantity:      1,
		AmountUSD:     5_000,
	})
	require.NoError(t, err)

	t.Run("attaches contact details", func(t *testing.T) {
		require.NoError(t, service.AnnotatePurchase("0xannotate", "donor@example.com", "For the wells"))

		purchase, err := service.GetPurchase("0xannotate")
		require.NoError(t, err)
		assert.Equal(t, "donor@example.com", purchase.Email)
		assert.Equal(t, "For the wells", purchase.Note)
		// Money fields stay untouched.
		assert.Equal(t, int64(5_000), purchase.AmountUSD)
	})

	t.Run("unknown transaction hash", func(t *testing.T) {
		err := service.AnnotatePurchase("0xmissing", "donor@example.com", "")
		require.Error(t, err)
	})

	t.Run("empty annotation is a no-op", func(t *testing.T) {
		require.NoError(t, service.AnnotatePurchase("0xannotate", "", ""))
	})
}

func TestResyncReportsCorrectionsWithoutWriting(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	crowdfund := newFakeCrowdfund("v1")
	crowdfund.total = 1
	crowdfund.campaigns[0] = fakeCampaign{
		category:    "community",
		metadataURI: "ipfs://QmMeta",
		goal:        utils.USDCentsToWei(500_000),
		grossRaised: utils.USDCentsToWei(25_000),
		netRaised:   utils.USDCentsToWei(25_000),
		minted:      5,
		max:         100,
		price:       utils.USDCentsToWei(5_000),
		active:      true,
		closed:      false,
	}
	backend.callFn = crowdfund.handler()

	chains, binding := newTestChainService(t, db, backend, "v1")
	submission := mintedSubmission(t, db, binding.ID, 0)
	require.NoError(t, db.Model(submission).UpdateColumns(map[string]interface{}{
		"sold_count":       3,
		"total_raised_usd": 15_000,
	}).Error)

	service := newTestReconcileService(db, chains, NewHookService())
	corrections, err := service.Resync(context.Background(), binding.ID, 0)
	require.NoError(t, err)

	fields := make(map[string]Correction, len(corrections))
	for _, c := range corrections {
		fields[c.Field] = c
	}

	require.Contains(t, fields, "sold_count")
	assert.Equal(t, "3", fields["sold_count"].Cache)
	assert.Equal(t, "5", fields["sold_count"].Chain)

	require.Contains(t, fields, "total_raised_usd")
	assert.Equal(t, "15000", fields["total_raised_usd"].Cache)
	assert.Equal(t, "25000", fields["total_raised_usd"].Chain)

	// Resync reports, it never repairs.
	var stored models.Submission
	require.NoError(t, db.First(&stored, submission.ID).Error)
	assert.Equal(t, int64(3), stored.SoldCount)
	assert.Equal(t, int64(15_000), stored.TotalRaisedUSD)
}

func TestResyncInSync(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	crowdfund := newFakeCrowdfund("v1")
	crowdfund.total = 1
	crowdfund.campaigns[0] = fakeCampaign{
		goal:        utils.USDCentsToWei(500_000),
		grossRaised: utils.USDCentsToWei(10_000),
		netRaised:   utils.USDCentsToWei(10_000),
		minted:      2,
		max:         100,
		price:       utils.USDCentsToWei(5_000),
		active:      true,
	}
	backend.callFn = crowdfund.handler()

	chains, binding := newTestChainService(t, db, backend, "v1")
	submission := mintedSubmission(t, db, binding.ID, 0)
	require.NoError(t, db.Model(submission).UpdateColumns(map[string]interface{}{
		"sold_count":       2,
		"total_raised_usd": 10_000,
	}).Error)

	service := newTestReconcileService(db, chains, NewHookService())
	corrections, err := service.Resync(context.Background(), binding.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, corrections)
}

func TestListEvents(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	chains, binding := newTestChainService(t, db, backend, "v1")
	mintedSubmission(t, db, binding.ID, 0)
	service := newTestReconcileService(db, chains, NewHookService())

	for _, txHash := range []string{"0xe1", "0xe2", "0xe3"} {
		_, err := service.Reconcile(context.Background(), ReconcileInput{
			TxHash:        txHash,
			CampaignID:    0,
			BindingID:     binding.ID,
			WalletAddress: testBuyerWallet,
			Quantity:      1,
		})
		require.NoError(t, err)
	}

	events, err := service.ListEvents(0, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	all, err := service.ListEvents(0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
