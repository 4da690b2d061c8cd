package services

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/fundmint-lab/fundmint/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBuyerWallet = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"

func newTestPurchaseService(t *testing.T, chains ChainService) *purchaseService {
	signers := NewSignerRegistry()
	signer, err := NewSignerFromHex(RoleEditionMinter, testPrivateKeyHex)
	require.NoError(t, err)
	signers.Register(signer)

	var slept []time.Duration
	return &purchaseService{
		chains:    chains,
		submitter: newTestSubmitter(chains, &slept),
		signers:   signers,
		validator: validator.New(),
		log:       testLogEntry("purchase_orchestrator"),
	}
}

// liveCrowdfund scripts one active campaign 0 priced at $20.00.
func liveCrowdfund() *fakeCrowdfund {
	crowdfund := newFakeCrowdfund("v1")
	crowdfund.total = 1
	crowdfund.campaigns[0] = fakeCampaign{
		category:    "community",
		metadataURI: "ipfs://QmMeta",
		goal:        utils.USDCentsToWei(500_000),
		grossRaised: big.NewInt(0),
		netRaised:   big.NewInt(0),
		minted:      4,
		max:         100,
		price:       utils.USDCentsToWei(2_000),
		active:      true,
		closed:      false,
	}
	return crowdfund
}

func TestPurchaseMintsRequestedQuantity(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	crowdfund := liveCrowdfund()
	backend.callFn = crowdfund.handler()
	buyer := common.HexToAddress(testBuyerWallet)
	backend.logs = []*types.Log{editionMintedLog(0, 41, buyer, 5)}

	chains, binding := newTestChainService(t, db, backend, "v1")
	service := newTestPurchaseService(t, chains)

	result, err := service.Purchase(context.Background(), PurchaseRequest{
		BindingID:   binding.ID,
		CampaignID:  0,
		Quantity:    1,
		BuyerWallet: testBuyerWallet,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Requested)
	assert.Len(t, result.TxHashes, 1)
	assert.Nil(t, result.Failure)
	require.Len(t, result.MintedTokenIDs, 1)
	assert.Equal(t, int64(41), result.MintedTokenIDs[0])

	// Each unit carries exactly the edition price.
	require.Len(t, backend.sentTxs, 1)
	assert.Equal(t, 0, utils.USDCentsToWei(2_000).Cmp(backend.sentTxs[0].Value()))
}

func TestPurchaseTipRidesOnFinalUnit(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	crowdfund := liveCrowdfund()
	backend.callFn = crowdfund.handler()

	chains, binding := newTestChainService(t, db, backend, "v1")
	service := newTestPurchaseService(t, chains)

	result, err := service.Purchase(context.Background(), PurchaseRequest{
		BindingID:   binding.ID,
		CampaignID:  0,
		Quantity:    3,
		BuyerWallet: testBuyerWallet,
		TipUSD:      500, // $5.00
	})
	require.NoError(t, err)
	assert.Len(t, result.TxHashes, 3)

	price := utils.USDCentsToWei(2_000)
	withTip := new(big.Int).Add(price, utils.USDCentsToWei(500))

	require.Len(t, backend.sentTxs, 3)
	assert.Equal(t, 0, price.Cmp(backend.sentTxs[0].Value()))
	assert.Equal(t, 0, price.Cmp(backend.sentTxs[1].Value()))
	assert.Equal(t, 0, withTip.Cmp(backend.sentTxs[2].Value()))
}

func TestPurchasePartialFailureKeepsConfirmedUnits(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	crowdfund := liveCrowdfund()
	backend.callFn = crowdfund.handler()
	backend.sendErrs = []error{nil, errors.New("insufficient funds for gas * price + value")}

	chains, binding := newTestChainService(t, db, backend, "v1")
	service := newTestPurchaseService(t, chains)

	result, err := service.Purchase(context.Background(), PurchaseRequest{
		BindingID:   binding.ID,
		CampaignID:  0,
		Quantity:    3,
		BuyerWallet: testBuyerWallet,
	})
	require.NoError(t, err)

	// Unit 0 confirmed and stands; unit 1 failed and stopped the batch.
	assert.Len(t, result.TxHashes, 1)
	require.NotNil(t, result.Failure)
	assert.Equal(t, 1, result.Failure.Index)
	assert.Contains(t, result.Failure.Reason, "insufficient funds")
	assert.Len(t, backend.sentTxs, 2)
}

func TestPurchaseFirstUnitFailureIsAnError(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	crowdfund := liveCrowdfund()
	backend.callFn = crowdfund.handler()
	backend.sendErrs = []error{errors.New("insufficient funds for gas * price + value")}

	chains, binding := newTestChainService(t, db, backend, "v1")
	service := newTestPurchaseService(t, chains)

	_, err := service.Purchase(context.Background(), PurchaseRequest{
		BindingID:   binding.ID,
		CampaignID:  0,
		Quantity:    2,
		BuyerWallet: testBuyerWallet,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before any edition")
}

func TestPurchaseLivenessChecks(t *testing.T) {
	tests := []struct {
		name       string
		campaignID uint64
		mutate     func(*fakeCrowdfund)
		wantErr    string
	}{
		{
			name:       "campaign not yet on-chain",
			campaignID: 1,
			mutate:     func(f *fakeCrowdfund) {},
			wantErr:    "does not exist on-chain yet",
		},
		{
			name:       "inactive campaign",
			campaignID: 0,
			mutate: func(f *fakeCrowdfund) {
				c := f.campaigns[0]
				c.active = false
				f.campaigns[0] = c
			},
			wantErr: "not active",
		},
		{
			name:       "closed campaign",
			campaignID: 0,
			mutate: func(f *fakeCrowdfund) {
				c := f.campaigns[0]
				c.closed = true
				f.campaigns[0] = c
			},
			wantErr: "closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			backend := newFakeBackend()
			crowdfund := liveCrowdfund()
			tt.mutate(crowdfund)
			backend.callFn = crowdfund.handler()

			chains, binding := newTestChainService(t, db, backend, "v1")
			service := newTestPurchaseService(t, chains)

			_, err := service.Purchase(context.Background(), PurchaseRequest{
				BindingID:   binding.ID,
				CampaignID:  tt.campaignID,
				Quantity:    1,
				BuyerWallet: testBuyerWallet,
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			// Liveness violations have zero side effects.
			assert.Empty(t, backend.sentTxs)
		})
	}
}

func TestPurchaseValidation(t *testing.T) {
	db := setupTestDB(t)
	backend := newFakeBackend()
	chains, binding := newTestChainService(t, db, backend, "v1")
	service := newTestPurchaseService(t, chains)

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := service.Purchase(context.Background(), PurchaseRequest{
			BindingID:   binding.ID,
			Quantity:    0,
			BuyerWallet: testBuyerWallet,
		})
		require.Error(t, err)
	})

	t.Run("rejects malformed wallet", func(t *testing.T) {
		_, err := service.Purchase(context.Background(), PurchaseRequest{
			BindingID:   binding.ID,
			Quantity:    1,
			BuyerWallet: "not-an-address",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid buyer wallet")
	})
}
