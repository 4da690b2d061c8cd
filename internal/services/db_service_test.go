package services

import (
	"testing"

	"github.com/fundmint-lab/fundmint/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSqliteDBService(t *testing.T) {
	service, err := NewSqliteDBService(":memory:")
	require.NoError(t, err)
	defer service.Close()

	db := service.GetDB()
	require.NotNil(t, db)

	// Migrations ran: all tables accept writes.
	chain := &models.Chain{NetworkID: "1", Name: "Mainnet", RPC: "http://localhost:8545"}
	require.NoError(t, db.Create(chain).Error)

	purchase := &models.PurchaseRecord{
		TxHash:         "0xabc",
		CampaignID:     0,
		BindingID:      1,
		WalletAddress:  testBuyerWallet,
		Quantity:       1,
		MintedTokenIDs: []int64{1, 2},
	}
	require.NoError(t, db.Create(purchase).Error)

	var stored models.PurchaseRecord
	require.NoError(t, db.First(&stored, purchase.ID).Error)
	assert.Equal(t, []int64{1, 2}, stored.MintedTokenIDs)
}

func TestSqliteDBServiceEnforcesUniqueTxHash(t *testing.T) {
	service, err := NewSqliteDBService(":memory:")
	require.NoError(t, err)
	defer service.Close()

	db := service.GetDB()
	first := &models.PurchaseRecord{TxHash: "0xdup", BindingID: 1, WalletAddress: testBuyerWallet, Quantity: 1}
	require.NoError(t, db.Create(first).Error)

	second := &models.PurchaseRecord{TxHash: "0xdup", BindingID: 1, WalletAddress: testBuyerWallet, Quantity: 1}
	assert.Error(t, db.Create(second).Error)
}

func TestNewPostgresDBServiceRequiresDSN(t *testing.T) {
	_, err := NewPostgresDBService("")
	require.Error(t, err)
}
