package server

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/fundmint-lab/fundmint/internal/hooks"
	"github.com/fundmint-lab/fundmint/internal/services"
	"gorm.io/gorm"
)

func InitializeServices(db *gorm.DB, signers *services.SignerRegistry, notifier services.Notifier, relayerAddress string) (services.ChainService, services.TransactionSubmitter, services.CampaignService, services.PurchaseService, services.ReconcileService, services.OwnershipService, services.HookService) {
	chainService := services.NewChainService(db)
	submitter := services.NewTransactionSubmitter(chainService)
	hookService := services.NewHookService()

	campaignService := services.NewCampaignService(db, chainService, submitter, signers, notifier, common.HexToAddress(relayerAddress))
	purchaseService := services.NewPurchaseService(chainService, submitter, signers)
	reconcileService := services.NewReconcileService(db, chainService, hookService)
	ownershipService := services.NewOwnershipService(db, chainService)

	return chainService, submitter, campaignService, purchaseService, reconcileService, ownershipService, hookService
}

func InitializeHooks(notifier services.Notifier, hookService services.HookService) {
	hookService.RegisterHook(hooks.NewBuyerReceiptHook(notifier))
	hookService.RegisterHook(hooks.NewCreatorNoticeHook(notifier))
}
