package hooks

import (
	"context"

	"github.com/fundmint-lab/fundmint/internal/models"
	"github.com/fundmint-lab/fundmint/internal/services"
)

// BuyerReceiptHook emails the donor a receipt for a recorded purchase.
type BuyerReceiptHook struct {
	notifier services.Notifier
}

func NewBuyerReceiptHook(notifier services.Notifier) services.PurchaseHook {
	return &BuyerReceiptHook{notifier: notifier}
}

// Name implements PurchaseHook.
func (h *BuyerReceiptHook) Name() string {
	return services.HookBuyerReceipt
}

// OnPurchaseRecorded implements PurchaseHook.
func (h *BuyerReceiptHook) OnPurchaseRecorded(ctx context.Context, purchase *models.PurchaseRecord, submission *models.Submission) error {
	data := map[string]interface{}{
		"campaign_title": submission.Title,
		"quantity":       purchase.Quantity,
		"amount_usd":     purchase.AmountUSD,
		"tip_usd":        purchase.TipUSD,
		"tx_hash":        purchase.TxHash,
	}
	return h.notifier.Send(ctx, purchase.Email, services.TemplateBuyerReceipt, data)
}
