package hooks

import (
	"context"

	"github.com/fundmint-lab/fundmint/internal/models"
	"github.com/fundmint-lab/fundmint/internal/services"
)

// CreatorNoticeHook tells a campaign's creator that editions were purchased.
type CreatorNoticeHook struct {
	notifier services.Notifier
}

func NewCreatorNoticeHook(notifier services.Notifier) services.PurchaseHook {
	return &CreatorNoticeHook{notifier: notifier}
}

// Name implements PurchaseHook.
func (h *CreatorNoticeHook) Name() string {
	return services.HookCreatorNotice
}

// OnPurchaseRecorded implements PurchaseHook.
func (h *CreatorNoticeHook) OnPurchaseRecorded(ctx context.Context, purchase *models.PurchaseRecord, submission *models.Submission) error {
	data := map[string]interface{}{
		"campaign_title": submission.Title,
		"quantity":       purchase.Quantity,
		"sold_count":     submission.SoldCount,
		"buyer_wallet":   purchase.WalletAddress,
	}
	return h.notifier.Send(ctx, submission.CreatorEmail, services.TemplateCreatorNotice, data)
}
