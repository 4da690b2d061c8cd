package services

import (
	"context"

	"github.com/fundmint-lab/fundmint/internal/models"
	"github.com/sirupsen/logrus"
)

// Well-known hook names, matched to the reconciler's delivery flags.
const (
	HookBuyerReceipt  = "buyer_receipt"
	HookCreatorNotice = "creator_notice"
)

// PurchaseHook reacts to a newly recorded purchase. Hooks are best-effort:
// an error marks the hook's outcome false but never unwinds the purchase.
type PurchaseHook interface {
	Name() string
	OnPurchaseRecorded(ctx context.Context, purchase *models.PurchaseRecord, submission *models.Submission) error
}

// HookService dispatches purchase hooks and reports per-hook outcomes.
type HookService interface {
	RegisterHook(hook PurchaseHook)
	DispatchPurchaseRecorded(ctx context.Context, purchase *models.PurchaseRecord, submission *models.Submission) map[string]bool
}

type hookService struct {
	hooks []PurchaseHook
	log   *logrus.Entry
}

func NewHookService() HookService {
	return &hookService{log: logrus.WithField("component", "hooks")}
}

func (s *hookService) RegisterHook(hook PurchaseHook) {
	s.hooks = append(s.hooks, hook)
}

func (s *hookService) DispatchPurchaseRecorded(ctx context.Context, purchase *models.PurchaseRecord, submission *models.Submission) map[string]bool {
	outcomes := make(map[string]bool, len(s.hooks))
	for _, hook := range s.hooks {
		err := hook.OnPurchaseRecorded(ctx, purchase, submission)
		outcomes[hook.Name()] = err == nil
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"hook":    hook.Name(),
				"tx_hash": purchase.TxHash,
			}).Warn("purchase hook failed")
		}
	}
	return outcomes
}
