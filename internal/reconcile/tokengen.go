package reconcile

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"propertypay-service/internal/models"
)

// TokenGenerationWorker buys prepaid tokens for successful utility
// payments. A failed vend leaves the record pending for the next cycle,
// up to MaxTokenAttempts; after that the record drops out of the query
// and needs manual resolution.
type TokenGenerationWorker struct {
	Payments PaymentStore
	Vendor   TokenVendor
	Cfg      Config
	Log      *logrus.Entry
}

func (w *TokenGenerationWorker) Name() string { return "token-generation" }

func (w *TokenGenerationWorker) RunOnce(ctx context.Context) {
	payments, err := w.Payments.UtilityPaymentsAwaitingToken(ctx, w.Cfg.BatchSize, w.Cfg.MaxTokenAttempts)
	if err != nil {
		w.Log.WithError(err).Error("fetching payments awaiting token failed")
		return
	}

	fanOut(ctx, w.Cfg.TokenPool, payments, w.vend)
}

func (w *TokenGenerationWorker) vend(ctx context.Context, p models.UtilityPayment) {
	log := w.Log.WithFields(logrus.Fields{
		"transactionId": p.TransactionID,
		"meterNumber":   p.MeterNumber,
	})

	if p.Status == models.PaymentSuccessful {
		// Mark the awaiting-token sub-state. Losing the race to another
		// instance is fine; the vend itself is guarded by the flag.
		err := w.Payments.UpdateUtilityPaymentStatus(ctx, StatusUpdate{
			TransactionID: p.TransactionID,
			From:          models.PaymentSuccessful,
			To:            models.PaymentPendingTokenGeneration,
			Message:       p.Message,
		})
		if err != nil && !errors.Is(err, ErrNoTransition) {
			log.WithError(err).Error("marking payment pending token generation failed")
			return
		}
	}

	resp, err := w.Vendor.Purchase(ctx, p.MeterNumber, p.Amount)
	if err != nil {
		log.WithError(err).Error("token purchase failed")
		w.bumpAttempts(ctx, p.TransactionID)
		return
	}

	if resp.ResultCode != 0 {
		log.WithField("resultCode", resp.ResultCode).Warn("token vendor rejected purchase, will retry")
		w.bumpAttempts(ctx, p.TransactionID)
		return
	}

	if err := w.Payments.StoreUtilityToken(ctx, p.TransactionID, resp.Result.Token, resp.Result.TotalUnit); err != nil {
		log.WithError(err).Error("storing token failed")
		return
	}
	log.WithField("units", resp.Result.TotalUnit).Info("token generated")
}

func (w *TokenGenerationWorker) bumpAttempts(ctx context.Context, transactionID string) {
	if err := w.Payments.BumpTokenAttempts(ctx, transactionID); err != nil {
		w.Log.WithError(err).WithField("transactionId", transactionID).Error("bumping token attempts failed")
	}
}
